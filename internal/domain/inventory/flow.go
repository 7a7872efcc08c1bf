package inventory

// Flow is the direction a ledger moves stock when it records a transaction.
type Flow int

const (
	// Inbound ledgers add stock on create (procurement).
	Inbound Flow = 1
	// Outbound ledgers remove stock on create (distribution).
	Outbound Flow = -1
)

// Delta returns the stock change for recording a line of amount a.
func (f Flow) Delta(a Amount) Amount {
	if f == Outbound {
		return a.Neg()
	}
	return a
}

// Reversal returns the stock change for refunding amount a from a line.
func (f Flow) Reversal(a Amount) Amount {
	return f.Delta(a).Neg()
}

func (f Flow) String() string {
	if f == Outbound {
		return "outbound"
	}
	return "inbound"
}
