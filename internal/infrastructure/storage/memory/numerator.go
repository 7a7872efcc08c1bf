package memory

import (
	"context"
	"time"

	"khaata/internal/core/numerator"
)

// Numerator implements numerator.Generator on the store's sequences. Both
// strategies behave as strict here: there is no round trip to save.
type Numerator struct{ s *Store }

// Numerator returns the document number generator.
func (s *Store) Numerator() *Numerator { return &Numerator{s} }

func (n *Numerator) GetNextNumber(ctx context.Context, cfg numerator.Config, _ *numerator.Options, period time.Time) (string, error) {
	var next int64
	key := numerator.SequenceKey(cfg, period)
	err := n.s.view(ctx, func(st *state) error {
		st.sequences[key]++
		next = st.sequences[key]
		return nil
	})
	if err != nil {
		return "", err
	}
	return numerator.Format(cfg, period, next), nil
}

var _ numerator.Generator = (*Numerator)(nil)
