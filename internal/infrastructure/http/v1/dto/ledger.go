package dto

import (
	"time"

	"khaata/internal/core/id"
	"khaata/internal/core/types"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/conversion"
	"khaata/internal/domain/documents/khaata"
	"khaata/internal/domain/documents/purchase"
	"khaata/internal/domain/documents/sale"
)

// --- Requests ---

// LineRequest is one product entry. Scalar products take quantity, variant
// products take variants. Quantities are base counts (numbers) or "W.R"
// strings relative to the product unit. Price is required; "0" is a valid price.
type LineRequest struct {
	ProductID id.ID                          `json:"productId" binding:"required"`
	Quantity  *conversion.Quantity           `json:"quantity" binding:"omitempty,quantity"`
	Variants  map[string]conversion.Quantity `json:"variants" binding:"omitempty,dive,quantity"`
	Price     *types.Money                   `json:"price" binding:"required"`
}

func (r LineRequest) toInput() khaata.LineInput {
	return khaata.LineInput{
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		Variants:  r.Variants,
		Price:     *r.Price,
	}
}

func toLineInputs(lines []LineRequest) []khaata.LineInput {
	out := make([]khaata.LineInput, len(lines))
	for i, l := range lines {
		out[i] = l.toInput()
	}
	return out
}

type CreatePurchaseRequest struct {
	SupplierID id.ID         `json:"supplierId" binding:"required"`
	Lines      []LineRequest `json:"lines" binding:"required,min=1,dive"`
	Paid       *types.Money  `json:"paid" binding:"required"`
}

func (r CreatePurchaseRequest) ToInput() khaata.CreateInput {
	return khaata.CreateInput{CounterpartyID: r.SupplierID, Lines: toLineInputs(r.Lines), Paid: *r.Paid}
}

type CreateSaleRequest struct {
	CustomerID id.ID         `json:"customerId" binding:"required"`
	Lines      []LineRequest `json:"lines" binding:"required,min=1,dive"`
	Paid       *types.Money  `json:"paid" binding:"required"`
}

func (r CreateSaleRequest) ToInput() khaata.CreateInput {
	return khaata.CreateInput{CounterpartyID: r.CustomerID, Lines: toLineInputs(r.Lines), Paid: *r.Paid}
}

// EditRequest replaces the lines and the paid amount of a record.
type EditRequest struct {
	Lines []LineRequest `json:"lines" binding:"required,dive"`
	Paid  *types.Money  `json:"paid" binding:"required"`
}

func (r EditRequest) ToInput() khaata.EditInput {
	return khaata.EditInput{Lines: toLineInputs(r.Lines), Paid: *r.Paid}
}

type PayRequest struct {
	Amount types.Money `json:"amount"`
}

type RefundItemRequest struct {
	ProductID id.ID                          `json:"productId" binding:"required"`
	Quantity  *conversion.Quantity           `json:"quantity" binding:"omitempty,quantity"`
	Variants  map[string]conversion.Quantity `json:"variants" binding:"omitempty,dive,quantity"`
}

type RefundRequest struct {
	Items []RefundItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (r RefundRequest) ToInput() []khaata.RefundInput {
	out := make([]khaata.RefundInput, len(r.Items))
	for i, it := range r.Items {
		out[i] = khaata.RefundInput{ProductID: it.ProductID, Quantity: it.Quantity, Variants: it.Variants}
	}
	return out
}

// LedgerQuery adds ledger filters to ListQuery.
type LedgerQuery struct {
	ListQuery
	CounterpartyID string `form:"counterpartyId" binding:"omitempty,uuid"`
	RemainingOnly  bool   `form:"remainingOnly"`
}

func (q LedgerQuery) ToFilter() (khaata.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return khaata.ListFilter{}, err
	}
	f := khaata.ListFilter{ListFilter: base, RemainingOnly: q.RemainingOnly}
	if q.CounterpartyID != "" {
		cid, err := id.Parse(q.CounterpartyID)
		if err != nil {
			return f, err
		}
		f.CounterpartyID = &cid
	}
	return f, nil
}

// --- Responses ---

// LineResponse renders a line in the unit recorded on it.
type LineResponse struct {
	Product      product.Snapshot              `json:"product"`
	Quantity     *conversion.Display           `json:"quantity,omitempty"`
	Variants     map[string]conversion.Display `json:"variants,omitempty"`
	BaseQuantity int64                         `json:"baseQuantity"`
	Price        types.Money                   `json:"price"`
}

func fromLine(l khaata.Line) LineResponse {
	resp := LineResponse{
		Product:      l.Product,
		BaseQuantity: l.Amount.Total(),
		Price:        l.Price,
	}
	resp.Quantity, resp.Variants = l.Amount.Display(l.Product.Unit.Value)
	return resp
}

// LedgerResponse holds the fields shared by purchases and sales.
type LedgerResponse struct {
	ID          string         `json:"id"`
	Number      string         `json:"number"`
	Version     int            `json:"version"`
	Lines       []LineResponse `json:"lines"`
	Total       types.Money    `json:"total"`
	Paid        types.Money    `json:"paid"`
	Remaining   types.Money    `json:"remaining"`
	IsRemaining bool           `json:"isRemaining"`
	CreatedBy   string         `json:"createdBy,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func fromRecord(r *khaata.Record) LedgerResponse {
	lines := make([]LineResponse, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = fromLine(l)
	}
	return LedgerResponse{
		ID:          r.ID.String(),
		Number:      r.Number,
		Version:     r.Version,
		Lines:       lines,
		Total:       r.Total,
		Paid:        r.Paid,
		Remaining:   r.Remaining(),
		IsRemaining: r.IsRemaining,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type PurchaseResponse struct {
	LedgerResponse
	Supplier         counterparty.Snapshot `json:"supplier"`
	TotalSourcePrice types.Money           `json:"totalSourcePrice"`
}

func FromPurchase(p *purchase.Purchase) PurchaseResponse {
	return PurchaseResponse{
		LedgerResponse:   fromRecord(&p.Record),
		Supplier:         p.Supplier(),
		TotalSourcePrice: p.TotalSourcePrice(),
	}
}

type SaleResponse struct {
	LedgerResponse
	Customer         counterparty.Snapshot `json:"customer"`
	TotalRetailPrice types.Money           `json:"totalRetailPrice"`
}

func FromSale(s *sale.Sale) SaleResponse {
	return SaleResponse{
		LedgerResponse:   fromRecord(&s.Record),
		Customer:         s.Customer(),
		TotalRetailPrice: s.TotalRetailPrice(),
	}
}

// RefundResponse carries the refunded record and the money owed back.
type RefundResponse struct {
	Record     any         `json:"record"`
	Settlement types.Money `json:"settlement"`
}
