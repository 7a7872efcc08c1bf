package khaata

import (
	"context"
	"fmt"
	"time"

	"khaata/internal/core/apperror"
	appctx "khaata/internal/core/context"
	"khaata/internal/core/entity"
	"khaata/internal/core/id"
	"khaata/internal/core/numerator"
	"khaata/internal/core/tx"
	"khaata/internal/core/types"
	"khaata/internal/domain"
	"khaata/internal/domain/audit"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/inventory"
	"khaata/internal/domain/reversal"
	"khaata/pkg/logger"
)

// Repository defines persistence for one ledger.
type Repository[D Document] interface {
	Create(ctx context.Context, doc D) error
	// GetByID returns a NotFound AppError when absent.
	GetByID(ctx context.Context, docID id.ID) (D, error)
	// Update writes doc where version = doc.Version and bumps the version.
	// A stale version yields ConcurrentModification.
	Update(ctx context.Context, doc D) error
	// AddPayment adds amount to paid only while the record is open and the new
	// paid does not exceed total, in one conditional write. It reports whether
	// the write happened.
	AddPayment(ctx context.Context, docID id.ID, amount types.Money) (bool, error)
	Delete(ctx context.Context, docID id.ID) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[D], error)
	Count(ctx context.Context) (int64, error)
}

// StockApplier is the part of the inventory ledger the ledgers write to.
type StockApplier interface {
	ApplyDelta(ctx context.Context, productID id.ID, delta inventory.Amount) (*inventory.Record, error)
}

// CounterpartyLookup resolves the supplier or customer of a record.
type CounterpartyLookup func(ctx context.Context, counterpartyID id.ID) (counterparty.Snapshot, error)

// Config configures a ledger service.
type Config[D Document] struct {
	// Kind names the record in logs, audit entries and error messages ("purchase").
	Kind string
	// NumberPrefix starts every document number ("PU").
	NumberPrefix string
	Flow         inventory.Flow

	Repo           Repository[D]
	TxManager      tx.Manager
	Stock          StockApplier
	Products       ProductLookup
	Counterparties CounterpartyLookup
	Numerator      numerator.Generator
	// NumeratorOptions defaults to numerator.DefaultOptions().
	NumeratorOptions *numerator.Options
	// Audit defaults to audit.Nop.
	Audit audit.Recorder
	// New allocates an empty document.
	New func() D
}

// Service implements create, edit, pay and refund for one ledger.
type Service[D Document] struct {
	cfg      Config[D]
	reversal *reversal.Coordinator
}

// NewService creates a ledger service.
func NewService[D Document](cfg Config[D]) *Service[D] {
	if cfg.Audit == nil {
		cfg.Audit = audit.Nop{}
	}
	if cfg.NumeratorOptions == nil {
		cfg.NumeratorOptions = numerator.DefaultOptions()
	}
	return &Service[D]{
		cfg:      cfg,
		reversal: reversal.NewCoordinator(cfg.Stock, cfg.Flow, cfg.Kind),
	}
}

// CreateInput is a new record request.
type CreateInput struct {
	CounterpartyID id.ID
	Lines          []LineInput
	Paid           types.Money
}

// EditInput replaces the lines and the paid amount of a record.
type EditInput struct {
	Lines []LineInput
	Paid  types.Money
}

// RefundResult is a record after a refund. Settlement is the money owed back
// when the refund left the record paid beyond its new total.
type RefundResult[D Document] struct {
	Record     D
	Settlement types.Money
}

// Create validates the request, moves stock for every line and stores the record.
func (s *Service[D]) Create(ctx context.Context, in CreateInput) (D, error) {
	var zero D

	party, err := s.cfg.Counterparties(ctx, in.CounterpartyID)
	if err != nil {
		return zero, err
	}
	lines, err := ResolveLines(ctx, s.cfg.Products, in.Lines, nil)
	if err != nil {
		return zero, err
	}

	doc := s.cfg.New()
	rec := doc.Ledger()
	rec.BaseDocument = entity.NewBaseDocument()
	rec.CreatedBy = appctx.GetUserID(ctx)
	rec.Counterparty = party
	rec.Lines = lines
	rec.Paid = in.Paid
	rec.Retotal()
	if err := doc.Validate(ctx); err != nil {
		return zero, err
	}

	deltas, err := NetDeltas(nil, lines)
	if err != nil {
		return zero, err
	}

	number, err := s.cfg.Numerator.GetNextNumber(ctx,
		numerator.DefaultConfig(s.cfg.NumberPrefix), s.cfg.NumeratorOptions, rec.CreatedAt)
	if err != nil {
		return zero, fmt.Errorf("generate number: %w", err)
	}
	rec.Number = number

	err = s.cfg.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.applyDeltas(ctx, deltas); err != nil {
			return err
		}
		if err := s.cfg.Repo.Create(ctx, doc); err != nil {
			return s.storeFailed("store", err)
		}
		return s.record(ctx, rec.ID, audit.ActionCreate, rec.Summary())
	})
	if err != nil {
		return zero, err
	}

	logger.Info(ctx, s.cfg.Kind+" created",
		"id", rec.ID,
		"number", rec.Number,
		"total", rec.Total.String(),
		"is_remaining", rec.IsRemaining)
	return doc, nil
}

// Edit replaces the lines and paid amount. Stock moves by the net difference
// per product between the recorded and the new lines, so changes made to
// stock since the record was created are preserved.
func (s *Service[D]) Edit(ctx context.Context, docID id.ID, in EditInput) (D, error) {
	var zero D

	var doc D
	err := s.cfg.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		if doc, err = s.GetByID(ctx, docID); err != nil {
			return err
		}
		rec := doc.Ledger()
		before := rec.Summary()

		lines, err := ResolveLines(ctx, s.cfg.Products, in.Lines, Snapshots(rec.Lines))
		if err != nil {
			return err
		}
		deltas, err := NetDeltas(rec.Lines, lines)
		if err != nil {
			return err
		}

		next := rec.Clone()
		next.Lines = lines
		next.Paid = in.Paid
		next.Retotal()
		if err := next.Validate(ctx); err != nil {
			return err
		}

		if err := s.applyDeltas(ctx, deltas); err != nil {
			return err
		}

		*rec = next
		rec.Touch()
		if err := s.cfg.Repo.Update(ctx, doc); err != nil {
			return s.storeFailed("store edit", err)
		}
		return s.record(ctx, rec.ID, audit.ActionUpdate, audit.Diff(before, rec.Summary()))
	})
	if err != nil {
		return zero, err
	}

	logger.Info(ctx, s.cfg.Kind+" edited", "id", docID, "total", doc.Ledger().Total.String())
	return doc, nil
}

// Pay records a payment. It never lets paid exceed total.
func (s *Service[D]) Pay(ctx context.Context, docID id.ID, amount types.Money) (D, error) {
	var zero D

	var doc D
	err := s.cfg.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.GetByID(ctx, docID)
		if err != nil {
			return err
		}
		rec := current.Ledger()
		before := rec.Summary()
		if err := rec.CheckPayment(amount); err != nil {
			return err
		}

		ok, err := s.cfg.Repo.AddPayment(ctx, docID, amount)
		if err != nil {
			return fmt.Errorf("add payment: %w", err)
		}

		if doc, err = s.GetByID(ctx, docID); err != nil {
			return err
		}
		if !ok {
			// Someone paid in between; report against the fresh balance.
			if err := doc.Ledger().CheckPayment(amount); err != nil {
				return err
			}
			return apperror.NewConcurrentModification(s.cfg.Kind, docID.String())
		}
		return s.record(ctx, docID, audit.ActionPay, audit.Diff(before, doc.Ledger().Summary()))
	})
	if err != nil {
		return zero, err
	}

	rec := doc.Ledger()
	logger.Info(ctx, s.cfg.Kind+" paid",
		"id", docID,
		"amount", amount.String(),
		"paid", rec.Paid.String(),
		"is_remaining", rec.IsRemaining)
	return doc, nil
}

// Refund returns part of one or more lines. Quantities are read against the
// unit recorded on the refunded line.
func (s *Service[D]) Refund(ctx context.Context, docID id.ID, refunds []RefundInput) (RefundResult[D], error) {
	var result RefundResult[D]

	err := s.cfg.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.GetByID(ctx, docID)
		if err != nil {
			return err
		}
		rec := doc.Ledger()
		before := rec.Summary()

		requests, err := s.refundRequests(rec, refunds)
		if err != nil {
			return err
		}

		current := make([]reversal.Line, len(rec.Lines))
		for i, l := range rec.Lines {
			current[i] = reversal.Line{ProductID: l.Product.ID, Amount: l.Amount, Price: l.Price}
		}
		outcomes, err := s.reversal.Reverse(ctx, current, requests)
		if err != nil {
			return err
		}

		kept := make([]Line, 0, len(rec.Lines))
		for i, out := range outcomes {
			if out.Remove {
				continue
			}
			l := rec.Lines[i]
			l.Amount, l.Price = out.Amount, out.Price
			kept = append(kept, l)
		}
		rec.Lines = kept
		rec.Retotal()
		settlement := rec.Settle()
		rec.Touch()

		if err := s.cfg.Repo.Update(ctx, doc); err != nil {
			return s.storeFailed("store refund", err)
		}

		changes := audit.Diff(before, rec.Summary())
		if settlement.IsPositive() {
			changes["settlement"] = settlement.String()
		}
		if err := s.record(ctx, rec.ID, audit.ActionRefund, changes); err != nil {
			return err
		}

		result = RefundResult[D]{Record: doc, Settlement: settlement}
		return nil
	})
	if err != nil {
		return RefundResult[D]{}, err
	}

	rec := result.Record.Ledger()
	logger.Info(ctx, s.cfg.Kind+" refunded",
		"id", docID,
		"lines", len(rec.Lines),
		"total", rec.Total.String(),
		"settlement", result.Settlement.String())
	return result, nil
}

func (s *Service[D]) refundRequests(rec *Record, refunds []RefundInput) ([]reversal.Request, error) {
	snaps := Snapshots(rec.Lines)

	requests := make([]reversal.Request, 0, len(refunds))
	for i, in := range refunds {
		snap, ok := snaps[in.ProductID]
		if !ok {
			return nil, apperror.NewValidation(fmt.Sprintf("product is not part of this %s", s.cfg.Kind)).
				WithDetail("product_id", in.ProductID.String()).
				WithDetail("line", i+1)
		}
		amount, err := inventory.FromRequest(snap, in.Quantity, in.Variants)
		if err != nil {
			return nil, withLine(err, i)
		}
		requests = append(requests, reversal.Request{ProductID: in.ProductID, Amount: amount})
	}
	return requests, nil
}

// GetByID returns a record or a NotFound AppError.
func (s *Service[D]) GetByID(ctx context.Context, docID id.ID) (D, error) {
	doc, err := s.cfg.Repo.GetByID(ctx, docID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return doc, apperror.NewNotFound(s.cfg.Kind, docID.String())
		}
		return doc, err
	}
	return doc, nil
}

// List returns records matching filter.
func (s *Service[D]) List(ctx context.Context, filter ListFilter) (domain.ListResult[D], error) {
	filter.Normalize()
	return s.cfg.Repo.List(ctx, filter)
}

// Count returns the number of stored records.
func (s *Service[D]) Count(ctx context.Context) (int64, error) {
	return s.cfg.Repo.Count(ctx)
}

// Delete removes whole records. Stock is left as it is: deleting a record
// forgets the money owed, it does not undo the movement of goods.
func (s *Service[D]) Delete(ctx context.Context, ids []id.ID) error {
	if len(ids) == 0 {
		return apperror.NewValidation("no ids given")
	}

	err := s.cfg.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, docID := range ids {
			doc, err := s.GetByID(ctx, docID)
			if err != nil {
				return err
			}
			if err := s.cfg.Repo.Delete(ctx, docID); err != nil {
				return fmt.Errorf("delete %s: %w", s.cfg.Kind, err)
			}
			if err := s.record(ctx, docID, audit.ActionDelete, doc.Ledger().Summary()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, s.cfg.Kind+" deleted", "count", len(ids))
	return nil
}

func (s *Service[D]) applyDeltas(ctx context.Context, deltas []Delta) error {
	for _, d := range deltas {
		if _, err := s.cfg.Stock.ApplyDelta(ctx, d.ProductID, s.cfg.Flow.Delta(d.Amount)); err != nil {
			return err
		}
	}
	return nil
}

// storeFailed wraps a failed record write. The write shares the transaction
// that moved the stock, so the rollback undoes both.
func (s *Service[D]) storeFailed(step string, err error) error {
	return fmt.Errorf("%s %s: %w", step, s.cfg.Kind, err)
}

func (s *Service[D]) record(ctx context.Context, docID id.ID, action audit.Action, changes map[string]any) error {
	entry := audit.Stamp(ctx, audit.Entry{
		EntityType: s.cfg.Kind,
		EntityID:   docID,
		Action:     action,
		Changes:    changes,
		CreatedAt:  time.Now().UTC(),
	})
	if err := s.cfg.Audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}
