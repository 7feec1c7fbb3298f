// Package service orchestrates the invoice lifecycle: creation
// (render, store artifact, persist record), reads, manual status
// transitions and the overdue sweep. It is the only package with
// business rules; status legality itself lives in invoice.Transition.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faturarapida/faturarapida/internal/blobstore"
	"github.com/faturarapida/faturarapida/internal/invoice"
	"github.com/faturarapida/faturarapida/internal/render"
	"github.com/faturarapida/faturarapida/internal/store"
)

// RecordStore is the persistence boundary for invoice records.
// *store.Store satisfies it; tests substitute fakes.
type RecordStore interface {
	Insert(ctx context.Context, inv *invoice.Invoice) error
	Get(ctx context.Context, id string) (*invoice.Invoice, error)
	List(ctx context.Context, page store.Page) ([]*invoice.Invoice, error)
	ListByStatus(ctx context.Context, status invoice.Status, page store.Page) ([]*invoice.Invoice, error)
	FindDueBefore(ctx context.Context, day time.Time, excluded invoice.Status) ([]*invoice.Invoice, error)
	Update(ctx context.Context, inv *invoice.Invoice) error
	UpdateBatch(ctx context.Context, invoices []*invoice.Invoice) (int, error)
}

// BlobStore is the artifact storage boundary. *blobstore.Store
// satisfies it.
type BlobStore interface {
	Store(data []byte, requestedName string) (string, error)
	Load(key string) ([]byte, error)
	Delete(key string) error
}

// Renderer converts a payload into document bytes. Must be pure.
type Renderer func(p render.Payload) ([]byte, error)

// DefaultTaxRate is the additive surcharge applied to the subtotal.
var DefaultTaxRate = decimal.NewFromFloat(0.10)

// Config carries the service's collaborators and settings; all fields
// are bound at construction, no ambient state.
type Config struct {
	Records RecordStore
	Blobs   BlobStore
	Render  Renderer
	Clock   Clock
	TaxRate decimal.Decimal
}

// Service implements the invoice lifecycle operations.
type Service struct {
	records RecordStore
	blobs   BlobStore
	render  Renderer
	clock   Clock
	taxRate decimal.Decimal
}

// New builds a Service. Zero-value Clock and TaxRate fall back to the
// system clock and DefaultTaxRate.
func New(cfg Config) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	rate := cfg.TaxRate
	if rate.IsZero() {
		rate = DefaultTaxRate
	}
	return &Service{
		records: cfg.Records,
		blobs:   cfg.Blobs,
		render:  cfg.Render,
		clock:   clock,
		taxRate: rate,
	}
}

// Create validates the request, renders the document, stores the
// artifact and persists the record with status ISSUED - in that order.
// A failure at any stage aborts the whole operation as a
// *invoice.GenerationError and no record is persisted. When the record
// insert itself fails, the already-written artifact is deleted
// best-effort so the store does not accumulate orphans.
func (s *Service) Create(ctx context.Context, req invoice.CreateRequest) (*invoice.Invoice, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	number := invoiceNumber(now)
	payload := s.buildPayload(req, number, now)

	slog.Info("creating invoice", "client", req.ClientName, "number", number)

	pdf, err := s.render(payload)
	if err != nil {
		return nil, &invoice.GenerationError{Client: req.ClientName, Err: fmt.Errorf("render: %w", err)}
	}

	key, err := s.blobs.Store(pdf, fmt.Sprintf("fatura_%s.pdf", number))
	if err != nil {
		return nil, &invoice.GenerationError{Client: req.ClientName, Err: fmt.Errorf("store artifact: %w", err)}
	}

	inv := &invoice.Invoice{
		Number:         number,
		ClientName:     req.ClientName,
		ClientDocument: req.ClientDocument,
		ClientAddress:  req.ClientAddress,
		Description:    req.Description,
		Amount:         req.Amount,
		DueDate:        req.DueDate,
		Status:         invoice.StatusIssued,
		ArtifactKey:    key,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.records.Insert(ctx, inv); err != nil {
		// Compensating delete: without it the artifact would leak.
		if delErr := s.blobs.Delete(key); delErr != nil {
			slog.Warn("orphaned artifact could not be deleted", "key", key, "error", delErr)
		}
		return nil, &invoice.GenerationError{Client: req.ClientName, Err: fmt.Errorf("persist record: %w", err)}
	}

	slog.Info("invoice created", "id", inv.ID, "number", number, "artifact", key)
	return inv, nil
}

// Get returns the invoice with the given id.
func (s *Service) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	return s.records.Get(ctx, id)
}

// List returns a page of all invoices.
func (s *Service) List(ctx context.Context, page store.Page) ([]*invoice.Invoice, error) {
	return s.records.List(ctx, page)
}

// ListByStatus returns a page of invoices in the given status.
func (s *Service) ListByStatus(ctx context.Context, status invoice.Status, page store.Page) ([]*invoice.Invoice, error) {
	return s.records.ListByStatus(ctx, status, page)
}

// TransitionStatus applies a manual status change. The target status is
// mapped to its lifecycle event and run through the legality table;
// illegal transitions fail with invoice.ErrIllegalTransition. The write
// is version-guarded, so a concurrent writer surfaces as
// invoice.ErrVersionConflict rather than being silently overwritten.
func (s *Service) TransitionStatus(ctx context.Context, id string, target invoice.Status) (*invoice.Invoice, error) {
	inv, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ev, err := invoice.EventFor(target)
	if err != nil {
		return nil, err
	}

	next, err := invoice.Transition(inv.Status, ev)
	if err != nil {
		return nil, err
	}
	if next == inv.Status {
		// No-op transition (e.g. overdue detection on a paid invoice).
		return inv, nil
	}

	inv.Status = next
	inv.UpdatedAt = s.clock.Now()
	if err := s.records.Update(ctx, inv); err != nil {
		return nil, err
	}

	slog.Info("invoice status changed", "id", id, "status", next)
	return inv, nil
}

// Artifact returns the stored document bytes for an invoice. A record
// whose artifact is missing from the blob store is a data-integrity
// violation and surfaces as invoice.ErrArtifactIntegrity, distinct from
// a plain not-found on the record itself.
func (s *Service) Artifact(ctx context.Context, id string) ([]byte, error) {
	inv, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.blobs.Load(inv.ArtifactKey)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: invoice %s, key %q: %v", invoice.ErrArtifactIntegrity, id, inv.ArtifactKey, err)
		}
		return nil, fmt.Errorf("load artifact for invoice %s: %w", id, err)
	}
	return data, nil
}

// SweepOverdue marks every non-terminal invoice with a due date
// strictly in the past as OVERDUE. Safe to run concurrently with
// manual transitions: the batch write re-checks version and terminal
// status per row, so an invoice paid after the candidate read is never
// regressed.
//
// Returns the number of candidates examined, not the number changed -
// candidates already OVERDUE count too.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	today := s.clock.Now().Truncate(24 * time.Hour)

	candidates, err := s.records.FindDueBefore(ctx, today, invoice.StatusPaid)
	if err != nil {
		return 0, fmt.Errorf("sweep overdue: %w", err)
	}

	var changed []*invoice.Invoice
	for _, inv := range candidates {
		if inv.Status == invoice.StatusOverdue || inv.Status.Terminal() {
			continue
		}
		next, err := invoice.Transition(inv.Status, invoice.EventDueDatePassed)
		if err != nil {
			// Candidate in a state the table does not cover; skip it
			// rather than abort the whole batch.
			slog.Warn("sweep skipping invoice", "id", inv.ID, "status", inv.Status, "error", err)
			continue
		}
		inv.Status = next
		inv.UpdatedAt = s.clock.Now()
		changed = append(changed, inv)
	}

	written := 0
	if len(changed) > 0 {
		written, err = s.records.UpdateBatch(ctx, changed)
		if err != nil {
			return 0, fmt.Errorf("sweep overdue: %w", err)
		}
	}

	if len(candidates) > 0 {
		slog.Info("overdue sweep finished", "examined", len(candidates), "updated", written)
	} else {
		slog.Debug("overdue sweep finished, no candidates")
	}

	return len(candidates), nil
}

// buildPayload assembles the render payload: a single line item for the
// requested description, a subtotal equal to the amount and the
// configured tax applied additively.
func (s *Service) buildPayload(req invoice.CreateRequest, number string, now time.Time) render.Payload {
	subtotal := req.Amount
	tax := subtotal.Mul(s.taxRate).Round(2)

	return render.Payload{
		InvoiceNumber:  number,
		IssueDate:      now,
		DueDate:        req.DueDate,
		ClientName:     req.ClientName,
		ClientDocument: req.ClientDocument,
		ClientAddress:  req.ClientAddress,
		Items: []render.Item{{
			Description: req.Description,
			Quantity:    1,
			UnitPrice:   req.Amount,
			Total:       req.Amount,
		}},
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// invoiceNumber generates the human-readable display number:
// year, zero-padded month, 4 random digits. Record identity never
// depends on it - the primary key is a UUID assigned by the store - so
// the suffix's collision risk only affects display.
func invoiceNumber(now time.Time) string {
	return fmt.Sprintf("%04d%02d%04d", now.Year(), int(now.Month()), 1000+rand.Intn(9000))
}
