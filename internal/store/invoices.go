package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/faturarapida/faturarapida/internal/invoice"
)

const dueDateLayout = "2006-01-02"

// Page selects a slice of a listing. Number is zero-based.
type Page struct {
	Number int
	Size   int
}

func (p Page) limitOffset() (limit, offset int) {
	size := p.Size
	if size <= 0 {
		size = 20
	}
	number := p.Number
	if number < 0 {
		number = 0
	}
	return size, number * size
}

// Insert persists a new invoice record. The store assigns the id: any
// value already present on inv.ID is overwritten with a fresh UUID.
// Version starts at 1.
func (s *Store) Insert(ctx context.Context, inv *invoice.Invoice) error {
	inv.ID = uuid.NewString()
	inv.Version = 1

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices
		(id, number, client_name, client_document, client_address,
		 description, amount, due_date, status, artifact_key,
		 created_at, updated_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inv.ID,
		inv.Number,
		inv.ClientName,
		inv.ClientDocument,
		inv.ClientAddress,
		inv.Description,
		inv.Amount.String(),
		inv.DueDate.Format(dueDateLayout),
		string(inv.Status),
		inv.ArtifactKey,
		inv.CreatedAt.UTC().Format(time.RFC3339Nano),
		inv.UpdatedAt.UTC().Format(time.RFC3339Nano),
		inv.Version,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	return nil
}

// Get returns the invoice with the given id, or invoice.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = ?
	`, id)

	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", invoice.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// List returns a page of all invoices with deterministic ordering.
// Returns an empty slice (not nil) when the page is past the end.
func (s *Store) List(ctx context.Context, page Page) ([]*invoice.Invoice, error) {
	limit, offset := page.limitOffset()
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	return collectInvoices(rows)
}

// ListByStatus returns a page of invoices in the given status.
func (s *Store) ListByStatus(ctx context.Context, status invoice.Status, page Page) ([]*invoice.Invoice, error) {
	limit, offset := page.limitOffset()
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE status = ?
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?
	`, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices by status: %w", err)
	}
	defer rows.Close()

	return collectInvoices(rows)
}

// FindDueBefore returns every invoice whose due date lies strictly
// before day and whose status is not excluded. This is the sweep's
// candidate query; it is unpaginated because the sweep processes the
// whole candidate set in one batch.
func (s *Store) FindDueBefore(ctx context.Context, day time.Time, excluded invoice.Status) ([]*invoice.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE due_date < ? AND status != ?
		ORDER BY due_date ASC, id ASC
	`, day.Format(dueDateLayout), string(excluded))
	if err != nil {
		return nil, fmt.Errorf("find due before: %w", err)
	}
	defer rows.Close()

	return collectInvoices(rows)
}

// Update persists a modified invoice guarded by its version: the write
// only lands if the persisted version still matches inv.Version. On
// success inv.Version is bumped. A version mismatch returns
// invoice.ErrVersionConflict; a missing id returns invoice.ErrNotFound.
func (s *Store) Update(ctx context.Context, inv *invoice.Invoice) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE invoices
		SET status = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`,
		string(inv.Status),
		inv.UpdatedAt.UTC().Format(time.RFC3339Nano),
		inv.ID,
		inv.Version,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update invoice: rows affected: %w", err)
	}
	if n == 0 {
		// Distinguish a lost race from a vanished record.
		var exists int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM invoices WHERE id = ?`, inv.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("%w: %s", invoice.ErrNotFound, inv.ID)
		}
		return fmt.Errorf("%w: %s", invoice.ErrVersionConflict, inv.ID)
	}

	inv.Version++
	return nil
}

// UpdateBatch persists status changes for a set of invoices in one
// transaction. Every row is guarded by its version AND by a terminal
// check, so an invoice paid or cancelled after the caller read it is
// silently skipped rather than regressed. Returns the number of rows
// actually written.
func (s *Store) UpdateBatch(ctx context.Context, invoices []*invoice.Invoice) (int, error) {
	if len(invoices) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("update batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	updated := 0
	for _, inv := range invoices {
		res, err := tx.ExecContext(ctx, `
			UPDATE invoices
			SET status = ?, updated_at = ?, version = version + 1
			WHERE id = ? AND version = ?
			  AND status NOT IN (?, ?)
		`,
			string(inv.Status),
			inv.UpdatedAt.UTC().Format(time.RFC3339Nano),
			inv.ID,
			inv.Version,
			string(invoice.StatusPaid),
			string(invoice.StatusCancelled),
		)
		if err != nil {
			return 0, fmt.Errorf("update batch: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("update batch: rows affected: %w", err)
		}
		if n > 0 {
			inv.Version++
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("update batch: commit: %w", err)
	}

	return updated, nil
}

const invoiceColumns = `id, number, client_name, client_document, client_address,
		description, amount, due_date, status, artifact_key,
		created_at, updated_at, version`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var (
		inv                  invoice.Invoice
		amount               string
		dueDate              string
		status               string
		createdAt, updatedAt string
	)
	err := s.Scan(
		&inv.ID,
		&inv.Number,
		&inv.ClientName,
		&inv.ClientDocument,
		&inv.ClientAddress,
		&inv.Description,
		&amount,
		&dueDate,
		&status,
		&inv.ArtifactKey,
		&createdAt,
		&updatedAt,
		&inv.Version,
	)
	if err != nil {
		return nil, err
	}

	if inv.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if inv.DueDate, err = time.Parse(dueDateLayout, dueDate); err != nil {
		return nil, fmt.Errorf("parse due date %q: %w", dueDate, err)
	}
	if inv.Status, err = invoice.ParseStatus(status); err != nil {
		return nil, err
	}
	if inv.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if inv.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}

	return &inv, nil
}

func collectInvoices(rows *sql.Rows) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}

	// Return empty slice instead of nil
	if out == nil {
		out = []*invoice.Invoice{}
	}
	return out, nil
}
