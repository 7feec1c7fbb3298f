package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faturarapida/faturarapida/internal/invoice"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testInvoice(client string, due time.Time, status invoice.Status) *invoice.Invoice {
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	return &invoice.Invoice{
		Number:      "2024011234",
		ClientName:  client,
		Description: "Consulting",
		Amount:      decimal.RequireFromString("100.00"),
		DueDate:     due,
		Status:      status,
		ArtifactKey: "fatura_2024011234_1704456000000_abcd1234.pdf",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestInsertGet_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	inv := testInvoice("Acme", due, invoice.StatusIssued)
	if err := s.Insert(ctx, inv); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if inv.ID == "" {
		t.Fatal("Insert() did not assign an id")
	}
	if inv.Version != 1 {
		t.Errorf("Insert() version = %d, want 1", inv.Version)
	}

	got, err := s.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.ClientName != "Acme" {
		t.Errorf("ClientName = %q, want Acme", got.ClientName)
	}
	if !got.Amount.Equal(inv.Amount) {
		t.Errorf("Amount = %s, want %s", got.Amount, inv.Amount)
	}
	if !got.DueDate.Equal(due) {
		t.Errorf("DueDate = %s, want %s", got.DueDate, due)
	}
	if got.Status != invoice.StatusIssued {
		t.Errorf("Status = %s, want ISSUED", got.Status)
	}
	if got.ArtifactKey != inv.ArtifactKey {
		t.Errorf("ArtifactKey = %q, want %q", got.ArtifactKey, inv.ArtifactKey)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.Get(context.Background(), "no-such-id")
	if !errors.Is(err, invoice.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestList_PaginatesAndNeverNil(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		inv := testInvoice(fmt.Sprintf("client-%d", i), due, invoice.StatusIssued)
		if err := s.Insert(ctx, inv); err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
	}

	page0, err := s.List(ctx, Page{Number: 0, Size: 3})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(page0) != 3 {
		t.Errorf("page 0 has %d invoices, want 3", len(page0))
	}

	page1, err := s.List(ctx, Page{Number: 1, Size: 3})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(page1) != 2 {
		t.Errorf("page 1 has %d invoices, want 2", len(page1))
	}

	page9, err := s.List(ctx, Page{Number: 9, Size: 3})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if page9 == nil {
		t.Error("past-the-end page is nil, want empty slice")
	}
	if len(page9) != 0 {
		t.Errorf("past-the-end page has %d invoices, want 0", len(page9))
	}
}

func TestListByStatus(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	for _, st := range []invoice.Status{invoice.StatusIssued, invoice.StatusIssued, invoice.StatusPaid} {
		if err := s.Insert(ctx, testInvoice("c", due, st)); err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
	}

	issued, err := s.ListByStatus(ctx, invoice.StatusIssued, Page{Size: 10})
	if err != nil {
		t.Fatalf("ListByStatus() failed: %v", err)
	}
	if len(issued) != 2 {
		t.Errorf("issued count = %d, want 2", len(issued))
	}

	paid, err := s.ListByStatus(ctx, invoice.StatusPaid, Page{Size: 10})
	if err != nil {
		t.Fatalf("ListByStatus() failed: %v", err)
	}
	if len(paid) != 1 {
		t.Errorf("paid count = %d, want 1", len(paid))
	}
}

func TestFindDueBefore(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	past := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	future := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	pastIssued := testInvoice("past-issued", past, invoice.StatusIssued)
	pastPaid := testInvoice("past-paid", past, invoice.StatusPaid)
	dueToday := testInvoice("due-today", today, invoice.StatusIssued)
	futureIssued := testInvoice("future", future, invoice.StatusIssued)

	for _, inv := range []*invoice.Invoice{pastIssued, pastPaid, dueToday, futureIssued} {
		if err := s.Insert(ctx, inv); err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
	}

	got, err := s.FindDueBefore(ctx, today, invoice.StatusPaid)
	if err != nil {
		t.Fatalf("FindDueBefore() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FindDueBefore() returned %d invoices, want 1", len(got))
	}
	if got[0].ClientName != "past-issued" {
		t.Errorf("candidate = %q, want past-issued", got[0].ClientName)
	}
}

func TestUpdate_BumpsVersion(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	inv := testInvoice("Acme", due, invoice.StatusIssued)
	if err := s.Insert(ctx, inv); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	inv.Status = invoice.StatusPaid
	inv.UpdatedAt = inv.UpdatedAt.Add(time.Hour)
	if err := s.Update(ctx, inv); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if inv.Version != 2 {
		t.Errorf("Version = %d, want 2", inv.Version)
	}

	got, err := s.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Status != invoice.StatusPaid {
		t.Errorf("Status = %s, want PAID", got.Status)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Error("UpdatedAt was not refreshed")
	}
}

func TestUpdate_VersionConflict(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	inv := testInvoice("Acme", due, invoice.StatusIssued)
	if err := s.Insert(ctx, inv); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	// Two readers load the same version.
	stale, err := s.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	inv.Status = invoice.StatusPaid
	if err := s.Update(ctx, inv); err != nil {
		t.Fatalf("first Update() failed: %v", err)
	}

	stale.Status = invoice.StatusCancelled
	err = s.Update(ctx, stale)
	if !errors.Is(err, invoice.ErrVersionConflict) {
		t.Errorf("stale Update() error = %v, want ErrVersionConflict", err)
	}

	got, err := s.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Status != invoice.StatusPaid {
		t.Errorf("Status = %s, want PAID (stale write must not land)", got.Status)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s := testStore(t)

	inv := testInvoice("ghost", time.Now(), invoice.StatusIssued)
	inv.ID = "no-such-id"
	inv.Version = 1

	err := s.Update(context.Background(), inv)
	if !errors.Is(err, invoice.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateBatch_SkipsTerminalAndStale(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	a := testInvoice("a", due, invoice.StatusIssued)
	b := testInvoice("b", due, invoice.StatusIssued)
	for _, inv := range []*invoice.Invoice{a, b} {
		if err := s.Insert(ctx, inv); err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
	}

	// Read sweep candidates, then pay b behind the sweep's back.
	candA, _ := s.Get(ctx, a.ID)
	candB, _ := s.Get(ctx, b.ID)

	b.Status = invoice.StatusPaid
	if err := s.Update(ctx, b); err != nil {
		t.Fatalf("pay b failed: %v", err)
	}

	candA.Status = invoice.StatusOverdue
	candB.Status = invoice.StatusOverdue
	updated, err := s.UpdateBatch(ctx, []*invoice.Invoice{candA, candB})
	if err != nil {
		t.Fatalf("UpdateBatch() failed: %v", err)
	}
	if updated != 1 {
		t.Errorf("UpdateBatch() updated %d rows, want 1", updated)
	}

	gotA, _ := s.Get(ctx, a.ID)
	if gotA.Status != invoice.StatusOverdue {
		t.Errorf("a.Status = %s, want OVERDUE", gotA.Status)
	}
	gotB, _ := s.Get(ctx, b.ID)
	if gotB.Status != invoice.StatusPaid {
		t.Errorf("b.Status = %s, want PAID (batch must not regress a paid invoice)", gotB.Status)
	}
}

func TestUpdateBatch_Empty(t *testing.T) {
	s := testStore(t)

	updated, err := s.UpdateBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("UpdateBatch(nil) failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("UpdateBatch(nil) = %d, want 0", updated)
	}
}
