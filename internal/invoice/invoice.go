// Package invoice defines the billing data model: the invoice record,
// its lifecycle status machine, creation-request validation and the
// error taxonomy shared by the store, blob store and service layers.
package invoice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field length bounds for creation requests.
const (
	MaxClientNameLen  = 100
	MaxDescriptionLen = 500
	MaxDocumentLen    = 20
	MaxAddressLen     = 200
)

// Invoice is a persisted billing record. The record store owns it: the
// id is assigned on first insert and Version changes on every update.
// ArtifactKey points into the blob store and is set exactly once at
// creation.
type Invoice struct {
	ID             string
	Number         string
	ClientName     string
	ClientDocument string
	ClientAddress  string
	Description    string
	Amount         decimal.Decimal
	DueDate        time.Time
	Status         Status
	ArtifactKey    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64
}

// Overdue reports whether the invoice should be swept into OVERDUE as
// of now: the due date lies strictly before today and the status is not
// terminal. Comparison is by calendar day, not instant.
func (inv *Invoice) Overdue(now time.Time) bool {
	if inv.Status.Terminal() {
		return false
	}
	today := now.Truncate(24 * time.Hour)
	due := inv.DueDate.Truncate(24 * time.Hour)
	return due.Before(today)
}

// CreateRequest carries the caller-supplied fields of a new invoice.
// ClientDocument and ClientAddress are optional.
type CreateRequest struct {
	ClientName     string
	Description    string
	Amount         decimal.Decimal
	DueDate        time.Time
	ClientDocument string
	ClientAddress  string
}

// Validate checks the request before any rendering or storage happens.
// Returns a *ValidationError naming the offending field.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.ClientName) == "" {
		return &ValidationError{Field: "client name", Message: "must not be empty"}
	}
	if len(r.ClientName) > MaxClientNameLen {
		return &ValidationError{Field: "client name", Message: "too long"}
	}
	if strings.TrimSpace(r.Description) == "" {
		return &ValidationError{Field: "description", Message: "must not be empty"}
	}
	if len(r.Description) > MaxDescriptionLen {
		return &ValidationError{Field: "description", Message: "too long"}
	}
	if !r.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "must be greater than zero"}
	}
	if r.DueDate.IsZero() {
		return &ValidationError{Field: "due date", Message: "is required"}
	}
	if len(r.ClientDocument) > MaxDocumentLen {
		return &ValidationError{Field: "client document", Message: "too long"}
	}
	if len(r.ClientAddress) > MaxAddressLen {
		return &ValidationError{Field: "client address", Message: "too long"}
	}
	return nil
}
