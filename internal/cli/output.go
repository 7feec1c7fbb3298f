package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/faturarapida/faturarapida/internal/invoice"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (not found, illegal transition, ...)
	ExitCommandError = 2 // Command error (bad flags, unreadable config, ...)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// invoiceJSON is the wire shape of an invoice for --format json.
type invoiceJSON struct {
	ID             string `json:"id"`
	Number         string `json:"number"`
	ClientName     string `json:"client_name"`
	ClientDocument string `json:"client_document,omitempty"`
	ClientAddress  string `json:"client_address,omitempty"`
	Description    string `json:"description"`
	Amount         string `json:"amount"`
	DueDate        string `json:"due_date"`
	Status         string `json:"status"`
	ArtifactKey    string `json:"artifact_key"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func toInvoiceJSON(inv *invoice.Invoice) invoiceJSON {
	return invoiceJSON{
		ID:             inv.ID,
		Number:         inv.Number,
		ClientName:     inv.ClientName,
		ClientDocument: inv.ClientDocument,
		ClientAddress:  inv.ClientAddress,
		Description:    inv.Description,
		Amount:         inv.Amount.StringFixed(2),
		DueDate:        inv.DueDate.Format("2006-01-02"),
		Status:         string(inv.Status),
		CreatedAt:      inv.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      inv.UpdatedAt.UTC().Format(time.RFC3339),
		ArtifactKey:    inv.ArtifactKey,
	}
}

// OutputFormatter renders command results as text or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// PrintInvoice writes a single invoice in the selected format.
func (f *OutputFormatter) PrintInvoice(inv *invoice.Invoice) error {
	if f.Format == "json" {
		return f.printJSON(toInvoiceJSON(inv))
	}
	_, err := io.WriteString(f.Writer, renderInvoiceText(inv))
	return err
}

// PrintInvoiceList writes a listing in the selected format.
func (f *OutputFormatter) PrintInvoiceList(invoices []*invoice.Invoice) error {
	if f.Format == "json" {
		out := make([]invoiceJSON, len(invoices))
		for i, inv := range invoices {
			out[i] = toInvoiceJSON(inv)
		}
		return f.printJSON(out)
	}
	_, err := io.WriteString(f.Writer, renderInvoiceListText(invoices))
	return err
}

// PrintResult writes an arbitrary result map (sweep counts etc).
func (f *OutputFormatter) PrintResult(text string, result any) error {
	if f.Format == "json" {
		return f.printJSON(result)
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

func (f *OutputFormatter) printJSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderInvoiceText renders one invoice as an aligned key/value block.
func renderInvoiceText(inv *invoice.Invoice) string {
	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%-12s %s\n", label, value)
	}
	row("ID", inv.ID)
	row("Number", inv.Number)
	row("Client", inv.ClientName)
	row("Document", inv.ClientDocument)
	row("Address", inv.ClientAddress)
	row("Description", inv.Description)
	row("Amount", inv.Amount.StringFixed(2))
	row("Due", inv.DueDate.Format("2006-01-02"))
	row("Status", string(inv.Status))
	row("Artifact", inv.ArtifactKey)
	row("Created", inv.CreatedAt.UTC().Format(time.RFC3339))
	row("Updated", inv.UpdatedAt.UTC().Format(time.RFC3339))
	return b.String()
}

// renderInvoiceListText renders a compact table of invoices.
func renderInvoiceListText(invoices []*invoice.Invoice) string {
	if len(invoices) == 0 {
		return "no invoices\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-36s  %-12s  %-20s  %10s  %-10s  %s\n",
		"ID", "NUMBER", "CLIENT", "AMOUNT", "DUE", "STATUS")
	for _, inv := range invoices {
		client := inv.ClientName
		if len(client) > 20 {
			client = client[:17] + "..."
		}
		fmt.Fprintf(&b, "%-36s  %-12s  %-20s  %10s  %-10s  %s\n",
			inv.ID,
			inv.Number,
			client,
			inv.Amount.StringFixed(2),
			inv.DueDate.Format("2006-01-02"),
			inv.Status)
	}
	return b.String()
}
