// Package render turns structured invoice data into a printable PDF.
// It is a pure transformation: no knowledge of the record store, the
// blob store or the lifecycle service, and no side effects.
package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Item is a single billable line of an invoice.
type Item struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// Payload is the full structured content of one invoice document.
type Payload struct {
	InvoiceNumber  string
	IssueDate      time.Time
	DueDate        time.Time
	ClientName     string
	ClientDocument string
	ClientAddress  string
	Items          []Item
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
}

const dateLayout = "02/01/2006"

var printer = message.NewPrinter(language.BrazilianPortuguese)

// money renders a decimal amount with locale-aware separators.
func money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("R$ %v", number.Decimal(f, number.Scale(2)))
}

// PDF renders the payload into a complete PDF document.
func PDF(p Payload) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 20, 15)
	doc.AddPage()

	// Core fonts are cp1252; translate the UTF-8 strings.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	header(doc, tr, p)
	parties(doc, tr, p)
	items(doc, tr, p)
	totals(doc, p)
	footer(doc, tr)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func header(doc *fpdf.Fpdf, tr func(string) string, p Payload) {
	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 12, "FATURA", "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, tr(fmt.Sprintf("Número: %s", p.InvoiceNumber)), "", 1, "C", false, 0, "")
	doc.CellFormat(0, 6,
		tr(fmt.Sprintf("Emissão: %s    Vencimento: %s",
			p.IssueDate.Format(dateLayout), p.DueDate.Format(dateLayout))),
		"", 1, "C", false, 0, "")
	doc.Ln(6)
}

func parties(doc *fpdf.Fpdf, tr func(string) string, p Payload) {
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, "Cliente", "B", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, tr(p.ClientName), "", 1, "L", false, 0, "")
	if p.ClientDocument != "" {
		doc.CellFormat(0, 6, tr(fmt.Sprintf("Documento: %s", p.ClientDocument)), "", 1, "L", false, 0, "")
	}
	if p.ClientAddress != "" {
		doc.CellFormat(0, 6, tr(p.ClientAddress), "", 1, "L", false, 0, "")
	}
	doc.Ln(4)
}

func items(doc *fpdf.Fpdf, tr func(string) string, p Payload) {
	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(230, 230, 230)
	doc.CellFormat(95, 8, tr("Descrição"), "1", 0, "L", true, 0, "")
	doc.CellFormat(20, 8, "Qtd", "1", 0, "C", true, 0, "")
	doc.CellFormat(32, 8, tr("Preço unit."), "1", 0, "R", true, 0, "")
	doc.CellFormat(33, 8, "Total", "1", 1, "R", true, 0, "")

	doc.SetFont("Helvetica", "", 10)
	for _, it := range p.Items {
		doc.CellFormat(95, 8, tr(it.Description), "1", 0, "L", false, 0, "")
		doc.CellFormat(20, 8, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		doc.CellFormat(32, 8, money(it.UnitPrice), "1", 0, "R", false, 0, "")
		doc.CellFormat(33, 8, money(it.Total), "1", 1, "R", false, 0, "")
	}
	doc.Ln(4)
}

func totals(doc *fpdf.Fpdf, p Payload) {
	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		doc.SetFont("Helvetica", style, 10)
		doc.CellFormat(147, 7, label, "", 0, "R", false, 0, "")
		doc.CellFormat(33, 7, value, "", 1, "R", false, 0, "")
	}
	row("Subtotal:", money(p.Subtotal), false)
	row("Impostos:", money(p.Tax), false)
	row("Total:", money(p.Total), true)
}

func footer(doc *fpdf.Fpdf, tr func(string) string) {
	doc.Ln(12)
	doc.SetFont("Helvetica", "I", 8)
	doc.SetTextColor(120, 120, 120)
	doc.CellFormat(0, 5, tr("Documento gerado automaticamente."), "", 1, "C", false, 0, "")
}
