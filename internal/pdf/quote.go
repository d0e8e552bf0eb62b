// Package pdf renders printable quote documents.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/grupo-sgp/erp-api/internal/domain"
)

// QuoteDocument carries everything a rendered quote needs.
type QuoteDocument struct {
	Order      *domain.SalesOrder
	ClientName string
	Seller     string
	Logo       io.Reader
	LogoExt    string
}

// formatMoney renders an amount with thousand separators ($1,234.50).
func formatMoney(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	parts := strings.SplitN(s, ".", 2)
	intPart, frac := parts[0], parts[1]
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// RenderQuote produces the customer-facing PDF for a quote.
func RenderQuote(doc QuoteDocument) ([]byte, error) {
	order := doc.Order

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	if doc.Logo != nil {
		imgType := strings.TrimPrefix(strings.ToUpper(doc.LogoExt), ".")
		if imgType == "JPEG" {
			imgType = "JPG"
		}
		if imgType == "PNG" || imgType == "JPG" {
			opts := fpdf.ImageOptions{ImageType: imgType}
			pdf.RegisterImageOptionsReader("logo", opts, doc.Logo)
			pdf.ImageOptions("logo", 10, 10, 40, 0, false, opts, 0, "")
		}
	}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(60, 12)
	pdf.CellFormat(140, 8, "Cotizacion", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(60, 22)
	pdf.CellFormat(140, 5, fmt.Sprintf("Folio: %s", order.ID.String()[:8]), "", 1, "R", false, 0, "")
	pdf.SetX(60)
	pdf.CellFormat(140, 5, fmt.Sprintf("Fecha: %s", order.CreatedAt.Format("2006-01-02")), "", 1, "R", false, 0, "")
	pdf.SetX(60)
	pdf.CellFormat(140, 5, fmt.Sprintf("Vigencia: %s", order.ValidUntil.Format("2006-01-02")), "", 1, "R", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Proyecto: "+order.ProjectName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if doc.ClientName != "" {
		pdf.CellFormat(0, 5, "Cliente: "+doc.ClientName, "", 1, "L", false, 0, "")
	}
	if doc.Seller != "" {
		pdf.CellFormat(0, 5, "Vendedor: "+doc.Seller, "", 1, "L", false, 0, "")
	}
	if order.DeliveryDate != nil {
		pdf.CellFormat(0, 5, "Entrega estimada: "+order.DeliveryDate.Format("2006-01-02"), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)

	// Items table
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(95, 7, "Concepto", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "Cantidad", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Precio unitario", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Importe", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range order.Items {
		pdf.CellFormat(95, 6, item.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, formatMoney(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, formatMoney(item.SubtotalPrice), "1", 1, "R", false, 0, "")
	}

	// Totals
	pdf.Ln(4)
	totals := []struct {
		label string
		value float64
	}{
		{"Subtotal", order.Subtotal},
		{"Impuesto", order.TaxAmount},
		{"Total", order.TotalPrice},
	}
	for i, t := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Helvetica", "B", 10)
		} else {
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.CellFormat(155, 6, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, formatMoney(t.value)+" "+order.Currency, "", 1, "R", false, 0, "")
	}

	if order.Conditions != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, "Condiciones", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, order.Conditions, "", "L", false)
	}
	if order.Notes != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, "Notas", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, order.Notes, "", "L", false)
	}

	pdf.SetY(-25)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5,
		fmt.Sprintf("Documento generado el %s", time.Now().UTC().Format("2006-01-02 15:04")),
		"", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
