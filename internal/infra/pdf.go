package infra

// pdf.go renders the bakery production sheet (go-pdf/fpdf, A4 portrait):
// header with business name and delivery date, one row per product with
// ordered and to-produce quantities, and a footer with the totals.

import (
	"bytes"
	"fmt"
	"time"

	"famorders/internal/dto"

	"github.com/go-pdf/fpdf"
)

// RenderProductionSheet returns the PDF bytes for one delivery date.
func RenderProductionSheet(businessName, date string, needs []dto.ProductionNeed) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(fmt.Sprintf("Produção %s", date), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(businessName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 7, tr("Folha de produção - entrega "+date), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Table header ─────────────────────────────────────────────────────────
	colSKU := contentW * 0.18
	colName := contentW * 0.42
	colQty := contentW * 0.13
	colBatch := contentW * 0.12
	colProd := contentW * 0.15

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(colSKU, 7, "SKU", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colName, 7, "Produto", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, 7, "Pedido", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colBatch, 7, "Lote", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colProd, 7, "Produzir", "1", 1, "R", true, 0, "")

	// ── Rows ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	var ordered, produce int
	for _, n := range needs {
		name := n.Name
		if len(name) > 48 {
			name = name[:47] + "..."
		}
		pdf.CellFormat(colSKU, 6, n.SKU, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colName, 6, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 6, fmt.Sprintf("%d", n.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colBatch, 6, fmt.Sprintf("%d", n.BatchSize), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colProd, 6, fmt.Sprintf("%d", n.RoundedQuantity), "1", 1, "R", false, 0, "")
		ordered += n.Quantity
		produce += n.RoundedQuantity
	}
	if len(needs) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 6, tr("Sem pedidos em aberto para esta data."), "1", 1, "C", false, 0, "")
	}

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colSKU+colName, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(colQty, 7, fmt.Sprintf("%d", ordered), "1", 0, "R", false, 0, "")
	pdf.CellFormat(colBatch, 7, "", "1", 0, "R", false, 0, "")
	pdf.CellFormat(colProd, 7, fmt.Sprintf("%d", produce), "1", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Gerado em "+time.Now().UTC().Format("02/01/2006 15:04")+" UTC", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render production sheet: %w", err)
	}
	return buf.Bytes(), nil
}
