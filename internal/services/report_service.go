package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/feria-api/internal/models"
	"github.com/sjperalta/feria-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

const auditSheet = "Auditoría"

type ReportService struct {
	auditRepo repository.AuditRepository
	purchases *PurchaseService
	now       func() time.Time
}

func NewReportService(auditRepo repository.AuditRepository, purchases *PurchaseService) *ReportService {
	return &ReportService{
		auditRepo: auditRepo,
		purchases: purchases,
		now:       time.Now,
	}
}

// ExportAuditXLSX writes every audit entry matching the query filters to a
// spreadsheet, oldest first
func (s *ReportService) ExportAuditXLSX(ctx context.Context, query *repository.ListQuery) (*bytes.Buffer, error) {
	logs, err := s.auditRepo.FindAll(ctx, query)
	if err != nil {
		return nil, classifyStoreError("export audit logs", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	_ = f.SetSheetName("Sheet1", auditSheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"ID", "Evento", "Fecha", "Acción", "Entidad", "ID Entidad", "Actor", "Antes", "Después", "Metadatos"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(auditSheet, cell, h)
	}
	_ = f.SetCellStyle(auditSheet, "A1", "J1", headerStyle)

	for i, entry := range logs {
		row := i + 2
		values := []any{
			entry.ID,
			entry.EventID,
			entry.CreatedAt.UTC().Format(time.RFC3339Nano),
			string(entry.Action),
			string(entry.Entity),
			entry.EntityID,
			entry.ActorID,
			jsonCell(entry.Before),
			jsonCell(entry.After),
			jsonCell(entry.Metadata),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(auditSheet, cell, v)
		}
	}

	return f.WriteToBuffer()
}

// PurchaseStatementPDF renders the installment plan and balance of a purchase
func (s *ReportService) PurchaseStatementPDF(ctx context.Context, purchaseID uint) (*bytes.Buffer, error) {
	purchase, err := s.purchases.Get(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	asOf := s.now()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr("Estado de Cuenta"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	summary := [][2]string{
		{"Compra:", fmt.Sprintf("#%d", purchase.ID)},
		{"Expositor:", fmt.Sprintf("#%d", purchase.ExhibitorID)},
		{"Feria:", fmt.Sprintf("#%d", purchase.FairID)},
		{"Total:", FormatCents(purchase.TotalCents)},
		{"Pagado:", FormatCents(purchase.PaidCents)},
		{"Saldo:", FormatCents(purchase.TotalCents - purchase.PaidCents)},
		{"Estado:", statusLabel(purchase.DisplayStatus(asOf))},
		{"Fecha:", asOf.Format(models.DateLayout)},
	}
	for _, line := range summary {
		pdf.Cell(40, 6, tr(line[0]))
		pdf.Cell(60, 6, tr(line[1]))
		pdf.Ln(6)
	}
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, tr("Son: "+AmountInWords(purchase.TotalCents-purchase.PaidCents)), "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	widths := []float64{15, 35, 35, 35, 35, 25}
	for i, h := range []string{"#", "Vence", "Monto", "Pagado", "Pendiente", "Estado"} {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for i := range purchase.Installments {
		inst := &purchase.Installments[i]
		state := "Pendiente"
		switch {
		case inst.IsPaid():
			state = "Pagada"
		case inst.IsOverdue(asOf):
			state = "Vencida"
		}
		cells := []string{
			fmt.Sprintf("%d", inst.Number),
			inst.DueDate.Format(models.DateLayout),
			FormatCents(inst.AmountCents),
			FormatCents(inst.PaidCents),
			FormatCents(inst.RemainingCents()),
			state,
		}
		for c, v := range cells {
			align := "R"
			if c == 0 || c == 5 {
				align = "C"
			}
			pdf.CellFormat(widths[c], 7, tr(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render statement for purchase %d: %w", purchaseID, err)
	}
	return &buf, nil
}

// FormatCents renders an amount in cents as a fixed two-decimal string
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func statusLabel(status models.PaymentStatus) string {
	switch status {
	case models.PaymentStatusUnpaid:
		return "Sin pagos"
	case models.PaymentStatusPartiallyPaid:
		return "Pago parcial"
	case models.PaymentStatusPaid:
		return "Pagada"
	case models.PaymentStatusOverdue:
		return "En mora"
	default:
		return strings.ToUpper(string(status))
	}
}

func jsonCell(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	return string(raw)
}
