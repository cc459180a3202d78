// Package export produces XLSX workbooks from stored receipts.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"receipt-digitizer/internal/entity"
	"receipt-digitizer/internal/repository"
	"receipt-digitizer/internal/validate"
)

// Service renders stored receipts to an XLSX workbook.
type Service struct {
	store  repository.Store
	logger *slog.Logger
}

func NewService(store repository.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportXLSX returns a workbook with one row per stored receipt. Absent
// fields render as empty cells, not fabricated values.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Receipts"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Date", "Vendor", "Subtotal", "Tax", "Total", "Items", "Date Check", "Needs Review",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, r := range recs {
		rep := validate.Check(r)
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, strOrEmpty(r.Date))
		write(2, strOrEmpty(r.Vendor))
		write(3, fmt.Sprintf("%.2f", rep.Subtotal))
		write(4, moneyOrEmpty(r.Tax))
		write(5, moneyOrEmpty(r.Total))
		write(6, itemSummary(r.LineItems))
		write(7, rep.DateStatus)
		write(8, r.NeedsReview)
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 48)
	_ = f.SetColWidth(sheet, "G", "G", 20)
	_ = f.SetColWidth(sheet, "H", "H", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func itemSummary(items []entity.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%d @ %.2f", it.Name, it.Quantity, it.Price))
	}
	return strings.Join(parts, "; ")
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func moneyOrEmpty(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *p)
}
