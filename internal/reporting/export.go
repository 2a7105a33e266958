package reporting

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportSalesXLSX renders the sales report as a workbook with one sheet per
// section.
func (s *Service) ExportSalesXLSX(ctx context.Context, r Range, topN int) (*bytes.Buffer, error) {
	rep, err := s.SalesReport(ctx, r, topN)
	if err != nil {
		return nil, err
	}
	return WriteWorkbook(rep)
}

func WriteWorkbook(rep *SalesReport) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, fmt.Errorf("xlsx rename sheet: %w", err)
	}
	summary := [][]any{
		{"From", rep.Range.Start.Format(dateLayout)},
		{"To", rep.Range.LastDay().Format(dateLayout)},
		{"Total sales", rep.TotalSales.InexactFloat64()},
		{"Orders", rep.OrderCount},
	}
	if err := writeRows(f, "Summary", nil, summary); err != nil {
		return nil, err
	}

	daily := make([][]any, 0, len(rep.Daily))
	for _, d := range rep.Daily {
		daily = append(daily, []any{d.Date, d.Total.InexactFloat64(), d.Orders})
	}
	if err := addSheet(f, "Daily", header, []any{"Date", "Sales", "Orders"}, daily); err != nil {
		return nil, err
	}

	cats := make([][]any, 0, len(rep.Categories))
	for _, c := range rep.Categories {
		cats = append(cats, []any{c.Category, c.Total.InexactFloat64()})
	}
	if err := addSheet(f, "Categories", header, []any{"Category", "Sales"}, cats); err != nil {
		return nil, err
	}

	top := make([][]any, 0, len(rep.TopItems))
	for _, it := range rep.TopItems {
		top = append(top, []any{it.Name, it.Quantity, it.Revenue.InexactFloat64()})
	}
	if err := addSheet(f, "Top items", header, []any{"Item", "Quantity", "Revenue"}, top); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf, nil
}

func addSheet(f *excelize.File, name string, headerStyle int, header []any, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("xlsx sheet %s: %w", name, err)
	}
	if err := writeRows(f, name, header, rows); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(name, "A1", last, headerStyle)
}

func writeRows(f *excelize.File, sheet string, header []any, rows [][]any) error {
	line := 1
	if header != nil {
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("xlsx %s header: %w", sheet, err)
		}
		line++
	}
	for _, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx %s row %d: %w", sheet, line, err)
		}
		line++
	}
	return nil
}
