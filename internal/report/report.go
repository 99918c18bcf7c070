package report

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"stickermaker/internal/core/domain"
)

const sheet = "Batch"

// Path returns where the report for result is written.
func Path(result *domain.BatchResult) string {
	return filepath.Join(result.Job.OutputDir, fmt.Sprintf("report_%s.xlsx", result.Job.ID))
}

// BuildXLSX returns an XLSX workbook (as bytes) with one row per processed file.
func BuildXLSX(result *domain.BatchResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Input", "Status", "Output", "Error", "Duration (ms)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, fr := range result.Files {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		status := "ok"
		if !fr.OK() {
			status = "error"
		}
		write(1, filepath.Base(fr.InputPath))
		write(2, status)
		write(3, fr.OutputPath)
		write(4, fr.Error)
		write(5, fr.FinishedAt.Sub(fr.StartedAt).Milliseconds())
		row++
	}

	// Summary below the table.
	row++
	summary, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetCellValue(sheet, summary, fmt.Sprintf("%s (mode %s)", result.Summary(), result.Job.Mode))

	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "B", "B", 8)
	_ = f.SetColWidth(sheet, "C", "C", 60)
	_ = f.SetColWidth(sheet, "D", "D", 48)
	_ = f.SetColWidth(sheet, "E", "E", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
