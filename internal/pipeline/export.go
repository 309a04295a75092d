package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"knitnorm/internal"
)

// BuildReportRows flattens processed records and their canonical objects
// into report rows.
func BuildReportRows(records []internal.RecordRow, objects []string) []internal.ReportRow {
	rows := make([]internal.ReportRow, 0, len(records))
	for i, record := range records {
		row := internal.ReportRow{
			RecordID:  record.ID,
			SourceRef: record.SourceRef,
			Status:    record.Status,
			Error:     record.Error,
		}

		if i < len(objects) && objects[i] != "" {
			var obj internal.CanonicalObject
			if err := json.Unmarshal([]byte(objects[i]), &obj); err == nil {
				row.Name = obj.Name
				row.Craft = obj.Craft
				row.Shapes = obj.Shape
				row.Construction = obj.Construction
				row.Components = len(obj.Components)
				row.Downloads = len(obj.Downloads.Links)
				for _, comp := range obj.Components {
					row.Steps += len(comp.Steps)
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ExportReportXLSX writes the batch summary workbook.
func ExportReportXLSX(rows []internal.ReportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"record_id", "source_ref", "status", "name", "craft",
		"shapes", "construction", "components", "steps", "downloads", "error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.RecordID)
		set(2, row.SourceRef)
		set(3, row.Status)
		set(4, derefString(row.Name))
		set(5, derefString(row.Craft))
		set(6, joinShapes(row.Shapes))
		set(7, joinConstruction(row.Construction))
		set(8, row.Components)
		set(9, row.Steps)
		set(10, row.Downloads)
		set(11, derefString(row.Error))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func joinShapes(shapes []internal.ShapeCategory) string {
	parts := make([]string, 0, len(shapes))
	for _, s := range shapes {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}

func joinConstruction(methods []internal.ConstructionMethod) string {
	parts := make([]string, 0, len(methods))
	for _, m := range methods {
		parts = append(parts, string(m))
	}
	return strings.Join(parts, ", ")
}
