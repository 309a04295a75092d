package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"knitnorm/internal"
	"knitnorm/internal/util"
)

func TestBuildReportRows(t *testing.T) {
	objectJSON := `{
		"name": "Little Sphere Toy",
		"craft": "Knitting",
		"shape": ["softie", "sphere"],
		"construction": ["in_the_round"],
		"downloads": {"links": ["https://example.com/a.pdf"]},
		"components": [
			{"name": "head", "role": "core", "order": 1, "steps": [{"index": 1, "howto_summary": "cast on"}, {"index": 2, "howto_summary": "close"}]},
			{"name": "ears", "role": "attachment", "order": 2, "steps": [{"index": 1, "howto_summary": "cast on"}]}
		]
	}`
	records := []internal.RecordRow{
		{ID: 1, SourceRef: "https://www.ravelry.com/patterns/library/little-sphere", Status: "processed"},
		{ID: 2, SourceRef: "manual#0", Status: "rejected", Error: util.StringPtr("structural validation failed")},
	}

	rows := BuildReportRows(records, []string{objectJSON, ""})
	if len(rows) != 2 {
		t.Fatalf("rows: %d", len(rows))
	}

	first := rows[0]
	if first.Name == nil || *first.Name != "Little Sphere Toy" {
		t.Fatalf("name: %+v", first.Name)
	}
	if first.Components != 2 || first.Steps != 3 || first.Downloads != 1 {
		t.Fatalf("counts: %+v", first)
	}
	if len(first.Shapes) != 2 {
		t.Fatalf("shapes: %v", first.Shapes)
	}

	second := rows[1]
	if second.Name != nil || second.Components != 0 {
		t.Fatalf("rejected row carries object data: %+v", second)
	}
	if second.Error == nil {
		t.Fatal("error lost")
	}
}

func TestExportReportXLSX(t *testing.T) {
	rows := []internal.ReportRow{
		{RecordID: 1, SourceRef: "ref", Status: "processed", Name: util.StringPtr("Toy"), Components: 2, Steps: 3},
	}
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	if err := ExportReportXLSX(rows, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	header, err := f.GetCellValue(sheet, "A1")
	if err != nil || header != "record_id" {
		t.Fatalf("header: %q %v", header, err)
	}
	name, err := f.GetCellValue(sheet, "D2")
	if err != nil || name != "Toy" {
		t.Fatalf("name cell: %q %v", name, err)
	}
}
