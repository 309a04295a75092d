package pipeline

import (
	"testing"

	"knitnorm/internal"
	"knitnorm/internal/vocab"
)

func stitchClassifier() *Classifier {
	return NewClassifier(vocab.DefaultTables().StitchPattern)
}

func TestParseNeedles(t *testing.T) {
	entries := ParseNeedles("US 7 (4.5 mm), US 9 (5.5 mm) circular")
	if len(entries) != 2 {
		t.Fatalf("len=%d", len(entries))
	}

	first := entries[0]
	if first.USSize == nil || *first.USSize != "US 7" {
		t.Fatalf("us size: %+v", first)
	}
	if first.MM == nil || *first.MM != 4.5 {
		t.Fatalf("mm: %+v", first)
	}
	if first.Type != nil {
		t.Fatalf("type should be nil: %+v", first)
	}

	second := entries[1]
	if second.USSize == nil || *second.USSize != "US 9" {
		t.Fatalf("us size: %+v", second)
	}
	if second.MM == nil || *second.MM != 5.5 {
		t.Fatalf("mm: %+v", second)
	}
	if second.Type == nil || *second.Type != internal.NeedleCircular {
		t.Fatalf("type: %+v", second)
	}
}

func TestParseNeedlesChartFill(t *testing.T) {
	entries := ParseNeedles("US 6 straight")
	if len(entries) != 1 {
		t.Fatalf("len=%d", len(entries))
	}
	if entries[0].MM == nil || *entries[0].MM != 4.0 {
		t.Fatalf("chart mm: %+v", entries[0])
	}

	entries = ParseNeedles("4.5 mm dpn")
	if len(entries) != 1 {
		t.Fatalf("len=%d", len(entries))
	}
	if entries[0].USSize == nil || *entries[0].USSize != "US 7" {
		t.Fatalf("chart us: %+v", entries[0])
	}
	if entries[0].Type == nil || *entries[0].Type != internal.NeedleDPN {
		t.Fatalf("type: %+v", entries[0])
	}

	// 4.25 mm is not on the chart within tolerance.
	entries = ParseNeedles("4.25 mm")
	if len(entries) != 1 || entries[0].USSize != nil {
		t.Fatalf("off-chart mm must not invent a US size: %+v", entries)
	}
}

func TestParseNeedleLength(t *testing.T) {
	entries := ParseNeedles("US 8 (5 mm) 16 in circular")
	if len(entries) != 1 {
		t.Fatalf("len=%d", len(entries))
	}
	if entries[0].LengthMM == nil || *entries[0].LengthMM != 406 {
		t.Fatalf("length: %+v", entries[0])
	}

	entries = ParseNeedles("40 cm circular 3.5 mm")
	if len(entries) != 1 {
		t.Fatalf("len=%d", len(entries))
	}
	if entries[0].LengthMM == nil || *entries[0].LengthMM != 400 {
		t.Fatalf("length: %+v", entries[0])
	}
}

func TestParseNeedlesNoTokens(t *testing.T) {
	if entries := ParseNeedles("any size you like"); len(entries) != 0 {
		t.Fatalf("got %+v", entries)
	}
}

func TestParseGaugePerInch(t *testing.T) {
	g := ParseGauge("5 sts = 1 in", stitchClassifier())
	if g == nil || g.StitchesPer10CM == nil || *g.StitchesPer10CM != 20 {
		t.Fatalf("got %+v", g)
	}
	if g.RowsPer10CM != nil || g.StitchPattern != nil {
		t.Fatalf("got %+v", g)
	}
}

func TestParseGaugeFull(t *testing.T) {
	g := ParseGauge("20 sts and 28 rows = 4 in / 10 cm in stockinette", stitchClassifier())
	if g == nil {
		t.Fatal("nil gauge")
	}
	if g.StitchesPer10CM == nil || *g.StitchesPer10CM != 20 {
		t.Fatalf("sts: %+v", g)
	}
	if g.RowsPer10CM == nil || *g.RowsPer10CM != 28 {
		t.Fatalf("rows: %+v", g)
	}
	if g.StitchPattern == nil || *g.StitchPattern != internal.StitchStockinette {
		t.Fatalf("pattern: %+v", g)
	}
}

func TestParseGaugeUnrecognizedPattern(t *testing.T) {
	g := ParseGauge("22 sts = 10 cm in seed stitch", stitchClassifier())
	if g == nil || g.StitchPattern == nil || *g.StitchPattern != internal.StitchOther {
		t.Fatalf("got %+v", g)
	}
}

func TestParseGaugeAbsent(t *testing.T) {
	if g := ParseGauge("a lovely pattern with no tension note", stitchClassifier()); g != nil {
		t.Fatalf("got %+v", g)
	}
	if g := ParseGauge("", stitchClassifier()); g != nil {
		t.Fatalf("got %+v", g)
	}
}
