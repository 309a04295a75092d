package pipeline

import (
	"testing"

	"knitnorm/internal/vocab"
)

func TestClassifyMultiLabel(t *testing.T) {
	c := NewClassifier(vocab.DefaultTables().Construction)

	got := c.Classify("Worked in the round with short rows for shaping.")
	want := []string{"in_the_round", "short_rows"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestClassifyVariants(t *testing.T) {
	c := NewClassifier(vocab.DefaultTables().Construction)

	for _, text := range []string{"knit top-down", "knit top down"} {
		got := c.Classify(text)
		if len(got) != 1 || got[0] != "top_down" {
			t.Fatalf("%q: got %v", text, got)
		}
	}

	got := c.Classify("k2tog at each end")
	if len(got) != 1 || got[0] != "decreases" {
		t.Fatalf("got %v", got)
	}
}

func TestClassifyTokenBoundary(t *testing.T) {
	c := NewClassifier(vocab.DefaultTables().Construction)
	if got := c.Classify("described since forever"); len(got) != 0 {
		t.Fatalf("boundary leak: %v", got)
	}
}

func TestClassifySingleKeepsPriority(t *testing.T) {
	c := NewClassifier(vocab.DefaultTables().Shape)
	// Both the sphere and softie rules fire; sphere sits first in the table.
	label, ok := c.ClassifySingle("a knitted ball toy")
	if !ok || label != "sphere" {
		t.Fatalf("label=%q ok=%v", label, ok)
	}
}

func TestClassifyFallback(t *testing.T) {
	shape := NewClassifier(vocab.DefaultTables().Shape)
	got := shape.ClassifyWithFallback("an unusual thing with no keywords")
	if len(got) != 1 || got[0] != "other" {
		t.Fatalf("got %v", got)
	}
	if got := shape.ClassifyWithFallback("   "); len(got) != 0 {
		t.Fatalf("empty text must yield empty set, got %v", got)
	}

	notions := NewClassifier(vocab.DefaultTables().Notions)
	if got := notions.ClassifyWithFallback("no notions named here"); len(got) != 0 {
		t.Fatalf("enum without other must yield empty set, got %v", got)
	}
}

func TestClassifyDeterministicOrder(t *testing.T) {
	c := NewClassifier(vocab.DefaultTables().Construction)
	text := "graft the toe, then pick up stitches and decrease in the round"
	first := c.Classify(text)
	for i := 0; i < 10; i++ {
		again := c.Classify(text)
		if len(again) != len(first) {
			t.Fatalf("unstable output: %v vs %v", again, first)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("unstable output: %v vs %v", again, first)
			}
		}
	}
}
