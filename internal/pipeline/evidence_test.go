package pipeline

import (
	"reflect"
	"testing"

	"knitnorm/internal"
)

func TestExtractString(t *testing.T) {
	record := internal.RawRecord{
		"name":  "Octopus",
		"title": "Ravelry: Octopus",
		"notes": []any{" first ", "second"},
		"blank": "   ",
	}

	if got := ExtractString(record, "name", "title"); got == nil || *got != "Octopus" {
		t.Fatalf("priority: %+v", got)
	}
	if got := ExtractString(record, "missing", "title"); got == nil || *got != "Ravelry: Octopus" {
		t.Fatalf("fallthrough: %+v", got)
	}
	if got := ExtractString(record, "notes"); got == nil || *got != "first" {
		t.Fatalf("list scalar: %+v", got)
	}
	if got := ExtractString(record, "blank", "missing"); got != nil {
		t.Fatalf("blank must be absent: %q", *got)
	}
	if got := ExtractString(record, "nowhere"); got != nil {
		t.Fatalf("absent: %q", *got)
	}
}

func TestExtractStrings(t *testing.T) {
	record := internal.RawRecord{
		"tags":   []any{"ball", 7, " toy ", ""},
		"single": "just one",
		"empty":  []string{},
	}

	if got := ExtractStrings(record, "tags"); !reflect.DeepEqual(got, []string{"ball", "toy"}) {
		t.Fatalf("got %v", got)
	}
	if got := ExtractStrings(record, "single"); !reflect.DeepEqual(got, []string{"just one"}) {
		t.Fatalf("got %v", got)
	}
	if got := ExtractStrings(record, "empty", "single"); !reflect.DeepEqual(got, []string{"just one"}) {
		t.Fatalf("empty list must fall through: %v", got)
	}
	if got := ExtractStrings(record, "nowhere"); got != nil {
		t.Fatalf("got %v", got)
	}
}
