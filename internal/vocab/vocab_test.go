package vocab

import (
	"reflect"
	"testing"
)

func TestEnumeration(t *testing.T) {
	e := NewEnumeration("test", "a", "b", "c")
	if !e.Contains("b") || e.Contains("d") {
		t.Fatal("contains")
	}
	if e.IndexOf("c") != 2 || e.IndexOf("missing") != -1 {
		t.Fatal("index")
	}
	if !reflect.DeepEqual(e.Labels(), []string{"a", "b", "c"}) {
		t.Fatalf("labels: %v", e.Labels())
	}

	// Labels returns a copy.
	e.Labels()[0] = "mutated"
	if e.Labels()[0] != "a" {
		t.Fatal("labels aliased internal state")
	}
}

func TestAllowsOther(t *testing.T) {
	if !Shapes.AllowsOther() {
		t.Fatal("shapes")
	}
	if !StitchPatterns.AllowsOther() {
		t.Fatal("stitch patterns")
	}
	if Notions.AllowsOther() {
		t.Fatal("notions carry no catch-all")
	}
	if Construction.AllowsOther() {
		t.Fatal("construction carries no catch-all")
	}
}

func TestValidWeightCode(t *testing.T) {
	for code := 0; code <= 7; code++ {
		if !ValidWeightCode(code) {
			t.Fatalf("code %d", code)
		}
	}
	if ValidWeightCode(-1) || ValidWeightCode(8) {
		t.Fatal("out of range accepted")
	}
}

func TestUSNeedleChart(t *testing.T) {
	mm, ok := USNeedleMM("7")
	if !ok || mm != 4.5 {
		t.Fatalf("got %v %v", mm, ok)
	}
	if _, ok := USNeedleMM("99"); ok {
		t.Fatal("unknown size resolved")
	}

	us, ok := USNeedleFromMM(4.5, 0.15)
	if !ok || us != "7" {
		t.Fatalf("got %q %v", us, ok)
	}
	us, ok = USNeedleFromMM(4.4, 0.15)
	if !ok || us != "7" {
		t.Fatalf("tolerance: got %q %v", us, ok)
	}
	if _, ok := USNeedleFromMM(4.25, 0.15); ok {
		t.Fatal("between sizes must not resolve")
	}
}
