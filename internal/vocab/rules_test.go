package vocab

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTablesValid(t *testing.T) {
	if err := DefaultTables().Validate(); err != nil {
		t.Fatalf("defaults: %v", err)
	}
}

func TestRuleTableValidate(t *testing.T) {
	bad := RuleTable{Enum: Shapes, Rules: []Rule{
		{Patterns: []string{"ball"}, Label: "sphere"},
		{Patterns: []string{"pyramid"}, Label: "tetrahedron"},
	}}
	if err := bad.Validate(); err == nil {
		t.Fatal("unknown label accepted")
	}

	empty := RuleTable{Enum: Shapes, Rules: []Rule{{Label: "sphere"}}}
	if err := empty.Validate(); err == nil {
		t.Fatal("patternless rule accepted")
	}
}

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadTablesOverlay(t *testing.T) {
	path := writeRules(t, `shape:
  - patterns: ["dumpling"]
    label: sphere
`)
	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tables.Shape.Rules) != 1 || tables.Shape.Rules[0].Patterns[0] != "dumpling" {
		t.Fatalf("shape rules: %+v", tables.Shape.Rules)
	}
	// Absent sections keep the built-ins.
	if len(tables.Construction.Rules) != len(DefaultTables().Construction.Rules) {
		t.Fatalf("construction rules replaced: %+v", tables.Construction.Rules)
	}
}

func TestLoadTablesBadLabel(t *testing.T) {
	path := writeRules(t, `notions:
  - patterns: ["glitter"]
    label: glitter
`)
	if _, err := LoadTables(path); err == nil {
		t.Fatal("label outside enumeration accepted")
	}
}

func TestLoadTablesMissingFile(t *testing.T) {
	if _, err := LoadTables(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestLoadTablesBadYAML(t *testing.T) {
	path := writeRules(t, "shape: [not a rule")
	if _, err := LoadTables(path); err == nil {
		t.Fatal("malformed yaml accepted")
	}
}
