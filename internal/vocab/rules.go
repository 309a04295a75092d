package vocab

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule maps a case-insensitive text pattern to one enum label. A rule with
// multiple Patterns treats them as equivalent variants of the same evidence.
type Rule struct {
	Patterns []string `yaml:"patterns"`
	Label    string   `yaml:"label"`
}

// RuleTable is an ordered list of rules targeting one Enumeration. Order is
// the priority order used when a caller forces a single label.
type RuleTable struct {
	Enum  *Enumeration
	Rules []Rule
}

// Validate checks that every rule label is a member of the target enum.
func (t RuleTable) Validate() error {
	for i, r := range t.Rules {
		if len(r.Patterns) == 0 {
			return fmt.Errorf("%s rule %d: no patterns", t.Enum.Name(), i)
		}
		if !t.Enum.Contains(r.Label) {
			return fmt.Errorf("%s rule %d: label %q not in enumeration", t.Enum.Name(), i, r.Label)
		}
	}
	return nil
}

// Tables bundles the rule tables the pipeline classifies with.
type Tables struct {
	Shape         RuleTable
	Construction  RuleTable
	StitchPattern RuleTable
	Notions       RuleTable
}

func (t Tables) Validate() error {
	for _, table := range []RuleTable{t.Shape, t.Construction, t.StitchPattern, t.Notions} {
		if err := table.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DefaultTables returns the built-in rule set.
func DefaultTables() Tables {
	return Tables{
		Shape: RuleTable{Enum: Shapes, Rules: []Rule{
			{Patterns: []string{"ball", "sphere", "egg", "orb"}, Label: "sphere"},
			{Patterns: []string{"cube", "box", "block", "square plush"}, Label: "cube"},
			{Patterns: []string{"cone", "tree"}, Label: "cone"},
			{Patterns: []string{"tube", "sock", "sleeve", "leg warmer"}, Label: "cylinder"},
			{Patterns: []string{"toy", "amigurumi", "softie", "plush", "stuffed"}, Label: "softie"},
			{Patterns: []string{"leaf", "flower", "petal", "mushroom", "vegetable", "fruit"}, Label: "organic"},
			{Patterns: []string{"dishcloth", "washcloth", "scarf", "blanket", "coaster", "flat square"}, Label: "flat"},
		}},
		Construction: RuleTable{Enum: Construction, Rules: []Rule{
			{Patterns: []string{"in the round", "worked in the round", "magic loop", "join to work in the round"}, Label: "in_the_round"},
			{Patterns: []string{"worked flat", "seam the", "seamed", "mattress stitch"}, Label: "flat_seamed"},
			{Patterns: []string{"short row", "short rows", "w&t", "wrap and turn", "german short"}, Label: "short_rows"},
			{Patterns: []string{"increase", "kfb", "m1l", "m1r", "inc"}, Label: "increases"},
			{Patterns: []string{"decrease", "k2tog", "ssk", "dec"}, Label: "decreases"},
			{Patterns: []string{"modular", "module", "mitered"}, Label: "modular"},
			{Patterns: []string{"top-down", "top down"}, Label: "top_down"},
			{Patterns: []string{"bottom-up", "bottom up"}, Label: "bottom_up"},
			{Patterns: []string{"graft", "kitchener"}, Label: "grafting"},
			{Patterns: []string{"pick up stitches", "pick up and knit", "picked up"}, Label: "pick_up_stitches"},
		}},
		StitchPattern: RuleTable{Enum: StitchPatterns, Rules: []Rule{
			{Patterns: []string{"stockinette", "stocking stitch", "st st"}, Label: "stockinette"},
			{Patterns: []string{"garter"}, Label: "garter"},
			{Patterns: []string{"rib", "ribbing", "1x1", "2x2"}, Label: "rib"},
		}},
		Notions: RuleTable{Enum: Notions, Rules: []Rule{
			{Patterns: []string{"stuffing", "stuffed", "fiberfill", "polyfill", "toy filling"}, Label: "stuffing"},
			{Patterns: []string{"safety eyes", "safety eye"}, Label: "safety_eyes"},
			{Patterns: []string{"tapestry needle", "darning needle", "yarn needle"}, Label: "tapestry_needle"},
			{Patterns: []string{"stitch marker", "stitch markers"}, Label: "stitch_markers"},
			{Patterns: []string{"stitch holder", "waste yarn"}, Label: "stitch_holder"},
			{Patterns: []string{"button", "buttons"}, Label: "buttons"},
			{Patterns: []string{"embroidery floss", "embroidery thread"}, Label: "embroidery_floss"},
		}},
	}
}

type rulesFile struct {
	Shape         []Rule `yaml:"shape"`
	Construction  []Rule `yaml:"construction"`
	StitchPattern []Rule `yaml:"stitch_pattern"`
	Notions       []Rule `yaml:"notions"`
}

// LoadTables reads a YAML rules file and overlays it on the defaults: a
// section present in the file replaces that table wholesale, absent sections
// keep the built-ins. The result is validated against the enumerations.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()

	blob, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, err
	}
	var file rulesFile
	if err := yaml.Unmarshal(blob, &file); err != nil {
		return Tables{}, fmt.Errorf("parse rules file: %w", err)
	}

	if len(file.Shape) > 0 {
		tables.Shape.Rules = file.Shape
	}
	if len(file.Construction) > 0 {
		tables.Construction.Rules = file.Construction
	}
	if len(file.StitchPattern) > 0 {
		tables.StitchPattern.Rules = file.StitchPattern
	}
	if len(file.Notions) > 0 {
		tables.Notions.Rules = file.Notions
	}

	if err := tables.Validate(); err != nil {
		return Tables{}, err
	}
	return tables, nil
}
