package pipeline

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"knitnorm/internal"
	"knitnorm/internal/util"
	"knitnorm/internal/vocab"
)

// StructuralError is fatal for one record: the assembler refuses to emit an
// object that breaks the schema contract.
type StructuralError struct {
	Field     string
	Invariant string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural validation failed: %s: %s", e.Field, e.Invariant)
}

// Assembler orchestrates the extraction stages per field group and emits one
// validated CanonicalObject per raw record. It holds no per-record state, so
// one Assembler serves any number of concurrent Assemble calls.
type Assembler struct {
	tables       vocab.Tables
	shape        *Classifier
	construction *Classifier
	stitch       *Classifier
	notions      *Classifier
}

func NewAssembler(tables vocab.Tables) (*Assembler, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return &Assembler{
		tables:       tables,
		shape:        NewClassifier(tables.Shape),
		construction: NewClassifier(tables.Construction),
		stitch:       NewClassifier(tables.StitchPattern),
		notions:      NewClassifier(tables.Notions),
	}, nil
}

// Assemble builds the canonical object for one raw record. Missing evidence
// maps to nil or empty fields; only a structural contract violation returns
// an error, and then no object is emitted at all.
func (a *Assembler) Assemble(record internal.RawRecord, source internal.Source, extractionTime *string) (*internal.CanonicalObject, error) {
	name := ExtractString(record, aliasName...)
	description := ExtractString(record, aliasDescription...)
	fullText := ExtractString(record, aliasFullText...)
	classifyText := joinEvidence(name, description, fullText)

	obj := internal.CanonicalObject{
		Name:           name,
		Designer:       ExtractString(record, aliasDesigner...),
		Craft:          ExtractString(record, aliasCraft...),
		Category:       categoryPath(record),
		Source:         source,
		Shape:          a.classifyShape(record, classifyText),
		Construction:   a.classifyConstruction(record, classifyText),
		Materials:      a.parseMaterials(record),
		Needles:        []internal.NeedleEntry{},
		Gauge:          nil,
		SizesAvailable: []string{},
		Languages:      []string{},
		Notions:        a.notions.Classify(joinStrings(classifyText, ExtractStrings(record, aliasAttributes...))),
		Downloads:      internal.Downloads{Links: []string{}},
		Components:     []internal.Component{},
		Provenance: internal.Provenance{
			ExtractedFrom:  extractedFrom(record, source),
			ExtractionTime: extractionTime,
		},
	}

	if needleText := ExtractString(record, aliasNeedles...); needleText != nil {
		obj.Needles = ParseNeedles(*needleText)
	}

	gaugeText := ExtractString(record, aliasGauge...)
	if gaugeText != nil {
		obj.Gauge = ParseGauge(*gaugeText, a.stitch)
	}
	if obj.Gauge == nil {
		obj.Gauge = ParseGauge(joinEvidence(description, fullText), a.stitch)
	}

	if sizes := ExtractString(record, aliasSizes...); sizes != nil {
		obj.SizesAvailable = SplitList(*sizes)
	}
	if langs := ExtractStrings(record, aliasLanguages...); langs != nil {
		obj.Languages = langs
	}

	if links := ExtractStrings(record, aliasLinks...); links != nil {
		obj.Downloads.Links = FilterDownloads(links, sourceHost(record, source))
	}

	if fullText != nil {
		hints := SegmentHints{PartNames: partHints(record)}
		obj.Components = Segment(*fullText, hints, a.construction)
	}

	if err := ValidateObject(&obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// joinStrings appends tag-style evidence lines to free text. Tags often name
// notions literally where prose never mentions them.
func joinStrings(text string, extra []string) string {
	if len(extra) == 0 {
		return text
	}
	return strings.Join(append([]string{text}, extra...), "\n")
}

func joinEvidence(parts ...*string) string {
	out := []string{}
	for _, p := range parts {
		if p != nil && strings.TrimSpace(*p) != "" {
			out = append(out, *p)
		}
	}
	return strings.Join(out, "\n")
}

// categoryPath splits a nested category string like "Softies → Other" into
// an ordered path.
func categoryPath(record internal.RawRecord) []string {
	value := ExtractString(record, aliasCategory...)
	if value == nil {
		return []string{}
	}
	raw := strings.ReplaceAll(*value, "→", "\x00")
	raw = strings.ReplaceAll(raw, ">", "\x00")
	parts := strings.Split(raw, "\x00")
	out := []string{}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// classifyShape prefers an explicit shape field naming a valid label; free
// text is classified with the "other" fallback since the shape enum carries
// one.
func (a *Assembler) classifyShape(record internal.RawRecord, classifyText string) []internal.ShapeCategory {
	if stated := ExtractString(record, aliasShape...); stated != nil {
		label := strings.ToLower(strings.TrimSpace(*stated))
		if vocab.Shapes.Contains(label) {
			return []internal.ShapeCategory{internal.ShapeCategory(label)}
		}
	}
	labels := a.shape.ClassifyWithFallback(classifyText)
	out := make([]internal.ShapeCategory, 0, len(labels))
	for _, l := range labels {
		out = append(out, internal.ShapeCategory(l))
	}
	return out
}

// classifyConstruction unions the techniques field entries with what the
// free text yields, keeping enum declaration order.
func (a *Assembler) classifyConstruction(record internal.RawRecord, classifyText string) []internal.ConstructionMethod {
	seen := map[string]struct{}{}
	for _, entry := range ExtractStrings(record, aliasTechniques...) {
		for _, label := range a.construction.Classify(entry) {
			seen[label] = struct{}{}
		}
	}
	for _, label := range a.construction.Classify(classifyText) {
		seen[label] = struct{}{}
	}

	out := []internal.ConstructionMethod{}
	for _, label := range a.tables.Construction.Enum.Labels() {
		if _, ok := seen[label]; ok {
			out = append(out, internal.ConstructionMethod(label))
		}
	}
	return out
}

var (
	reYardage = regexp.MustCompile(`(?i)\b([0-9]+)\s*(?:yds?|yards)\b`)
	reMeters  = regexp.MustCompile(`(?i)\b([0-9]+)\s*(?:m|meters?)\b`)
	reGrams   = regexp.MustCompile(`(?i)\b([0-9]+)\s*(?:g|grams?)\b`)
)

// Craft Yarn Council weight names. Specific names come before the generic
// ones they contain ("super bulky" before "bulky"); the first match wins.
var weightRules = []struct {
	patterns []string
	code     int
}{
	{[]string{"jumbo"}, 7},
	{[]string{"super bulky", "roving"}, 6},
	{[]string{"bulky", "chunky", "rug"}, 5},
	{[]string{"light worsted", "dk", "double knit"}, 3},
	{[]string{"worsted", "aran", "afghan", "medium"}, 4},
	{[]string{"sport", "baby"}, 2},
	{[]string{"fingering", "sock", "super fine"}, 1},
	{[]string{"lace", "cobweb", "thread"}, 0},
}

var fiberNames = []string{
	"wool", "merino", "cotton", "acrylic", "alpaca", "silk", "mohair",
	"bamboo", "linen", "cashmere",
}

func (a *Assembler) parseMaterials(record internal.RawRecord) []internal.MaterialEntry {
	out := []internal.MaterialEntry{}
	for _, entry := range ExtractStrings(record, aliasYarn...) {
		out = append(out, parseMaterial(entry))
	}
	return out
}

// parseMaterial reads one suggested-yarn string. The full string is the
// name; weight, fiber, yardage and grams come from literal tokens only.
func parseMaterial(entry string) internal.MaterialEntry {
	material := internal.MaterialEntry{Name: util.StringPtr(util.NormalizeSpaces(entry))}
	lower := strings.ToLower(entry)

weights:
	for _, rule := range weightRules {
		for _, p := range rule.patterns {
			if compilePattern(p).MatchString(lower) {
				code := rule.code
				material.WeightCode = &code
				break weights
			}
		}
	}

	for _, fiber := range fiberNames {
		if compilePattern(fiber).MatchString(lower) {
			material.Fiber = util.StringPtr(fiber)
			break
		}
	}

	if m := reYardage.FindStringSubmatch(entry); m != nil {
		if v, ok := util.ParseDecimal(m[1]); ok && v > 0 {
			material.Yardage = util.IntPtr(int(v))
		}
	} else if m := reMeters.FindStringSubmatch(entry); m != nil {
		if v, ok := util.ParseDecimal(m[1]); ok && v > 0 {
			material.Yardage = util.IntPtr(util.RoundToInt(v * 1.0936))
		}
	}
	if m := reGrams.FindStringSubmatch(entry); m != nil {
		if v, ok := util.ParseDecimal(m[1]); ok && v > 0 {
			material.Grams = util.IntPtr(int(v))
		}
	}
	return material
}

// partHints collects sub-part names from the record's attribute tags.
func partHints(record internal.RawRecord) []string {
	hints := []string{}
	for _, attr := range ExtractStrings(record, aliasAttributes...) {
		lower := strings.ToLower(strings.TrimSpace(attr))
		for _, part := range partVocab {
			if lower == part {
				hints = append(hints, part)
				break
			}
		}
	}
	return hints
}

func extractedFrom(record internal.RawRecord, source internal.Source) string {
	if page := ExtractString(record, aliasPage...); page != nil {
		return *page
	}
	if source.URL != nil {
		return *source.URL
	}
	return string(source.Type)
}

func sourceHost(record internal.RawRecord, source internal.Source) string {
	if source.Site != nil {
		return *source.Site
	}
	if page := ExtractString(record, aliasPage...); page != nil {
		if parsed, err := url.Parse(*page); err == nil {
			return parsed.Host
		}
	}
	return ""
}

// ValidateObject enforces the schema contract before emission: every
// enum-typed leaf must belong to its closed set, component orders must be
// exactly 1..N and step indices 1..M, and numeric leaves must be positive.
func ValidateObject(obj *internal.CanonicalObject) error {
	for _, s := range obj.Shape {
		if !vocab.Shapes.Contains(string(s)) {
			return &StructuralError{Field: "shape", Invariant: fmt.Sprintf("label %q outside enumeration", s)}
		}
	}
	for _, c := range obj.Construction {
		if !vocab.Construction.Contains(string(c)) {
			return &StructuralError{Field: "construction", Invariant: fmt.Sprintf("label %q outside enumeration", c)}
		}
	}
	for _, n := range obj.Notions {
		if !vocab.Notions.Contains(n) {
			return &StructuralError{Field: "notions", Invariant: fmt.Sprintf("label %q outside enumeration", n)}
		}
	}
	if !vocab.SourceTypes.Contains(string(obj.Source.Type)) {
		return &StructuralError{Field: "source.type", Invariant: fmt.Sprintf("label %q outside enumeration", obj.Source.Type)}
	}
	if obj.Gauge != nil && obj.Gauge.StitchPattern != nil {
		if !vocab.StitchPatterns.Contains(string(*obj.Gauge.StitchPattern)) {
			return &StructuralError{Field: "gauge.stitch_pattern", Invariant: fmt.Sprintf("label %q outside enumeration", *obj.Gauge.StitchPattern)}
		}
	}
	for i, needle := range obj.Needles {
		if needle.Type != nil && !vocab.NeedleTypes.Contains(string(*needle.Type)) {
			return &StructuralError{Field: fmt.Sprintf("needles[%d].type", i), Invariant: fmt.Sprintf("label %q outside enumeration", *needle.Type)}
		}
	}
	for i, material := range obj.Materials {
		if material.WeightCode != nil && !vocab.ValidWeightCode(*material.WeightCode) {
			return &StructuralError{Field: fmt.Sprintf("materials[%d].weight_code", i), Invariant: fmt.Sprintf("code %d outside 0-7", *material.WeightCode)}
		}
	}

	seenOrders := map[int]struct{}{}
	for i, comp := range obj.Components {
		if !vocab.ComponentRoles.Contains(string(comp.Role)) {
			return &StructuralError{Field: fmt.Sprintf("components[%d].role", i), Invariant: fmt.Sprintf("label %q outside enumeration", comp.Role)}
		}
		if comp.Order < 1 || comp.Order > len(obj.Components) {
			return &StructuralError{Field: fmt.Sprintf("components[%d].order", i), Invariant: fmt.Sprintf("order %d outside 1..%d", comp.Order, len(obj.Components))}
		}
		if _, dup := seenOrders[comp.Order]; dup {
			return &StructuralError{Field: fmt.Sprintf("components[%d].order", i), Invariant: fmt.Sprintf("order %d duplicated", comp.Order)}
		}
		seenOrders[comp.Order] = struct{}{}

		seenIndices := map[int]struct{}{}
		for j, step := range comp.Steps {
			if step.Index < 1 || step.Index > len(comp.Steps) {
				return &StructuralError{Field: fmt.Sprintf("components[%d].steps[%d].index", i, j), Invariant: fmt.Sprintf("index %d outside 1..%d", step.Index, len(comp.Steps))}
			}
			if _, dup := seenIndices[step.Index]; dup {
				return &StructuralError{Field: fmt.Sprintf("components[%d].steps[%d].index", i, j), Invariant: fmt.Sprintf("index %d duplicated", step.Index)}
			}
			seenIndices[step.Index] = struct{}{}

			if step.RowOrRound != nil && !vocab.RowOrRound.Contains(string(*step.RowOrRound)) {
				return &StructuralError{Field: fmt.Sprintf("components[%d].steps[%d].row_or_round", i, j), Invariant: fmt.Sprintf("label %q outside enumeration", *step.RowOrRound)}
			}
			for _, tag := range step.TechniqueTags {
				if !vocab.Construction.Contains(string(tag)) {
					return &StructuralError{Field: fmt.Sprintf("components[%d].steps[%d].technique_tags", i, j), Invariant: fmt.Sprintf("label %q outside enumeration", tag)}
				}
			}
			if step.Count != nil && *step.Count < 1 {
				return &StructuralError{Field: fmt.Sprintf("components[%d].steps[%d].count", i, j), Invariant: "count must be positive"}
			}
			if step.StitchCountAfter != nil && *step.StitchCountAfter < 1 {
				return &StructuralError{Field: fmt.Sprintf("components[%d].steps[%d].stitch_count_after", i, j), Invariant: "stitch count must be positive"}
			}
		}
	}
	return nil
}
