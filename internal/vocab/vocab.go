package vocab

import "knitnorm/internal"

// Enumeration is a named closed set of labels. Declaration order is kept and
// used to stabilize classifier output.
type Enumeration struct {
	name   string
	labels []string
	index  map[string]int
}

func NewEnumeration(name string, labels ...string) *Enumeration {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		idx[l] = i
	}
	return &Enumeration{name: name, labels: labels, index: idx}
}

func (e *Enumeration) Name() string { return e.name }

func (e *Enumeration) Contains(label string) bool {
	_, ok := e.index[label]
	return ok
}

// IndexOf returns the declaration position of label, -1 when absent.
func (e *Enumeration) IndexOf(label string) int {
	i, ok := e.index[label]
	if !ok {
		return -1
	}
	return i
}

func (e *Enumeration) Labels() []string {
	out := make([]string, len(e.labels))
	copy(out, e.labels)
	return out
}

// AllowsOther reports whether the schema gives this field an explicit
// catch-all label for out-of-vocabulary text.
func (e *Enumeration) AllowsOther() bool {
	return e.Contains("other")
}

var (
	Shapes = NewEnumeration("shape",
		string(internal.ShapeFlat),
		string(internal.ShapeSoftie),
		string(internal.ShapeOrganic),
		string(internal.ShapeSphere),
		string(internal.ShapeCube),
		string(internal.ShapeCone),
		string(internal.ShapeCylinder),
		string(internal.ShapeOther),
	)

	Construction = NewEnumeration("construction",
		string(internal.ConstructionInTheRound),
		string(internal.ConstructionFlatSeamed),
		string(internal.ConstructionShortRows),
		string(internal.ConstructionIncreases),
		string(internal.ConstructionDecreases),
		string(internal.ConstructionModular),
		string(internal.ConstructionTopDown),
		string(internal.ConstructionBottomUp),
		string(internal.ConstructionGrafting),
		string(internal.ConstructionPickUpStitch),
	)

	ComponentRoles = NewEnumeration("component_role",
		string(internal.RoleCore),
		string(internal.RoleAttachment),
		string(internal.RoleDetail),
	)

	SourceTypes = NewEnumeration("source_type",
		string(internal.SourceRavelry),
		string(internal.SourceBlog),
		string(internal.SourcePDF),
		string(internal.SourceManual),
	)

	StitchPatterns = NewEnumeration("stitch_pattern",
		string(internal.StitchStockinette),
		string(internal.StitchGarter),
		string(internal.StitchRib),
		string(internal.StitchOther),
	)

	NeedleTypes = NewEnumeration("needle_type",
		string(internal.NeedleCircular),
		string(internal.NeedleDPN),
		string(internal.NeedleStraight),
	)

	RowOrRound = NewEnumeration("row_or_round",
		string(internal.WorkRow),
		string(internal.WorkRound),
	)

	Notions = NewEnumeration("notion",
		"stuffing",
		"safety_eyes",
		"tapestry_needle",
		"stitch_markers",
		"stitch_holder",
		"buttons",
		"embroidery_floss",
	)
)

// ValidWeightCode checks a Craft Yarn Council weight code (0 lace through
// 7 jumbo).
func ValidWeightCode(code int) bool {
	return code >= 0 && code <= 7
}
