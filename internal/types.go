package internal

type ShapeCategory string

const (
	ShapeFlat     ShapeCategory = "flat"
	ShapeSoftie   ShapeCategory = "softie"
	ShapeOrganic  ShapeCategory = "organic"
	ShapeSphere   ShapeCategory = "sphere"
	ShapeCube     ShapeCategory = "cube"
	ShapeCone     ShapeCategory = "cone"
	ShapeCylinder ShapeCategory = "cylinder"
	ShapeOther    ShapeCategory = "other"
)

type ConstructionMethod string

const (
	ConstructionInTheRound   ConstructionMethod = "in_the_round"
	ConstructionFlatSeamed   ConstructionMethod = "flat_seamed"
	ConstructionShortRows    ConstructionMethod = "short_rows"
	ConstructionIncreases    ConstructionMethod = "increases"
	ConstructionDecreases    ConstructionMethod = "decreases"
	ConstructionModular      ConstructionMethod = "modular"
	ConstructionTopDown      ConstructionMethod = "top_down"
	ConstructionBottomUp     ConstructionMethod = "bottom_up"
	ConstructionGrafting     ConstructionMethod = "grafting"
	ConstructionPickUpStitch ConstructionMethod = "pick_up_stitches"
)

type ComponentRole string

const (
	RoleCore       ComponentRole = "core"
	RoleAttachment ComponentRole = "attachment"
	RoleDetail     ComponentRole = "detail"
)

type SourceType string

const (
	SourceRavelry SourceType = "ravelry"
	SourceBlog    SourceType = "blog"
	SourcePDF     SourceType = "pdf"
	SourceManual  SourceType = "manual"
)

type StitchPattern string

const (
	StitchStockinette StitchPattern = "stockinette"
	StitchGarter      StitchPattern = "garter"
	StitchRib         StitchPattern = "rib"
	StitchOther       StitchPattern = "other"
)

type RowOrRound string

const (
	WorkRow   RowOrRound = "row"
	WorkRound RowOrRound = "round"
)

type NeedleType string

const (
	NeedleCircular NeedleType = "circular"
	NeedleDPN      NeedleType = "dpn"
	NeedleStraight NeedleType = "straight"
)

// RawRecord is the heterogeneous input mapping. Values are strings, lists
// of strings or nested objects depending on what the source emitted. The
// pipeline never mutates it.
type RawRecord map[string]any

type MaterialEntry struct {
	Name       *string `json:"name"`
	Brand      *string `json:"brand"`
	WeightCode *int    `json:"weight_code"`
	Fiber      *string `json:"fiber"`
	Colorway   *string `json:"colorway"`
	Yardage    *int    `json:"yardage"`
	Grams      *int    `json:"grams"`
}

type NeedleEntry struct {
	USSize   *string     `json:"us_size"`
	MM       *float64    `json:"mm"`
	Type     *NeedleType `json:"type"`
	LengthMM *int        `json:"length_mm"`
}

type Gauge struct {
	StitchesPer10CM *int           `json:"stitches_per_10cm"`
	RowsPer10CM     *int           `json:"rows_per_10cm"`
	StitchPattern   *StitchPattern `json:"stitch_pattern"`
}

type Step struct {
	Index            int                  `json:"index"`
	HowtoSummary     string               `json:"howto_summary"`
	RowOrRound       *RowOrRound          `json:"row_or_round"`
	Count            *int                 `json:"count"`
	TechniqueTags    []ConstructionMethod `json:"technique_tags"`
	StitchCountAfter *int                 `json:"stitch_count_after"`
	ChartRef         *string              `json:"chart_ref"`
}

type Component struct {
	Name            string        `json:"name"`
	Role            ComponentRole `json:"role"`
	Order           int           `json:"order"`
	Joins           *string       `json:"joins"`
	Steps           []Step        `json:"steps"`
	RawInstructions string        `json:"raw_instructions"`
}

type Source struct {
	Type SourceType `json:"type"`
	URL  *string    `json:"url"`
	Site *string    `json:"site"`
}

type Downloads struct {
	Links []string `json:"links"`
}

type Provenance struct {
	ExtractedFrom    string             `json:"extracted_from"`
	ExtractionTime   *string            `json:"extraction_time"`
	FieldsConfidence map[string]float64 `json:"fields_confidence,omitempty"`
}

// CanonicalObject is the schema-conforming output. Every leaf is a concrete
// value, nil (unknown scalar) or an empty sequence (unknown list); a leaf is
// never populated without extracted evidence.
type CanonicalObject struct {
	Name           *string              `json:"name"`
	Designer       *string              `json:"designer"`
	Craft          *string              `json:"craft"`
	Category       []string             `json:"category"`
	Source         Source               `json:"source"`
	Shape          []ShapeCategory      `json:"shape"`
	Construction   []ConstructionMethod `json:"construction"`
	Materials      []MaterialEntry      `json:"materials"`
	Needles        []NeedleEntry        `json:"needles"`
	Gauge          *Gauge               `json:"gauge"`
	SizesAvailable []string             `json:"sizes_available"`
	Languages      []string             `json:"languages"`
	Notions        []string             `json:"notions"`
	Downloads      Downloads            `json:"downloads"`
	Components     []Component          `json:"components"`
	Provenance     Provenance           `json:"provenance"`
}

type RecordRow struct {
	ID         int
	SourceRef  string
	SourceType string
	Status     string
	RawJSON    string
	Error      *string
}

type ReportRow struct {
	RecordID     int
	SourceRef    string
	Status       string
	Name         *string
	Craft        *string
	Shapes       []ShapeCategory
	Construction []ConstructionMethod
	Components   int
	Steps        int
	Downloads    int
	Error        *string
}
