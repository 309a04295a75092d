package pipeline

import (
	"regexp"
	"strings"

	"knitnorm/internal"
	"knitnorm/internal/util"
)

// SegmentHints carries the natural sub-part names suggested by the record's
// attributes or classification, in the order they should be assigned.
type SegmentHints struct {
	PartNames []string
}

// Known sub-part names a heading line may announce.
var partVocab = []string{
	"head", "body", "ears", "ear", "arms", "arm", "legs", "leg", "tail",
	"wings", "wing", "base", "border", "center", "edging", "brim", "crown",
	"sleeve", "sleeves", "handle", "module", "motif", "eyes", "nose", "beak",
}

var (
	corePartNames   = []string{"body", "main", "base", "center", "crown", "head"}
	attachPartNames = []string{"ear", "ears", "arm", "arms", "leg", "legs", "tail", "wing", "wings", "sleeve", "sleeves", "handle", "brim", "module", "motif"}
)

// Phase-change keywords that open a new step group.
var phaseKeywords = []string{
	"cast on", "ribbing", "body", "increase", "decrease", "bind off",
	"cast off", "seam", "attach", "stuff", "graft",
}

var (
	reStitchCount = regexp.MustCompile(`(?i)\byou now have\s+([0-9]+)\s*st(?:itch(?:es)?|s)?\b`)
	reChartRef    = regexp.MustCompile(`(?i)\bchart\s+([a-z0-9]+)\b`)
	reRepeatCount = regexp.MustCompile(`(?i)\b(?:repeat[^.\n]*?|work)\s+([0-9]+)\s+(?:more\s+)?(?:times|rows|rounds)\b`)
	reRoundWord   = regexp.MustCompile(`(?i)\bround(?:s)?\b`)
	reRowWord     = regexp.MustCompile(`(?i)\brow(?:s)?\b`)
	reJoinLine    = regexp.MustCompile(`(?i)\b(attach|sew|join)\b`)
	reCastOn      = regexp.MustCompile(`(?i)\bcast on\b`)
)

const maxHeadingLen = 48

// Segment partitions instructional text into ordered components, each with
// ordered steps. The boundary heuristics are best effort and deliberately
// contained here; callers only rely on the contract that component orders and
// step indices come out contiguous from 1. Empty text yields no components.
func Segment(fullText string, hints SegmentHints, construction *Classifier) []internal.Component {
	if strings.TrimSpace(fullText) == "" {
		return []internal.Component{}
	}

	lines := util.SplitLines(fullText)
	sections := splitSections(lines, hints)

	components := make([]internal.Component, 0, len(sections))
	for i, sec := range sections {
		comp := internal.Component{
			Name:            sec.name,
			Role:            roleForName(sec.name, i),
			Order:           i + 1,
			RawInstructions: strings.Join(sec.lines, "\n"),
			Steps:           buildSteps(sec.lines, construction),
		}
		if join := findJoinLine(sec.lines); join != "" {
			comp.Joins = util.StringPtr(join)
		}
		components = append(components, comp)
	}
	return components
}

type section struct {
	name  string
	lines []string
}

// splitSections finds component boundaries: heading lines naming a known
// part, or repeated cast-on markers when the hints promise several parts.
// With no usable boundary the whole text is one "body" section.
func splitSections(lines []string, hints SegmentHints) []section {
	boundaries := map[int]string{}
	keepLine := map[int]bool{}
	for i, line := range lines {
		if name := headingName(line, hints); name != "" {
			boundaries[i] = name
		}
	}

	if len(boundaries) < 2 && len(hints.PartNames) > 1 {
		// Fall back on repeated cast-on markers, naming sections from the
		// hint order. The marker line is an instruction, not a heading, so
		// it stays in the section body.
		castOns := []int{}
		for i, line := range lines {
			if reCastOn.MatchString(line) {
				castOns = append(castOns, i)
			}
		}
		if len(castOns) > 1 {
			boundaries = map[int]string{}
			for n, i := range castOns {
				name := "piece"
				if n < len(hints.PartNames) {
					name = strings.ToLower(hints.PartNames[n])
				}
				boundaries[i] = name
				keepLine[i] = true
			}
		}
	}

	if len(boundaries) < 2 {
		body := section{name: "body", lines: dropEmpty(lines)}
		if len(body.lines) == 0 {
			return nil
		}
		return []section{body}
	}

	sections := []section{}
	var current *section
	for i, line := range lines {
		if name, ok := boundaries[i]; ok {
			if current != nil && len(current.lines) > 0 {
				sections = append(sections, *current)
			}
			current = &section{name: name}
			if keepLine[i] {
				current.lines = append(current.lines, line)
			}
			continue
		}
		if line == "" {
			continue
		}
		if current == nil {
			// Instructions before the first heading form their own lead
			// section.
			current = &section{name: "main piece"}
		}
		current.lines = append(current.lines, line)
	}
	if current != nil && len(current.lines) > 0 {
		sections = append(sections, *current)
	}
	return sections
}

// headingName recognizes a short line that names a sub-part, optionally
// suffixed with a colon or wrapped in "the ...".
func headingName(line string, hints SegmentHints) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len([]rune(trimmed)) > maxHeadingLen {
		return ""
	}
	cleaned := strings.ToLower(strings.TrimSuffix(trimmed, ":"))
	cleaned = strings.TrimPrefix(cleaned, "the ")
	cleaned = strings.TrimSpace(cleaned)

	for _, hint := range hints.PartNames {
		if cleaned == strings.ToLower(hint) {
			return cleaned
		}
	}
	for _, part := range partVocab {
		if cleaned == part {
			return cleaned
		}
	}
	// "Work the ears" style marker lines.
	if strings.HasPrefix(cleaned, "work the ") {
		rest := strings.TrimPrefix(cleaned, "work the ")
		for _, part := range partVocab {
			if rest == part {
				return part
			}
		}
	}
	return ""
}

func roleForName(name string, position int) internal.ComponentRole {
	lower := strings.ToLower(name)
	for _, core := range corePartNames {
		if strings.Contains(lower, core) {
			return internal.RoleCore
		}
	}
	for _, attach := range attachPartNames {
		if strings.Contains(lower, attach) {
			return internal.RoleAttachment
		}
	}
	if position == 0 {
		return internal.RoleCore
	}
	return internal.RoleDetail
}

// buildSteps groups contiguous instruction lines, opening a new step whenever
// a phase-change keyword appears. Optional step fields stay nil unless their
// literal pattern is present in the step's slice of text.
func buildSteps(lines []string, construction *Classifier) []internal.Step {
	groups := [][]string{}
	var current []string
	for _, line := range lines {
		if line == "" {
			continue
		}
		if hasPhaseKeyword(line) && len(current) > 0 {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	steps := make([]internal.Step, 0, len(groups))
	for i, group := range groups {
		text := strings.Join(group, "\n")
		step := internal.Step{
			Index:         i + 1,
			HowtoSummary:  summarize(group[0]),
			TechniqueTags: toConstruction(construction.Classify(text)),
		}
		if rr := rowOrRound(text); rr != nil {
			step.RowOrRound = rr
		}
		if m := reRepeatCount.FindStringSubmatch(text); m != nil {
			if v, ok := util.ParseDecimal(m[1]); ok && v > 0 {
				step.Count = util.IntPtr(int(v))
			}
		}
		if m := reStitchCount.FindStringSubmatch(text); m != nil {
			if v, ok := util.ParseDecimal(m[1]); ok && v > 0 {
				step.StitchCountAfter = util.IntPtr(int(v))
			}
		}
		if m := reChartRef.FindStringSubmatch(text); m != nil {
			step.ChartRef = util.StringPtr(m[1])
		}
		steps = append(steps, step)
	}
	return steps
}

func hasPhaseKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range phaseKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// rowOrRound picks whichever wording appears first in the slice.
func rowOrRound(text string) *internal.RowOrRound {
	rowLoc := reRowWord.FindStringIndex(text)
	roundLoc := reRoundWord.FindStringIndex(text)
	switch {
	case rowLoc == nil && roundLoc == nil:
		return nil
	case roundLoc == nil:
		v := internal.WorkRow
		return &v
	case rowLoc == nil:
		v := internal.WorkRound
		return &v
	case rowLoc[0] < roundLoc[0]:
		v := internal.WorkRow
		return &v
	default:
		v := internal.WorkRound
		return &v
	}
}

func findJoinLine(lines []string) string {
	for _, line := range lines {
		if reJoinLine.MatchString(line) {
			return line
		}
	}
	return ""
}

func summarize(line string) string {
	runes := []rune(util.NormalizeSpaces(line))
	if len(runes) > 80 {
		return string(runes[:77]) + "..."
	}
	return string(runes)
}

func dropEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func toConstruction(labels []string) []internal.ConstructionMethod {
	out := make([]internal.ConstructionMethod, 0, len(labels))
	for _, l := range labels {
		out = append(out, internal.ConstructionMethod(l))
	}
	return out
}
