package pipeline

import (
	"regexp"
	"strings"

	"knitnorm/internal"
	"knitnorm/internal/util"
	"knitnorm/internal/vocab"
)

var (
	reUSSize   = regexp.MustCompile(`(?i)\bus\s*([0-9]+(?:\.[0-9]+)?)\b`)
	reMM       = regexp.MustCompile(`(?i)\b([0-9]+(?:[.,][0-9]+)?)\s*mm\b`)
	reLength   = regexp.MustCompile(`(?i)\b([0-9]+(?:[.,][0-9]+)?)\s*(in(?:ch(?:es)?)?|cm)\b`)
	reSts      = regexp.MustCompile(`(?i)\b([0-9]+(?:\.[0-9]+)?)\s*(?:sts?|stitches)\b`)
	reRows     = regexp.MustCompile(`(?i)\b([0-9]+(?:\.[0-9]+)?)\s*(?:rows?|rounds?)\b`)
	reBasis4   = regexp.MustCompile(`(?i)=\s*(?:4\s*(?:in(?:ch(?:es)?)?|")|10\s*cm)|\b4\s*(?:in(?:ch(?:es)?)?|")\s*/\s*10\s*cm\b|\b10\s*cm\b`)
	reBasis1   = regexp.MustCompile(`(?i)=\s*1\s*(?:in(?:ch(?:es)?)?|")`)
	reSwatchIn = regexp.MustCompile(`(?i)\b(?:in|over)\s+([a-z][a-z0-9 .x-]*)$`)
)

// usNeedleTolerance bounds the chart lookup when only one side of a needle
// size is stated. Outside it the missing side stays nil.
const usNeedleTolerance = 0.15

// ParseNeedles turns a raw needle string into an ordered sequence of
// entries, one per list segment. Tokens not found stay nil; the US/mm chart
// fills the missing side of a stated size only on an exact chart hit.
func ParseNeedles(text string) []internal.NeedleEntry {
	out := []internal.NeedleEntry{}
	for _, segment := range SplitList(text) {
		entry := internal.NeedleEntry{}
		found := false

		if m := reUSSize.FindStringSubmatch(segment); m != nil {
			entry.USSize = util.StringPtr("US " + m[1])
			found = true
		}
		if m := reMM.FindStringSubmatch(segment); m != nil {
			if mm, ok := util.ParseDecimal(m[1]); ok {
				entry.MM = util.FloatPtr(mm)
				found = true
			}
		}
		if t := needleTypeToken(segment); t != nil {
			entry.Type = t
			found = true
		}
		if lengthMM := needleLength(segment); lengthMM != nil {
			entry.LengthMM = lengthMM
			found = true
		}

		if !found {
			continue
		}
		fillNeedleFromChart(&entry)
		out = append(out, entry)
	}
	return out
}

// fillNeedleFromChart derives the unstated side of a needle size from the US
// chart. Derived values are still evidence-backed: they restate the stated
// side in the other unit.
func fillNeedleFromChart(entry *internal.NeedleEntry) {
	if entry.USSize != nil && entry.MM == nil {
		size := strings.TrimPrefix(*entry.USSize, "US ")
		if mm, ok := vocab.USNeedleMM(size); ok {
			entry.MM = util.FloatPtr(mm)
		}
	}
	if entry.MM != nil && entry.USSize == nil {
		if us, ok := vocab.USNeedleFromMM(*entry.MM, usNeedleTolerance); ok {
			entry.USSize = util.StringPtr("US " + us)
		}
	}
}

func needleTypeToken(segment string) *internal.NeedleType {
	lower := strings.ToLower(segment)
	switch {
	case strings.Contains(lower, "circular"):
		t := internal.NeedleCircular
		return &t
	case strings.Contains(lower, "dpn") || strings.Contains(lower, "double point") || strings.Contains(lower, "double-point"):
		t := internal.NeedleDPN
		return &t
	case strings.Contains(lower, "straight"):
		t := internal.NeedleStraight
		return &t
	}
	return nil
}

// needleLength reads a cable/needle length token and converts to whole
// millimeters (1 in = 25.4 mm, 1 cm = 10 mm). The mm diameter token is
// excluded by the unit suffix.
func needleLength(segment string) *int {
	for _, m := range reLength.FindAllStringSubmatch(segment, -1) {
		value, ok := util.ParseDecimal(m[1])
		if !ok {
			continue
		}
		unit := strings.ToLower(m[2])
		if strings.HasPrefix(unit, "in") {
			return util.IntPtr(util.RoundToInt(value * 25.4))
		}
		return util.IntPtr(util.RoundToInt(value * 10))
	}
	return nil
}

// ParseGauge recognizes a "<N> sts and <M> rows = 4 in / 10 cm [in
// <pattern>]" sentence in either order. A gauge stated per 1 inch is scaled
// by 4. Returns nil when no gauge sentence is found.
func ParseGauge(text string, stitch *Classifier) *internal.Gauge {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentence := findGaugeSentence(text)
	if sentence == "" {
		return nil
	}

	multiplier := 1.0
	switch {
	case reBasis1.MatchString(sentence):
		multiplier = 4.0
	case reBasis4.MatchString(sentence):
		multiplier = 1.0
	default:
		return nil
	}

	gauge := &internal.Gauge{}
	if m := reSts.FindStringSubmatch(sentence); m != nil {
		if v, ok := util.ParseDecimal(m[1]); ok {
			gauge.StitchesPer10CM = util.IntPtr(util.RoundToInt(v * multiplier))
		}
	}
	if m := reRows.FindStringSubmatch(sentence); m != nil {
		if v, ok := util.ParseDecimal(m[1]); ok {
			gauge.RowsPer10CM = util.IntPtr(util.RoundToInt(v * multiplier))
		}
	}
	if gauge.StitchesPer10CM == nil && gauge.RowsPer10CM == nil {
		return nil
	}

	if words := swatchPatternWords(sentence); words != "" {
		label, ok := stitch.ClassifySingle(words)
		if !ok {
			label = string(internal.StitchOther)
		}
		sp := internal.StitchPattern(label)
		gauge.StitchPattern = &sp
	}
	return gauge
}

// findGaugeSentence picks the first line holding both a stitch count and a
// measurement basis.
func findGaugeSentence(text string) string {
	for _, line := range util.SplitLines(text) {
		if line == "" {
			continue
		}
		if !reSts.MatchString(line) && !reRows.MatchString(line) {
			continue
		}
		if reBasis1.MatchString(line) || reBasis4.MatchString(line) {
			return line
		}
	}
	return ""
}

func swatchPatternWords(sentence string) string {
	m := reSwatchIn.FindStringSubmatch(strings.TrimRight(strings.TrimSpace(sentence), "."))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
