package vocab

type usNeedle struct {
	us string
	mm float64
}

// US needle size chart, ascending by diameter.
var usNeedles = []usNeedle{
	{"0", 2.0}, {"1", 2.25}, {"2", 2.75}, {"3", 3.25}, {"4", 3.5},
	{"5", 3.75}, {"6", 4.0}, {"7", 4.5}, {"8", 5.0}, {"9", 5.5},
	{"10", 6.0}, {"10.5", 6.5}, {"11", 8.0}, {"13", 9.0}, {"15", 10.0},
	{"17", 12.0}, {"19", 15.0}, {"35", 19.0}, {"50", 25.0},
}

// USNeedleMM returns the standard millimeter diameter for a US size label.
func USNeedleMM(usSize string) (float64, bool) {
	for _, n := range usNeedles {
		if n.us == usSize {
			return n.mm, true
		}
	}
	return 0, false
}

// USNeedleFromMM returns the US size whose standard diameter is strictly
// within tolerance of mm. Conversion only, never a guess: no label comes back
// when nothing on the chart is close enough.
func USNeedleFromMM(mm, tolerance float64) (string, bool) {
	best := ""
	bestDiff := tolerance
	for _, n := range usNeedles {
		diff := n.mm - mm
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best = n.us
			bestDiff = diff
		}
	}
	return best, best != ""
}
