package pipeline

import "strings"

// listDelimiters in the order they are applied. " and " is a word delimiter:
// a conjunction inside a quoted sub-phrase will over-segment, which is an
// accepted limitation of the splitter.
var listDelimiters = []string{";", ",", " and "}

// SplitList turns a delimiter-joined string into an ordered list of trimmed,
// non-empty entries. Splitting an entry that carries no delimiter returns the
// entry unchanged, so the operation is idempotent.
func SplitList(text string) []string {
	marked := text
	for _, delim := range listDelimiters {
		marked = strings.ReplaceAll(marked, delim, "\x00")
	}

	parts := strings.Split(marked, "\x00")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
