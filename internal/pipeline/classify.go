package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"knitnorm/internal/vocab"
)

// Classifier matches text against one ordered rule table. All matching rules
// fire; the output set is stabilized by enum declaration order, not by match
// position. The rules themselves stay data (vocab.RuleTable), this is only
// the matching engine.
type Classifier struct {
	enum  *vocab.Enumeration
	rules []compiledRule
}

type compiledRule struct {
	patterns []*regexp.Regexp
	label    string
}

// Token-boundary match: the pattern must not sit inside a larger word or
// number on either side.
func compilePattern(pattern string) *regexp.Regexp {
	escaped := regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(pattern)))
	return regexp.MustCompile(`(?i)(?:^|[^a-z0-9])` + escaped + `(?:[^a-z0-9]|$)`)
}

func NewClassifier(table vocab.RuleTable) *Classifier {
	c := &Classifier{enum: table.Enum}
	for _, rule := range table.Rules {
		cr := compiledRule{label: rule.Label}
		for _, p := range rule.Patterns {
			cr.patterns = append(cr.patterns, compilePattern(p))
		}
		c.rules = append(c.rules, cr)
	}
	return c
}

func (c *Classifier) matches(text string) []string {
	lower := strings.ToLower(text)
	seen := map[string]struct{}{}
	out := []string{}
	for _, rule := range c.rules {
		if _, done := seen[rule.label]; done {
			continue
		}
		for _, re := range rule.patterns {
			if re.MatchString(lower) {
				seen[rule.label] = struct{}{}
				out = append(out, rule.label)
				break
			}
		}
	}
	return out
}

// Classify returns every label whose rule fires, ordered by the target
// enumeration's declaration order. Empty text or zero matches yield an empty
// set; use ClassifyWithFallback for fields whose schema carries "other".
func (c *Classifier) Classify(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	out := c.matches(text)
	sort.Slice(out, func(i, j int) bool {
		return c.enum.IndexOf(out[i]) < c.enum.IndexOf(out[j])
	})
	return out
}

// ClassifySingle keeps only the highest-priority match by rule-table order.
// Used for schema fields restricted to one best label.
func (c *Classifier) ClassifySingle(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	matched := c.matches(text)
	if len(matched) == 0 {
		return "", false
	}
	return matched[0], true
}

// ClassifyWithFallback behaves like Classify but maps zero matches on
// non-empty text to ["other"] when the enumeration allows it.
func (c *Classifier) ClassifyWithFallback(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	out := c.Classify(text)
	if len(out) == 0 && c.enum.AllowsOther() {
		return []string{"other"}
	}
	return out
}
