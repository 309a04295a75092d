package pipeline

import (
	"strings"

	"knitnorm/internal"
)

// Alias sets tried in priority order. The first alias present with a
// non-empty value wins; absence is a normal outcome, never an error.
var (
	aliasName        = []string{"name", "title"}
	aliasDescription = []string{"description", "notes", "summary"}
	aliasFullText    = []string{"full_text", "instructions", "pattern_text"}
	aliasYarn        = []string{"suggested_yarn", "yarn", "yarns"}
	aliasNeedles     = []string{"needle_size", "needles", "needle"}
	aliasAttributes  = []string{"attributes", "tags"}
	aliasTechniques  = []string{"techniques"}
	aliasShape       = []string{"shape"}
	aliasPage        = []string{"pattern_page", "url", "source_url"}
	aliasSizes       = []string{"sizes_available", "sizes"}
	aliasLinks       = []string{"download_links", "downloads", "links"}
	aliasLanguages   = []string{"languages", "language"}
	aliasCraft       = []string{"craft"}
	aliasCategory    = []string{"category", "categories"}
	aliasDesigner    = []string{"designer", "author"}
	aliasGauge       = []string{"gauge", "tension"}
)

// ExtractString returns the first non-empty scalar string under any of the
// aliases. A list value yields its first non-empty string element.
func ExtractString(record internal.RawRecord, aliases ...string) *string {
	for _, alias := range aliases {
		value, ok := record[alias]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return &s
			}
		case []string:
			for _, e := range v {
				if s := strings.TrimSpace(e); s != "" {
					return &s
				}
			}
		case []any:
			for _, e := range v {
				if str, ok := e.(string); ok {
					if s := strings.TrimSpace(str); s != "" {
						return &s
					}
				}
			}
		}
	}
	return nil
}

// ExtractStrings returns the first alias whose value holds at least one
// non-empty string, flattened to a trimmed list. A scalar string becomes a
// single-element list.
func ExtractStrings(record internal.RawRecord, aliases ...string) []string {
	for _, alias := range aliases {
		value, ok := record[alias]
		if !ok {
			continue
		}
		var out []string
		switch v := value.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out = []string{s}
			}
		case []string:
			for _, e := range v {
				if s := strings.TrimSpace(e); s != "" {
					out = append(out, s)
				}
			}
		case []any:
			for _, e := range v {
				if str, ok := e.(string); ok {
					if s := strings.TrimSpace(str); s != "" {
						out = append(out, s)
					}
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
