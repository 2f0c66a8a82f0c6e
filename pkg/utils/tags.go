package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeTag lower-cases and collapses inner whitespace of a cuisine tag.
func NormalizeTag(tag string) string {
	// Casers are stateful, so one is built per call.
	return cases.Lower(language.Und).String(strings.Join(strings.Fields(tag), " "))
}

// NormalizeTags normalizes, drops empties and deduplicates, keeping order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = NormalizeTag(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
