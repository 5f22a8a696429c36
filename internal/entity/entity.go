// Package entity extracts named entities (people, organizations) from
// Mongolian transcript text with regular expressions and fuzzy
// deduplication. The pipeline uses the result to enrich protocol metadata;
// extraction is best-effort and never fails.
package entity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

var (
	// personPattern matches full name forms: initial-prefixed "Б.Анударь"
	// and two-part "Батболд Дорж". Bare single capitalized words are too
	// noisy to treat as names.
	personPattern = regexp.MustCompile(`[А-ЯЁҮӨ]\.[А-ЯЁҮӨ][а-яёүө]+|[А-ЯЁҮӨ][а-яёүө]+\s[А-ЯЁҮӨ][а-яёүө]+`)

	// orgPattern matches capitalized phrases ending in an organization
	// keyword: "Төрийн банк", "Их сургууль".
	orgPattern = regexp.MustCompile(`[А-ЯЁҮӨ][а-яёүө]+(?:\s[А-ЯЁҮӨ][а-яёүө]+)*\s(?:банк|их сургууль|ххк|төв)`)
)

// maxEditDistance is the Levenshtein threshold below which two extracted
// entities are treated as spelling variants of each other.
const maxEditDistance = 2

// Extract returns the distinct named entities found in text, sorted.
// Near-duplicates (edit distance < 2, or one being an initial-prefixed form
// of the other) collapse onto the first-seen spelling.
func Extract(text string) []string {
	var found []string
	found = append(found, personPattern.FindAllString(text, -1)...)
	found = append(found, orgPattern.FindAllString(text, -1)...)

	var entities []string
	for _, cand := range found {
		cand = strings.TrimSpace(cand)
		if cand == "" {
			continue
		}
		if !hasVariant(entities, cand) {
			entities = append(entities, cand)
		}
	}

	sort.Strings(entities)
	return entities
}

// hasVariant reports whether cand is a near-duplicate of an already-kept
// entity.
func hasVariant(kept []string, cand string) bool {
	for _, k := range kept {
		if sameEntity(k, cand) {
			return true
		}
	}
	return false
}

// sameEntity treats two spellings as one entity when they are equal, within
// the edit-distance threshold, or differ only by an initial prefix
// ("Б.Анударь" vs "Анударь").
func sameEntity(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	if strings.EqualFold(stripInitial(a), stripInitial(b)) {
		return true
	}
	return matchr.Levenshtein(strings.ToLower(a), strings.ToLower(b)) < maxEditDistance
}

var initialPrefix = regexp.MustCompile(`^[А-ЯЁҮӨ]\.`)

func stripInitial(name string) string {
	return initialPrefix.ReplaceAllString(name, "")
}
