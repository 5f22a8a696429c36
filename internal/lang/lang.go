// Package lang holds the Mongolian text heuristics shared by the
// normalizer, the quality gate, and the action-item extractor: discourse
// filler sets, informal speech patterns, date/time keywords, script
// counting, name-token extraction, and nonsense-token detection.
//
// Everything here is a pure function over strings. RE2 has no notion of a
// Cyrillic word boundary (\b is ASCII-only), so boundary matching is built
// from \p{L} classes instead.
package lang

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DiscourseFillers are the short spoken-language fillers stripped by the
// normalizer before any text reaches the model.
var DiscourseFillers = []string{
	"аа", "ээ", "өө", "юу", "гээд", "тэгээд", "за", "тэгэхээр",
}

// CriticalFillers are the filler phrases whose presence in a generated
// candidate is a hard quality violation — the model was explicitly
// instructed to remove them.
var CriticalFillers = []string{
	"шүү дээ", "л байх даа", "байхаа", "биз дээ", "аа дээ", "шүү аа",
}

// ResidualFillers is the defensive sweep list applied by the post-processor
// to an already-accepted candidate: the critical phrases, their close
// variants, and the short discourse fillers.
var ResidualFillers = []string{
	"шүү дээ", "л байх даа", "байхаа", "биз дээ", "аа дээ",
	"шүү аа", "ээ дээ", "өө дээ",
	"аа", "ээ", "өө", "юу", "гээд", "тэгээд", "за", "тэгэхээр",
}

// DateKeywords are the date/time terms used by the preservation check and
// by action-item due-field provenance. Matching is case-insensitive.
var DateKeywords = []string{
	"даваа", "мягмар", "лхагва", "пүрэв", "баасан", "бямба", "ням",
	"гараг", "өнөөдөр", "маргааш", "нөгөөдөр", "долоо хоног",
	"сар", "өдөр", "жил", "цаг",
}

// informalPatterns match spoken verb/pronoun constructions that must not
// survive formalization.
var informalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(^|\PL)би\s+хийнэ(\PL|$)`),
	regexp.MustCompile(`(?i)(^|\PL)та\s+хийнэ(\PL|$)`),
	regexp.MustCompile(`(?i)(^|\PL)болно\s+шүү(\PL|$)`),
}

// nonsenseBlacklist are literal tokens that only appear in degenerate model
// output (tokenizer artifacts and replacement characters).
var nonsenseBlacklist = []string{
	"<|endoftext|>", "[PAD]", "�",
}

// maxWordRunes is the length above which a single Cyrillic word is treated
// as a nonsense run-on.
const maxWordRunes = 20

var (
	cyrillicLetter = regexp.MustCompile(`[\x{0410}-\x{044F}ЁёӨөҮү]`)
	latinLetter    = regexp.MustCompile(`[A-Za-z]`)
	initialPrefix  = regexp.MustCompile(`^\p{Lu}\.`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// fillerPattern builds a boundary-aware, case-insensitive alternation over
// the given fillers. Longer fillers are listed first so they win over their
// own substrings.
func fillerPattern(fillers []string) *regexp.Regexp {
	sorted := make([]string, len(fillers))
	copy(sorted, fillers)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if utf8.RuneCountInString(sorted[j]) > utf8.RuneCountInString(sorted[i]) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	quoted := make([]string, len(sorted))
	for i, f := range sorted {
		// Interior whitespace in a phrase matches any whitespace run.
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(f), `\ `, `\s+`)
	}
	return regexp.MustCompile(`(?i)(^|\PL)(` + strings.Join(quoted, "|") + `)(\PL|$)`)
}

var (
	discoursePattern = fillerPattern(DiscourseFillers)
	residualPattern  = fillerPattern(ResidualFillers)
)

// RemoveDiscourseFillers deletes the short discourse fillers on letter
// boundaries. Applied before generation.
func RemoveDiscourseFillers(text string) string {
	return removeAll(discoursePattern, text)
}

// RemoveResidualFillers deletes the full residual sweep list. Applied after
// generation by the post-processor.
func RemoveResidualFillers(text string) string {
	return removeAll(residualPattern, text)
}

// removeAll applies p until the text stops changing. A single pass misses
// back-to-back fillers because the boundary character between them is
// consumed by the first match.
func removeAll(p *regexp.Regexp, text string) string {
	for {
		next := p.ReplaceAllString(text, "$1$3")
		if next == text {
			return next
		}
		text = next
	}
}

// FindCriticalFiller returns the first critical filler phrase present in
// text (substring, case-insensitive), or "" when none remains.
func FindCriticalFiller(text string) string {
	lower := strings.ToLower(text)
	for _, f := range CriticalFillers {
		if strings.Contains(lower, f) {
			return f
		}
	}
	return ""
}

// FindInformalPattern returns the matched informal construction in text,
// or "" when none matches.
func FindInformalPattern(text string) string {
	for _, p := range informalPatterns {
		if m := p.FindString(text); m != "" {
			return strings.TrimFunc(m, func(r rune) bool { return !unicode.IsLetter(r) })
		}
	}
	return ""
}

// CountCyrillic returns the number of Mongolian Cyrillic letters in text.
func CountCyrillic(text string) int {
	return len(cyrillicLetter.FindAllString(text, -1))
}

// CountLatin returns the number of Latin letters in text.
func CountLatin(text string) int {
	return len(latinLetter.FindAllString(text, -1))
}

// DateKeywordsIn returns the date keywords present in text, in keyword-list
// order. Matching is case-insensitive substring search.
func DateKeywordsIn(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, k := range DateKeywords {
		if strings.Contains(lower, k) {
			found = append(found, k)
		}
	}
	return found
}

// CapitalizedTokens returns up to limit distinct tokens of text that begin
// with an uppercase letter, trimmed of surrounding punctuation, in order of
// first appearance. These approximate the named entities of the text.
func CapitalizedTokens(text string, limit int) []string {
	seen := map[string]bool{}
	var tokens []string
	for _, field := range strings.Fields(text) {
		tok := strings.TrimFunc(field, func(r rune) bool { return !unicode.IsLetter(r) })
		if tok == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(tok)
		if !unicode.IsUpper(first) {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
		if limit > 0 && len(tokens) >= limit {
			break
		}
	}
	return tokens
}

// StripInitial removes a leading single-letter initial ("А.Анна" → "Анна").
// Text without such a prefix is returned unchanged.
func StripInitial(name string) string {
	return initialPrefix.ReplaceAllString(name, "")
}

// FindNonsense scans text for degenerate model output and returns the
// offending fragment, or "" when the text is clean. Three patterns count as
// nonsense: a blacklisted artifact token, a single Cyrillic word longer
// than 20 letters, and three consecutive single-letter tokens.
func FindNonsense(text string) string {
	for _, b := range nonsenseBlacklist {
		if strings.Contains(text, b) {
			return b
		}
	}

	singleRun := 0
	for _, field := range strings.Fields(text) {
		word := strings.TrimFunc(field, func(r rune) bool { return !unicode.IsLetter(r) })
		if word == "" {
			singleRun = 0
			continue
		}
		if CountCyrillic(word) == utf8.RuneCountInString(word) && utf8.RuneCountInString(word) > maxWordRunes {
			return word
		}
		if utf8.RuneCountInString(word) == 1 {
			singleRun++
			if singleRun >= 3 {
				return word
			}
		} else {
			singleRun = 0
		}
	}
	return ""
}

// CollapseWhitespace replaces whitespace runs with single spaces and trims
// the ends.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
