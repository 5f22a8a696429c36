package formalize

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/munkhbat-dev/protokol/internal/lang"
)

// ViolationKind identifies one quality-gate check.
type ViolationKind string

const (
	KindTooShort         ViolationKind = "too_short"
	KindResidualFiller   ViolationKind = "residual_filler_phrase"
	KindLengthRatio      ViolationKind = "length_ratio_out_of_bounds"
	KindForeignScript    ViolationKind = "excess_foreign_script"
	KindInformalPattern  ViolationKind = "residual_informal_pattern"
	KindNameNotPreserved ViolationKind = "name_not_preserved"
	KindDateNotPreserved ViolationKind = "date_not_preserved"
	KindNonsenseToken    ViolationKind = "nonsense_token_detected"
)

// Violation is one failed gate check with a human-readable detail.
type Violation struct {
	Kind   ViolationKind
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
}

// minCandidateRunes is the floor below which a candidate is a degenerate
// generation rather than a short but valid formalization.
const minCandidateRunes = 10

// maxNameTokens caps how many leading capitalized tokens of the source the
// preservation check tracks.
const maxNameTokens = 10

// Gate evaluates a generated candidate against its source chunk. Rejecting
// violations fail the attempt; advisory violations (the two preservation
// checks) are reported but do not fail it unless StrictPreservation is set.
type Gate struct {
	// MinRatio and MaxRatio bound candidate length relative to the source,
	// in runes.
	MinRatio float64
	MaxRatio float64

	// MaxForeignRatio bounds Latin letters relative to Cyrillic letters.
	MaxForeignRatio float64

	// StrictPreservation escalates name/date preservation to rejecting.
	StrictPreservation bool
}

// DefaultGate returns the production thresholds.
func DefaultGate() Gate {
	return Gate{
		MinRatio:        0.15,
		MaxRatio:        8.0,
		MaxForeignRatio: 0.3,
	}
}

// Evaluate runs every check against candidate and returns whether the
// candidate is accepted along with all violations found, rejecting and
// advisory alike. A too-short candidate short-circuits: nothing else is
// worth checking on a fragment.
func (g Gate) Evaluate(source, candidate string) (bool, []Violation) {
	trimmed := strings.TrimSpace(candidate)
	if n := utf8.RuneCountInString(trimmed); n < minCandidateRunes {
		return false, []Violation{{
			Kind:   KindTooShort,
			Detail: fmt.Sprintf("candidate is %d runes, minimum %d", n, minCandidateRunes),
		}}
	}

	var violations []Violation

	if f := lang.FindCriticalFiller(trimmed); f != "" {
		violations = append(violations, Violation{
			Kind:   KindResidualFiller,
			Detail: fmt.Sprintf("filler phrase %q survived", f),
		})
	}

	srcLen := utf8.RuneCountInString(strings.TrimSpace(source))
	if srcLen > 0 {
		ratio := float64(utf8.RuneCountInString(trimmed)) / float64(srcLen)
		if ratio < g.MinRatio || ratio > g.MaxRatio {
			violations = append(violations, Violation{
				Kind:   KindLengthRatio,
				Detail: fmt.Sprintf("length ratio %.2f outside [%.2f, %.2f]", ratio, g.MinRatio, g.MaxRatio),
			})
		}
	}

	cyr := lang.CountCyrillic(trimmed)
	lat := lang.CountLatin(trimmed)
	if cyr > 0 && float64(lat) > float64(cyr)*g.MaxForeignRatio {
		violations = append(violations, Violation{
			Kind:   KindForeignScript,
			Detail: fmt.Sprintf("%d latin vs %d cyrillic letters exceeds ratio %.2f", lat, cyr, g.MaxForeignRatio),
		})
	}

	if m := lang.FindInformalPattern(trimmed); m != "" {
		violations = append(violations, Violation{
			Kind:   KindInformalPattern,
			Detail: fmt.Sprintf("informal construction %q survived", m),
		})
	}

	if names := lang.CapitalizedTokens(source, maxNameTokens); len(names) > 0 {
		missing := 0
		for _, name := range names {
			if !strings.Contains(candidate, name) && !strings.Contains(candidate, lang.StripInitial(name)) {
				missing++
			}
		}
		if missing*2 > len(names) {
			violations = append(violations, Violation{
				Kind:   KindNameNotPreserved,
				Detail: fmt.Sprintf("%d of %d source names missing from candidate", missing, len(names)),
			})
		}
	}

	if keys := lang.DateKeywordsIn(source); len(keys) > 0 {
		lower := strings.ToLower(candidate)
		preserved := false
		for _, k := range keys {
			if strings.Contains(lower, k) {
				preserved = true
				break
			}
		}
		if !preserved {
			violations = append(violations, Violation{
				Kind:   KindDateNotPreserved,
				Detail: fmt.Sprintf("none of source date terms %v present in candidate", keys),
			})
		}
	}

	if tok := lang.FindNonsense(trimmed); tok != "" {
		violations = append(violations, Violation{
			Kind:   KindNonsenseToken,
			Detail: fmt.Sprintf("degenerate fragment %q", tok),
		})
	}

	for _, v := range violations {
		if g.Rejects(v.Kind) {
			return false, violations
		}
	}
	return true, violations
}

// Rejects reports whether a violation of kind k fails the attempt under this
// gate's configuration.
func (g Gate) Rejects(k ViolationKind) bool {
	switch k {
	case KindNameNotPreserved, KindDateNotPreserved:
		return g.StrictPreservation
	default:
		return true
	}
}
