// Package actions extracts structured action items and decisions from a
// cleaned meeting transcript via the LLM and validates each record before
// it reaches callers.
package actions

import (
	"strings"
	"unicode/utf8"

	"github.com/munkhbat-dev/protokol/internal/lang"
)

// Item types.
const (
	TypeAction   = "action"
	TypeDecision = "decision"
)

// Placeholder values the model is told to use when a field is unknown.
const (
	// WhoDecision marks a record owned by the meeting itself rather than a
	// person.
	WhoDecision = "Хурлын шийдвэр"

	// DueUnspecified is the due field for records without a deadline.
	DueUnspecified = "Хугацаа заагаагүй"

	// DueUnknown is the legacy variant of DueUnspecified some models emit.
	DueUnknown = "Тодорхойгүй"
)

// Item is one extracted action item or decision.
type Item struct {
	// Who is the responsible party. Either a person named in the protocol
	// or WhoDecision for collective decisions.
	Who string `json:"who"`

	// Action describes the work or the decision taken.
	Action string `json:"action"`

	// Due is the deadline phrase from the protocol, or DueUnspecified.
	Due string `json:"due"`

	// Type is TypeAction or TypeDecision.
	Type string `json:"type"`

	// Confidence is the model's self-reported confidence in [0, 1].
	Confidence float64 `json:"confidence"`
}

// HasDeadline reports whether the item carries a concrete due phrase rather
// than a placeholder.
func (it Item) HasDeadline() bool {
	due := strings.TrimSpace(it.Due)
	return due != "" && due != DueUnspecified && due != DueUnknown
}

// minWhoRunes and minActionRunes are the structural floors for a valid
// record: shorter values are model noise, not a responsible party or a task.
const (
	minWhoRunes    = 2
	minActionRunes = 5
)

// validate applies the per-record checks against the source text the items
// were extracted from: structural (required fields and length floors), type
// vocabulary, confidence bounds, plausibility (no degenerate model output in
// any field), and provenance (a named owner or due phrase must actually
// trace back to the source text).
func validate(it Item, source string) (ok bool, reason string) {
	who := strings.TrimSpace(it.Who)
	action := strings.TrimSpace(it.Action)

	switch {
	case utf8.RuneCountInString(who) < minWhoRunes:
		return false, "who too short"
	case utf8.RuneCountInString(action) < minActionRunes:
		return false, "action too short"
	case it.Type != TypeAction && it.Type != TypeDecision:
		return false, "unknown type " + it.Type
	case it.Confidence < 0 || it.Confidence > 1:
		return false, "confidence out of range"
	}

	if frag := lang.FindNonsense(who + " " + action + " " + it.Due); frag != "" {
		return false, "nonsense fragment " + frag
	}

	lower := strings.ToLower(source)

	if who != WhoDecision {
		// A personal owner must be traceable to the source text, with or
		// without an initial prefix.
		if !strings.Contains(lower, strings.ToLower(who)) &&
			!strings.Contains(lower, strings.ToLower(lang.StripInitial(who))) {
			return false, "who not present in source"
		}
	}

	if it.HasDeadline() {
		// A concrete due phrase must share at least one date term with the
		// source text.
		keys := lang.DateKeywordsIn(it.Due)
		if len(keys) == 0 {
			return false, "due has no recognizable date term"
		}
		traceable := false
		for _, k := range keys {
			if strings.Contains(lower, k) {
				traceable = true
				break
			}
		}
		if !traceable {
			return false, "due not traceable to source"
		}
	}

	return true, ""
}
