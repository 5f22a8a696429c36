// Package protocol assembles the final meeting-protocol document from the
// pipeline outputs and exports it as DOCX.
package protocol

import (
	"strings"
	"time"

	"github.com/munkhbat-dev/protokol/internal/actions"
)

// Protocol is a complete formalized meeting protocol ready for export.
type Protocol struct {
	// Title is the document heading. Defaults to "Протокол".
	Title string

	// Date is the meeting date as given by the caller, free-form.
	Date string

	// Participants lists the meeting attendees.
	Participants []string

	// Body is the formalized protocol text.
	Body string

	// Items are the validated action items and decisions.
	Items []actions.Item

	// Summary aggregates Items.
	Summary actions.Summary

	// Entities are the named entities detected in the transcript.
	Entities []string
}

// Build assembles a Protocol, filling defaults: an empty title becomes
// "Протокол", an empty date becomes today's date, and an empty participant
// list falls back to the entities detected in the transcript. A caller-given
// participant list is never overridden.
func Build(title, date string, participants []string, body string, items []actions.Item, entities []string) Protocol {
	if strings.TrimSpace(title) == "" {
		title = "Протокол"
	}
	if strings.TrimSpace(date) == "" {
		date = time.Now().Format("2006-01-02")
	}
	if len(participants) == 0 {
		participants = entities
	}
	return Protocol{
		Title:        title,
		Date:         date,
		Participants: participants,
		Body:         body,
		Items:        items,
		Summary:      actions.Summarize(items),
		Entities:     entities,
	}
}
