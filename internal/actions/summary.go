package actions

// Summary aggregates a slice of extracted items for report footers and API
// responses.
type Summary struct {
	// Total is the number of items.
	Total int `json:"total_actions"`

	// ByType counts items per Type value.
	ByType map[string]int `json:"by_type"`

	// ByPerson counts items per Who value.
	ByPerson map[string]int `json:"by_person"`

	// WithDeadline counts items carrying a concrete due phrase.
	WithDeadline int `json:"with_deadline"`

	// WithoutDeadline counts items with a placeholder or empty due.
	WithoutDeadline int `json:"without_deadline"`
}

// Summarize aggregates items. It never fails; an empty slice yields a zero
// summary with initialized maps.
func Summarize(items []Item) Summary {
	s := Summary{
		Total:    len(items),
		ByType:   make(map[string]int),
		ByPerson: make(map[string]int),
	}
	for _, it := range items {
		s.ByType[it.Type]++
		s.ByPerson[it.Who]++
		if it.HasDeadline() {
			s.WithDeadline++
		} else {
			s.WithoutDeadline++
		}
	}
	return s
}
