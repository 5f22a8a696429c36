package formalize

import "github.com/munkhbat-dev/protokol/internal/lang"

// Normalize strips spoken-language discourse fillers from raw transcript
// text and collapses whitespace runs to single spaces. It is pure and
// total: no input can make it fail, and names, numerals, and punctuation
// pass through untouched.
func Normalize(text string) string {
	return lang.CollapseWhitespace(lang.RemoveDiscourseFillers(text))
}
