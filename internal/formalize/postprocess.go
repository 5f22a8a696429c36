package formalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/munkhbat-dev/protokol/internal/lang"
)

var (
	horizontalRun  = regexp.MustCompile(`[ \t]+`)
	spaceBeforePun = regexp.MustCompile(`[ \t]+([,.!?;:])`)
	bulletPrefix   = regexp.MustCompile(`^([-*•]|#{1,6})\s+`)
)

// PostProcess is the final cleanup applied to an accepted candidate: a
// defensive residual-filler sweep, markdown markup stripping, whitespace and
// punctuation-spacing normalization per line, sentence-initial
// capitalization, and blank-line collapsing. Line breaks survive.
//
// PostProcess is idempotent: applying it to its own output changes nothing.
func PostProcess(text string) string {
	text = lang.RemoveResidualFillers(text)
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")

	var out []string
	blank := true // suppress leading blank lines
	for _, line := range strings.Split(text, "\n") {
		line = cleanLine(line)
		if line == "" {
			if !blank {
				out = append(out, "")
				blank = true
			}
			continue
		}
		out = append(out, line)
		blank = false
	}
	// Drop a trailing blank line left by the collapse.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func cleanLine(line string) string {
	line = bulletPrefix.ReplaceAllString(line, "")
	line = horizontalRun.ReplaceAllString(line, " ")
	line = spaceBeforePun.ReplaceAllString(line, "$1")
	line = strings.TrimSpace(line)
	return capitalize(line)
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError || unicode.IsUpper(first) || !unicode.IsLetter(first) {
		return s
	}
	return string(unicode.ToUpper(first)) + s[size:]
}
