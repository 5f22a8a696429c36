package formalize

import (
	"strings"
	"unicode/utf8"
)

// SplitChunks breaks text into chunks of at most maxLen runes, splitting on
// sentence boundaries only. Text at or under the limit is returned as a
// single chunk. A single sentence longer than maxLen becomes its own
// oversized chunk rather than being cut mid-sentence. The concatenation of
// the chunks reproduces the input modulo whitespace normalization.
func SplitChunks(text string, maxLen int) []string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, s := range splitSentences(text) {
		n := utf8.RuneCountInString(s)
		if curLen > 0 && curLen+1+n > maxLen {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(s)
		curLen += n
	}
	flush()

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// splitSentences splits on sentence-ending punctuation and newlines, keeping
// the punctuation attached to its sentence. Empty fragments are dropped.
func splitSentences(text string) []string {
	var (
		sentences []string
		cur       strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			sentences = append(sentences, s)
		}
		cur.Reset()
	}

	for _, r := range text {
		switch r {
		case '.', '!', '?':
			cur.WriteRune(r)
			flush()
		case '\n':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return sentences
}
