package formalize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitChunksShortTextSingleChunk(t *testing.T) {
	t.Parallel()

	text := "Хурал эхэллээ. Анна тайлан танилцуулав."
	got := SplitChunks(text, 1500)
	if len(got) != 1 || got[0] != text {
		t.Errorf("SplitChunks = %v, want single original chunk", got)
	}
}

func TestSplitChunksRespectsLimit(t *testing.T) {
	t.Parallel()

	sentence := "Хурлын гишүүд асуудлыг хэлэлцэж нэгдсэн шийдвэр гаргав."
	text := strings.Repeat(sentence+" ", 100) // well past any limit

	const maxLen = 1500
	chunks := SplitChunks(text, maxLen)

	if len(chunks) < 4 {
		t.Fatalf("got %d chunks, want at least 4", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > maxLen {
			t.Errorf("chunk %d has %d runes, limit %d", i, n, maxLen)
		}
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestSplitChunksSentencesStayIntact(t *testing.T) {
	t.Parallel()

	text := "Нэгдүгээр асуудал хэлэлцэв. Хоёрдугаар асуудал шийдэв! Гуравдугаар асуудал хойшлов?"
	chunks := SplitChunks(text, 40)

	for i, c := range chunks {
		if !strings.HasSuffix(c, ".") && !strings.HasSuffix(c, "!") && !strings.HasSuffix(c, "?") {
			t.Errorf("chunk %d %q does not end on a sentence boundary", i, c)
		}
	}
}

func TestSplitChunksRoundTrip(t *testing.T) {
	t.Parallel()

	text := "Анна тайлан илгээнэ. Жон хяналт хийнэ. Тогтоол батлагдав."
	chunks := SplitChunks(text, 30)

	joined := strings.Join(chunks, " ")
	if want := text; joined != want {
		t.Errorf("rejoined chunks = %q, want %q", joined, want)
	}
}

func TestSplitChunksOversizeSentencePassesWhole(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("үг ", 50) + "дуусав." // one sentence, no internal boundary
	chunks := SplitChunks("Богино. "+long, 20)

	found := false
	for _, c := range chunks {
		if strings.Contains(c, "дуусав.") {
			found = true
			if utf8.RuneCountInString(c) <= 20 {
				t.Errorf("oversize sentence was cut: %q", c)
			}
		}
	}
	if !found {
		t.Fatal("oversize sentence missing from chunks")
	}
}

func TestNormalizeStripsFillersAndWhitespace(t *testing.T) {
	t.Parallel()

	got := Normalize("За  тэгээд   бид\n\nүргэлжлүүлье")
	if got != "бид үргэлжлүүлье" {
		t.Errorf("Normalize = %q, want %q", got, "бид үргэлжлүүлье")
	}
}
