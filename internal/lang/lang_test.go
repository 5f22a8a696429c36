package lang

import (
	"reflect"
	"testing"
)

func TestRemoveDiscourseFillers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single filler",
			in:   "за бид эхэлье",
			want: " бид эхэлье",
		},
		{
			name: "consecutive fillers",
			in:   "за тэгээд бид үргэлжлүүлье",
			want: "  бид үргэлжлүүлье",
		},
		{
			name: "filler inside word untouched",
			in:   "байгаа хүмүүс",
			want: "байгаа хүмүүс",
		},
		{
			name: "case insensitive",
			in:   "За бид эхэлье",
			want: " бид эхэлье",
		},
		{
			name: "no fillers",
			in:   "хурал эхэллээ",
			want: "хурал эхэллээ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RemoveDiscourseFillers(tt.in); got != tt.want {
				t.Errorf("RemoveDiscourseFillers(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRemoveResidualFillersEliminatesAll(t *testing.T) {
	t.Parallel()

	in := "Би хийнэ шүү дээ, за тэгээд дуусгана л байх даа."
	got := RemoveResidualFillers(in)
	if f := FindCriticalFiller(got); f != "" {
		t.Errorf("critical filler %q survived in %q", f, got)
	}
}

func TestFindCriticalFiller(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Би дуусгана шүү дээ.", "шүү дээ"},
		{"Шалгаж үзье л байх даа.", "л байх даа"},
		{"Ажлыг хариуцан гүйцэтгэнэ.", ""},
		{"БИ ХИЙНЭ ШҮҮ ДЭЭ", "шүү дээ"},
	}

	for _, tt := range tests {
		if got := FindCriticalFiller(tt.in); got != tt.want {
			t.Errorf("FindCriticalFiller(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindInformalPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		wantHit bool
	}{
		{"би хийнэ гэж хэлсэн", true},
		{"Та хийнэ гэдэгт итгэлтэй байна", true},
		{"болно шүү", true},
		{"ажлыг гүйцэтгэнэ", false},
	}

	for _, tt := range tests {
		got := FindInformalPattern(tt.in)
		if (got != "") != tt.wantHit {
			t.Errorf("FindInformalPattern(%q) = %q, want hit=%v", tt.in, got, tt.wantHit)
		}
	}
}

func TestScriptCounts(t *testing.T) {
	t.Parallel()

	in := "Хурал meeting өнөөдөр"
	if got := CountCyrillic(in); got != 12 {
		t.Errorf("CountCyrillic = %d, want 12", got)
	}
	if got := CountLatin(in); got != 7 {
		t.Errorf("CountLatin = %d, want 7", got)
	}
}

func TestDateKeywordsIn(t *testing.T) {
	t.Parallel()

	got := DateKeywordsIn("Анна даваа гарагт тайлан илгээнэ.")
	want := []string{"даваа", "гараг"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DateKeywordsIn = %v, want %v", got, want)
	}

	if got := DateKeywordsIn("тайлан бэлэн болсон"); got != nil {
		t.Errorf("DateKeywordsIn(no dates) = %v, want nil", got)
	}
}

func TestCapitalizedTokens(t *testing.T) {
	t.Parallel()

	got := CapitalizedTokens("Анна: Би тайланг Жонд өгнө. Анна дахин хэлэв.", 10)
	want := []string{"Анна", "Би", "Жонд"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CapitalizedTokens = %v, want %v", got, want)
	}

	if got := CapitalizedTokens("Анна Жон Бат Дорж", 2); len(got) != 2 {
		t.Errorf("limit not applied: got %v", got)
	}
}

func TestStripInitial(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"А.Анна", "Анна"},
		{"Анна", "Анна"},
		{"Б.Дорж", "Дорж"},
	}
	for _, tt := range tests {
		if got := StripInitial(tt.in); got != tt.want {
			t.Errorf("StripInitial(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindNonsense(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		wantHit bool
	}{
		{"clean text", "Хурлын протокол бэлэн боллоо.", false},
		{"blacklist token", "үр дүн <|endoftext|> гарлаа", true},
		{"replacement char", "хариу � ирлээ", true},
		{"overlong cyrillic word", "тайлантайлантайлантайлан бэлэн", true},
		{"three single letters", "хариу а б в ирлээ", true},
		{"two single letters ok", "а б хоёр хувилбар", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FindNonsense(tt.in)
			if (got != "") != tt.wantHit {
				t.Errorf("FindNonsense(%q) = %q, want hit=%v", tt.in, got, tt.wantHit)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	if got := CollapseWhitespace("  нэг \t хоёр \n гурав  "); got != "нэг хоёр гурав" {
		t.Errorf("CollapseWhitespace = %q", got)
	}
}
