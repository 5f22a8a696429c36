package actions

import (
	"testing"
)

const testProtocol = `А.Анна даваа гарагт тайлан илгээхээр болов.
Б.Жон хяналт хийж санал өгөхөөр болов.
ТОГТСОН: Ирэх долоо хоногт эцсийн хувилбарыг илгээхээр тогтов.`

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		item   Item
		wantOK bool
	}{
		{
			name:   "valid personal action",
			item:   Item{Who: "Анна", Action: "тайлан илгээх", Due: "даваа гараг", Type: TypeAction, Confidence: 0.9},
			wantOK: true,
		},
		{
			name:   "valid collective decision",
			item:   Item{Who: WhoDecision, Action: "эцсийн хувилбарыг илгээх", Due: "ирэх долоо хоног", Type: TypeDecision, Confidence: 0.95},
			wantOK: true,
		},
		{
			name:   "who too short",
			item:   Item{Who: "А", Action: "тайлан илгээх", Type: TypeAction, Confidence: 0.9},
			wantOK: false,
		},
		{
			name:   "action too short",
			item:   Item{Who: "Анна", Action: "тийм", Type: TypeAction, Confidence: 0.9},
			wantOK: false,
		},
		{
			name:   "unknown type",
			item:   Item{Who: "Анна", Action: "тайлан илгээх", Type: "note", Confidence: 0.9},
			wantOK: false,
		},
		{
			name:   "confidence above one",
			item:   Item{Who: "Анна", Action: "тайлан илгээх", Type: TypeAction, Confidence: 1.5},
			wantOK: false,
		},
		{
			name:   "artifact token in action",
			item:   Item{Who: "Анна", Action: "тайлан илгээх <|endoftext|>", Type: TypeAction, Confidence: 0.9},
			wantOK: false,
		},
		{
			name:   "degenerate word in who",
			item:   Item{Who: "Аннаааааааааааааааааааааа", Action: "тайлан илгээх", Type: TypeAction, Confidence: 0.9},
			wantOK: false,
		},
		{
			name:   "who not in protocol",
			item:   Item{Who: "Батбаяр", Action: "тайлан илгээх", Type: TypeAction, Confidence: 0.9},
			wantOK: false,
		},
		{
			name:   "initial-prefixed who matches bare name",
			item:   Item{Who: "А.Анна", Action: "тайлан илгээх", Due: DueUnspecified, Type: TypeAction, Confidence: 0.8},
			wantOK: true,
		},
		{
			name:   "due without date term",
			item:   Item{Who: "Анна", Action: "тайлан илгээх", Due: "удахгүй", Type: TypeAction, Confidence: 0.9},
			wantOK: false,
		},
		{
			name:   "due not traceable to protocol",
			item:   Item{Who: "Анна", Action: "тайлан илгээх", Due: "бямба", Type: TypeAction, Confidence: 0.9},
			wantOK: false,
		},
		{
			name:   "placeholder due skips provenance",
			item:   Item{Who: "Жон", Action: "хяналт хийж санал өгөх", Due: DueUnknown, Type: TypeAction, Confidence: 0.7},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, reason := validate(tt.item, testProtocol)
			if ok != tt.wantOK {
				t.Errorf("validate(%+v) = %v (%s), want %v", tt.item, ok, reason, tt.wantOK)
			}
		})
	}
}

func TestHasDeadline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		due  string
		want bool
	}{
		{"даваа гараг", true},
		{DueUnspecified, false},
		{DueUnknown, false},
		{"", false},
		{"  ", false},
	}
	for _, tt := range tests {
		if got := (Item{Due: tt.due}).HasDeadline(); got != tt.want {
			t.Errorf("HasDeadline(%q) = %v, want %v", tt.due, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	items := []Item{
		{Who: "Анна", Action: "тайлан илгээх", Due: "даваа гараг", Type: TypeAction},
		{Who: "Жон", Action: "хяналт хийх", Due: DueUnspecified, Type: TypeAction},
		{Who: WhoDecision, Action: "хувилбар илгээх", Due: "ирэх долоо хоног", Type: TypeDecision},
	}

	s := Summarize(items)
	if s.Total != 3 {
		t.Errorf("Total = %d, want 3", s.Total)
	}
	if s.ByType[TypeAction] != 2 || s.ByType[TypeDecision] != 1 {
		t.Errorf("ByType = %v", s.ByType)
	}
	if s.ByPerson["Анна"] != 1 || s.ByPerson[WhoDecision] != 1 {
		t.Errorf("ByPerson = %v", s.ByPerson)
	}
	if s.WithDeadline != 2 || s.WithoutDeadline != 1 {
		t.Errorf("deadline counts = %d/%d, want 2/1", s.WithDeadline, s.WithoutDeadline)
	}

	empty := Summarize(nil)
	if empty.Total != 0 || empty.ByType == nil || empty.ByPerson == nil {
		t.Errorf("Summarize(nil) = %+v", empty)
	}
}
