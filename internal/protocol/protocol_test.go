package protocol

import (
	"bytes"
	"testing"

	"github.com/munkhbat-dev/protokol/internal/actions"
)

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	p := Build("", "", nil, "Хурал эхлэв.", nil, nil)
	if p.Title != "Протокол" {
		t.Errorf("Title = %q, want default", p.Title)
	}
	if p.Date == "" {
		t.Error("Date not defaulted")
	}
	if p.Summary.Total != 0 {
		t.Errorf("Summary.Total = %d, want 0", p.Summary.Total)
	}
}

func TestBuildParticipantsFallBackToEntities(t *testing.T) {
	t.Parallel()

	p := Build("", "", nil, "Хурал эхлэв.", nil, []string{"Б.Анна", "Д.Бат"})
	if len(p.Participants) != 2 || p.Participants[0] != "Б.Анна" {
		t.Errorf("Participants = %v, want entities fallback", p.Participants)
	}

	p = Build("", "", []string{"Жон"}, "Хурал эхлэв.", nil, []string{"Б.Анна"})
	if len(p.Participants) != 1 || p.Participants[0] != "Жон" {
		t.Errorf("Participants = %v, want caller list kept", p.Participants)
	}
}

func TestBuildAggregatesItems(t *testing.T) {
	t.Parallel()

	items := []actions.Item{
		{Who: "Анна", Action: "тайлан илгээх", Due: "даваа гараг", Type: actions.TypeAction},
		{Who: actions.WhoDecision, Action: "хувилбар батлах", Type: actions.TypeDecision},
	}
	p := Build("Долоо хоногийн хурал", "2026-08-29", []string{"Анна", "Жон"}, "Агуулга.", items, []string{"Б.Анна"})

	if p.Summary.Total != 2 || p.Summary.ByType[actions.TypeDecision] != 1 {
		t.Errorf("Summary = %+v", p.Summary)
	}
	if len(p.Participants) != 2 || len(p.Entities) != 1 {
		t.Errorf("metadata dropped: %+v", p)
	}
}

func TestWriteDOCX(t *testing.T) {
	t.Parallel()

	p := Build("Тест протокол", "2026-08-29", []string{"Анна"},
		"А.Анна даваа гарагт тайлан илгээхээр болов.\n\nХурал өндөрлөв.",
		[]actions.Item{
			{Who: "Анна", Action: "тайлан илгээх", Due: "даваа гараг", Type: actions.TypeAction, Confidence: 0.9},
		}, nil)

	var buf bytes.Buffer
	if err := WriteDOCX(&buf, p); err != nil {
		t.Fatalf("WriteDOCX: %v", err)
	}
	// DOCX is a ZIP container.
	if buf.Len() == 0 || !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Errorf("output is not a ZIP archive (%d bytes)", buf.Len())
	}
}
