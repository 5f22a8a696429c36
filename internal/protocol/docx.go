package protocol

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fumiama/go-docx"

	"github.com/munkhbat-dev/protokol/internal/actions"
)

// headingColor is the dark blue used for the document title.
const headingColor = "1F4E78"

// separator is the horizontal rule between document sections.
var separator = strings.Repeat("_", 70)

// actionTableHeaders are the column titles of the action-item table.
var actionTableHeaders = []string{"Хариуцагч", "Ажил үүрэг", "Хугацаа", "Төрөл"}

// WriteDOCX renders p as a DOCX document to w: title, metadata block, body
// paragraphs, the action-item table when items exist, and a generation
// footer.
func WriteDOCX(w io.Writer, p Protocol) error {
	doc := docx.New().WithDefaultTheme()

	// Title. Sizes are half-points: "32" is 16pt.
	doc.AddParagraph().AddText(p.Title).Size("32").Bold().Color(headingColor)

	// Metadata.
	doc.AddParagraph()
	doc.AddParagraph().AddText("Огноо: " + p.Date).Bold()
	doc.AddParagraph().AddText("Оролцогчид: " + strings.Join(p.Participants, ", "))
	if len(p.Entities) > 0 {
		doc.AddParagraph().AddText("Дурдагдсан: " + strings.Join(p.Entities, ", "))
	}
	doc.AddParagraph().AddText(separator)

	// Body.
	doc.AddParagraph().AddText("Хэлэлцсэн асуудал").Size("26").Bold()
	for _, line := range strings.Split(p.Body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		doc.AddParagraph().AddText(line).Size("22")
	}

	if len(p.Items) > 0 {
		addActionTable(doc, p.Items, p.Summary)
	}

	// Footer.
	doc.AddParagraph()
	doc.AddParagraph().AddText(separator)
	footer := fmt.Sprintf("Протокол автоматаар үүсгэгдсэн | %s", time.Now().Format("2006-01-02 15:04"))
	doc.AddParagraph().Justification("center").AddText(footer).Size("16").Italic().Color("808080")

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("protocol: write docx: %w", err)
	}
	return nil
}

// addActionTable appends the action-item table and its summary line.
func addActionTable(doc *docx.Docx, items []actions.Item, summary actions.Summary) {
	doc.AddParagraph().AddText("Ажил үүрэг ба шийдвэрүүд").Size("26").Bold()

	table := doc.AddTable(len(items)+1, len(actionTableHeaders), 0, nil)

	for i, h := range actionTableHeaders {
		table.TableRows[0].TableCells[i].AddParagraph().AddText(h).Bold().Size("22")
	}
	for r, it := range items {
		cells := table.TableRows[r+1].TableCells
		due := it.Due
		if !it.HasDeadline() {
			due = actions.DueUnknown
		}
		kind := "Ажил үүрэг"
		if it.Type == actions.TypeDecision {
			kind = "Шийдвэр"
		}
		for c, text := range []string{it.Who, it.Action, due, kind} {
			cells[c].AddParagraph().AddText(text).Size("20")
		}
	}

	doc.AddParagraph()
	doc.AddParagraph().AddText(fmt.Sprintf("Нийт: %d ажил үүрэг/шийдвэр", summary.Total)).Italic().Size("18")
}

// SaveDOCX writes the protocol to a timestamped file in dir and returns the
// full path.
func SaveDOCX(dir string, p Protocol) (string, error) {
	name := fmt.Sprintf("protocol_%s.docx", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("protocol: create %q: %w", path, err)
	}
	defer f.Close()

	if err := WriteDOCX(f, p); err != nil {
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("protocol: close %q: %w", path, err)
	}
	return path, nil
}
