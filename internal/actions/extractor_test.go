package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/munkhbat-dev/protokol/pkg/provider/llm"
	"github.com/munkhbat-dev/protokol/pkg/provider/llm/mock"
)

const goodOutput = `[
  {"who": "Анна", "action": "тайлан илгээх", "due": "даваа гараг", "type": "action", "confidence": 0.9},
  {"who": "Хурлын шийдвэр", "action": "эцсийн хувилбарыг илгээх", "due": "ирэх долоо хоног", "type": "decision", "confidence": 0.95}
]`

func TestExtractValidItems(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Results: []mock.Result{
		{Response: &llm.CompletionResponse{Content: "Үр дүн:\n" + goodOutput + "\nДууслаа."}},
	}}
	e := NewExtractor(p, nil)

	items, err := e.Extract(context.Background(), testProtocol)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Who != "Анна" || items[0].Type != TypeAction {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].Who != WhoDecision || items[1].Type != TypeDecision {
		t.Errorf("items[1] = %+v", items[1])
	}
	if p.CallCount() != 1 {
		t.Errorf("provider called %d times, want 1", p.CallCount())
	}
}

func TestExtractDiscardsInvalidRecords(t *testing.T) {
	t.Parallel()

	mixed := `[
  {"who": "Анна", "action": "тайлан илгээх", "due": "даваа гараг", "type": "action", "confidence": 0.9},
  {"who": "", "action": "ажил хийх зүйл", "type": "action", "confidence": 0.9},
  {"who": "Батбаяр", "action": "огт дурдаагүй ажил", "type": "action", "confidence": 0.9}
]`
	p := &mock.Provider{Results: []mock.Result{
		{Response: &llm.CompletionResponse{Content: mixed}},
	}}
	e := NewExtractor(p, nil)

	items, err := e.Extract(context.Background(), testProtocol)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(items) != 1 || items[0].Who != "Анна" {
		t.Errorf("items = %+v, want only the Анна record", items)
	}
}

func TestExtractRetriesOnSchemaFailure(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Results: []mock.Result{
		{Response: &llm.CompletionResponse{Content: "Уучлаарай, энд JSON байхгүй."}},
		{Response: &llm.CompletionResponse{Content: goodOutput}},
	}}
	e := NewExtractor(p, nil)

	items, err := e.Extract(context.Background(), testProtocol)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
	if p.CallCount() != 2 {
		t.Fatalf("provider called %d times, want 2", p.CallCount())
	}
	if !strings.Contains(p.Calls[1].Req.Messages[0].Content, "АНХААРУУЛГА") {
		t.Error("retry prompt lacks corrective addendum")
	}
	if got := p.Calls[0].Req.Sampling.Temperature; got != 0.2 {
		t.Errorf("first attempt temperature = %v, want 0.2", got)
	}
	if got := p.Calls[1].Req.Sampling.Temperature; got != 0.05 {
		t.Errorf("retry temperature = %v, want 0.05", got)
	}
}

func TestExtractEmptyArrayMeansNoItems(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Results: []mock.Result{
		{Response: &llm.CompletionResponse{Content: "[]"}},
	}}
	e := NewExtractor(p, nil)

	items, err := e.Extract(context.Background(), testProtocol)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %+v, want none", items)
	}
	if p.CallCount() != 1 {
		t.Errorf("provider called %d times, want 1 (empty array is not a failure)", p.CallCount())
	}
}

func TestExtractFailsAfterSecondSchemaFailure(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Results: []mock.Result{
		{Response: &llm.CompletionResponse{Content: "текст"}},
		{Response: &llm.CompletionResponse{Content: "{} биш array"}},
	}}
	e := NewExtractor(p, nil)

	_, err := e.Extract(context.Background(), testProtocol)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *SchemaError", err)
	}
	if p.CallCount() != 2 {
		t.Errorf("provider called %d times, want exactly 2", p.CallCount())
	}
}

func TestExtractAllRecordsInvalid(t *testing.T) {
	t.Parallel()

	bad := `[{"who": "Батбаяр", "action": "огт дурдаагүй ажил", "type": "action", "confidence": 0.9}]`
	p := &mock.Provider{Results: []mock.Result{
		{Response: &llm.CompletionResponse{Content: bad}},
		{Response: &llm.CompletionResponse{Content: bad}},
	}}
	e := NewExtractor(p, nil)

	_, err := e.Extract(context.Background(), testProtocol)
	var ne *NoValidItemsError
	if !errors.As(err, &ne) {
		t.Fatalf("error = %v, want *NoValidItemsError", err)
	}
	if ne.Total != 1 {
		t.Errorf("Total = %d, want 1", ne.Total)
	}
}

func TestExtractTransportErrorSkipsRetry(t *testing.T) {
	t.Parallel()

	transportErr := fmt.Errorf("%w: connection refused", llm.ErrUnavailable)
	p := &mock.Provider{Results: []mock.Result{{Err: transportErr}}}
	e := NewExtractor(p, nil)

	_, err := e.Extract(context.Background(), testProtocol)
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if p.CallCount() != 1 {
		t.Errorf("provider called %d times, want 1", p.CallCount())
	}
}
