package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/munkhbat-dev/protokol/internal/observe"
	"github.com/munkhbat-dev/protokol/pkg/provider/llm"
)

// taskExtract tags extraction attempts in metrics and logs.
const taskExtract = "extract_actions"

// extractSystemPrompt instructs the model to emit a bare JSON array of
// action-item records.
const extractSystemPrompt = `Та протоколоос ажил үүрэг, шийдвэр гаргадаг мэргэжилтэн.

ОЛОХ ЗҮЙЛС:
1. ХЭН - Хариуцагч (нэр)
2. ЮУ - Хийх ажил
3. ХЭЗЭЭ - Хугацаа (даваа гараг, ирэх долоо хоног гэх мэт)
4. ТӨРӨЛ - "action" эсвэл "decision"

JSON ФОРМАТ (ЗӨВХӨН ЭНЭ):
[
    {
        "who": "Хариуцагч нэр",
        "action": "Хийх ажлын тодорхойлолт",
        "due": "Хугацаа буюу 'Хугацаа заагаагүй'",
        "type": "action эсвэл decision",
        "confidence": 0.8
    }
]

ЖИШЭЭ:

Текст: "Анна: Би draft даваа гарагт илгээнэ."
JSON:
[{"who": "Анна", "action": "draft илгээх", "due": "даваа гараг", "type": "action", "confidence": 0.9}]

Текст: "Тогтоол: Ирэх долоо хоногт дуусгах."
JSON:
[{"who": "Хурлын шийдвэр", "action": "Ажлыг дуусгах", "due": "ирэх долоо хоног", "type": "decision", "confidence": 0.95}]

ЧУХАЛ:
- Зөвхөн JSON array буцаа
- Тодорхой хариуцагч, ажил байхгүй бол ОРХИ
- "Тогтоол:", "Шийдвэр:" -> type: "decision"
- Англи хэл ашиглахгүй
- Нэмэлт тайлбар бичихгүй`

// retryAddendum is appended to the retry prompt after a schema failure.
const retryAddendum = "АНХААРУУЛГА: Зөвхөн хүчинтэй JSON array буцаа, өөр юу ч бичихгүй!"

// jsonArray locates the outermost bracketed array in model output that may
// be wrapped in prose or code fences.
var jsonArray = regexp.MustCompile(`(?s)\[.*\]`)

// SchemaError reports that the model output carried no parseable JSON array
// of records.
type SchemaError struct {
	// Detail says what failed: no array found, or the decode error.
	Detail string

	// Output is a truncated copy of the offending model output.
	Output string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("actions: model output is not a record array: %s", e.Detail)
}

// NoValidItemsError reports that the model returned records but every one of
// them failed validation.
type NoValidItemsError struct {
	// Total is the number of records the model returned.
	Total int
}

func (e *NoValidItemsError) Error() string {
	return fmt.Sprintf("actions: all %d extracted records failed validation", e.Total)
}

// extractSampling keeps extraction nearly deterministic;
// extractRetrySampling tightens the screw further after a schema failure.
var (
	extractSampling = llm.SamplingConfig{
		Temperature: 0.2,
		MaxTokens:   2000,
	}
	extractRetrySampling = llm.SamplingConfig{
		Temperature: 0.05,
		MaxTokens:   2000,
	}
)

// Extractor pulls action items out of cleaned transcript text. Safe for
// concurrent use.
type Extractor struct {
	provider llm.Provider
	metrics  *observe.Metrics
}

// NewExtractor creates an Extractor. metrics may be nil, in which case the
// package-level default instruments are used.
func NewExtractor(provider llm.Provider, metrics *observe.Metrics) *Extractor {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Extractor{provider: provider, metrics: metrics}
}

// Extract asks the model for action items in the given transcript and
// returns the records that survive validation, in model output order.
//
// An empty array passes through as an empty result. A schema failure (no
// JSON array, or a non-empty array where every record fails validation)
// earns exactly one retry with tightened sampling and a corrective addendum;
// transport errors propagate immediately and never consume the retry.
func (e *Extractor) Extract(ctx context.Context, transcript string) ([]Item, error) {
	ctx, span := observe.StartSpan(ctx, "actions.extract")
	defer span.End()

	items, err := e.attempt(ctx, transcript, extractSampling, "", 1)
	if err == nil {
		return items, nil
	}
	if !retryable(err) {
		return nil, err
	}

	observe.Logger(ctx).Warn("action extraction failed, retrying with tightened sampling",
		slog.String("error", err.Error()))

	return e.attempt(ctx, transcript, extractRetrySampling, "\n\n"+retryAddendum, 2)
}

// retryable reports whether the error is a quality failure worth one more
// attempt, as opposed to a transport or setup problem.
func retryable(err error) bool {
	var se *SchemaError
	var ne *NoValidItemsError
	return errors.As(err, &se) || errors.As(err, &ne)
}

func (e *Extractor) attempt(ctx context.Context, transcript string, sampling llm.SamplingConfig, addendum string, n int) ([]Item, error) {
	userPrompt := fmt.Sprintf(`Энэ текстээс ажил үүрэг, шийдвэр гарга:

%s

Зөвхөн JSON array буцаа.`, transcript) + addendum

	start := time.Now()
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: extractSystemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: userPrompt}},
		Sampling:     sampling,
	})
	elapsed := time.Since(start)

	if err != nil {
		e.metrics.RecordAttempt(ctx, taskExtract, n, "error")
		e.metrics.RecordProviderError(ctx, taskExtract, llm.ErrorKind(err))
		return nil, err
	}

	items, err := parseItems(resp.Content)
	if err != nil {
		e.metrics.RecordAttempt(ctx, taskExtract, n, "rejected")
		e.metrics.GenerationDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
			observe.Attr("task", taskExtract), observe.Attr("status", "rejected")))
		return nil, err
	}

	log := observe.Logger(ctx)
	var valid []Item
	for _, it := range items {
		ok, reason := validate(it, transcript)
		if !ok {
			log.Warn("discarding invalid action record",
				slog.String("reason", reason),
				slog.String("who", it.Who))
			e.metrics.ActionItems.Add(ctx, 1, metric.WithAttributes(observe.Attr("status", "discarded")))
			continue
		}
		e.metrics.ActionItems.Add(ctx, 1, metric.WithAttributes(observe.Attr("status", "valid")))
		valid = append(valid, it)
	}

	// An empty array is a legitimate answer: the model found nothing to
	// extract. Only reject when records came back and none survived.
	if len(items) > 0 && len(valid) == 0 {
		e.metrics.RecordAttempt(ctx, taskExtract, n, "rejected")
		return nil, &NoValidItemsError{Total: len(items)}
	}

	e.metrics.RecordAttempt(ctx, taskExtract, n, "accepted")
	e.metrics.GenerationDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		observe.Attr("task", taskExtract), observe.Attr("status", "accepted")))
	return valid, nil
}

// parseItems locates and decodes the JSON record array in raw model output.
func parseItems(content string) ([]Item, error) {
	match := jsonArray.FindString(content)
	if match == "" {
		return nil, &SchemaError{Detail: "no JSON array found", Output: truncate(content, 200)}
	}

	var items []Item
	if err := json.Unmarshal([]byte(match), &items); err != nil {
		return nil, &SchemaError{Detail: err.Error(), Output: truncate(match, 200)}
	}
	return items, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
