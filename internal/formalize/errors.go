package formalize

import (
	"fmt"
	"strings"
)

// QualityError reports that both generation attempts for a chunk were
// rejected by the quality gate. Violations holds the second attempt's
// findings, the ones the caller can act on.
type QualityError struct {
	// Chunk is the zero-based index of the rejected chunk.
	Chunk int

	// Violations are the gate findings of the final attempt.
	Violations []Violation
}

func (e *QualityError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("formalize: chunk %d rejected after retry: %s",
		e.Chunk, strings.Join(parts, "; "))
}
