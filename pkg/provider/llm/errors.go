package llm

import "errors"

// ErrModelNotFound indicates the backend is reachable but the requested
// model identifier is unknown (e.g. the model has not been pulled).
// Remediation is operational, not programmatic: install the model.
var ErrModelNotFound = errors.New("llm: model not found")

// ErrUnavailable indicates the backend could not be reached at all
// (connection refused, DNS failure, server down).
var ErrUnavailable = errors.New("llm: service unavailable")

// IsSetupError reports whether err is one of the two setup-problem classes
// that the pipeline surfaces immediately without consuming its retry budget.
func IsSetupError(err error) bool {
	return errors.Is(err, ErrModelNotFound) || errors.Is(err, ErrUnavailable)
}

// ErrorKind classifies a provider error for metric labelling: "setup" for
// the two setup-problem classes, "transport" for everything else.
func ErrorKind(err error) string {
	if IsSetupError(err) {
		return "setup"
	}
	return "transport"
}
