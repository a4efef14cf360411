package integration

import (
	"context"
	"errors"

	"github.com/openship/backend/internal/domain/shared"
)

// CodeInternal is reported for failures that carry no domain code
const CodeInternal = "INTERNAL_ERROR"

// UnitError is the failure of one shop or channel inside a multi-unit
// operation. Siblings are unaffected.
type UnitError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *UnitError) Error() string { return e.Message }

// NewUnitError classifies err for reporting on a single unit
func NewUnitError(err error) *UnitError {
	if err == nil {
		return nil
	}
	return &UnitError{Code: ErrorCode(err), Message: err.Error()}
}

// ErrorCode returns the stable code for err
func ErrorCode(err error) string {
	var coder shared.Coder
	if errors.As(err, &coder) {
		return coder.ErrorCode()
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return shared.CodeUpstreamFailed
	}
	return CodeInternal
}
