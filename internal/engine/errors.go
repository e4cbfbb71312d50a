package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/auditcase/internal/validation"
)

// ErrValidationExhausted is the fatal outcome of a repair loop that ran out of attempts.
var ErrValidationExhausted = errors.New("validation exhausted")

// ExhaustedError carries the issues still unresolved after the last attempt.
type ExhaustedError struct {
	Attempts int
	Issues   []validation.Issue
}

func (e *ExhaustedError) Error() string {
	codes := make([]string, 0, len(e.Issues))
	for _, c := range validation.Codes(e.Issues) {
		codes = append(codes, c.String())
	}

	return fmt.Sprintf("%s after %d attempts: %s", ErrValidationExhausted, e.Attempts, strings.Join(codes, ", "))
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrValidationExhausted
}
