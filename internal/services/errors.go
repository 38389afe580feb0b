package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrPatternMismatch = errors.New("pattern mismatch")
	ErrSidecarRequired = errors.New("sidecar metadata required")
	ErrCreationFailed  = errors.New("creation failed")
	ErrConfiguration   = errors.New("configuration error")
	ErrRemote          = errors.New("remote service error")
	ErrTransient       = errors.New("transient failure")
)

// Outcome classifies how a single ingestion ended for batch reporting.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeRejected means the file was refused before any remote mutation.
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an ingestion error to the outcome reported by batch runs.
// Validation-class failures abort before any remote call, so they count as
// rejections. Remote and creation failures are checked first since a remote
// 404 also matches ErrNotFound.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSucceeded
	case errors.Is(err, ErrCreationFailed), errors.Is(err, ErrRemote):
		return OutcomeFailed
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrPatternMismatch),
		errors.Is(err, ErrSidecarRequired),
		errors.Is(err, ErrNotFound):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
