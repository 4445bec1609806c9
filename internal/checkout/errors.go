package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart is returned when a submission arrives for a cart with no lines.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrSubmissionInProgress is returned while another submission for the same session or
	// idempotency key is still processing.
	ErrSubmissionInProgress = errors.New("checkout: submission already in progress")
	// ErrSubmissionFailed matches every *SubmissionError.
	ErrSubmissionFailed = errors.New("checkout: submission failed")
)

// Submission stages reported by SubmissionError.
const (
	StageClaim      = "claim"
	StageProcessing = "processing"
)

// SubmissionError is a failed checkout attempt. The cart is left untouched, so the client may
// retry with the same idempotency key.
type SubmissionError struct {
	Stage string
	Err   error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("checkout %s: %v", e.Stage, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool { return target == ErrSubmissionFailed }

// Retryable is always true: a failed submission never clears the cart.
func (e *SubmissionError) Retryable() bool { return true }
