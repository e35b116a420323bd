package types

import (
	"errors"
	"fmt"
)

// Error kinds shared by the config loader, the planner and the exchange client.
// Callers match them with errors.Is.
var (
	ErrConfig           = errors.New("config error")
	ErrQuoteUnavailable = errors.New("quote unavailable")
	ErrSubmission       = errors.New("submission failure")
	ErrConfirmation     = errors.New("confirmation failure")
)

// Classify wraps err with kind unless it already carries one of the error kinds
func Classify(kind error, err error) error {
	if err == nil {
		return nil
	}
	for _, k := range []error{ErrConfig, ErrQuoteUnavailable, ErrSubmission, ErrConfirmation} {
		if errors.Is(err, k) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", kind, err)
}
