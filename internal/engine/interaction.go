package engine

import "log"

// InteractionError marks a failed best-effort UI interaction (consent
// clicking, question filling). Callers that can proceed without it discard
// the error explicitly via Discard, keeping the best-effort intent visible
// in code instead of hidden in a bare catch-all.
type InteractionError struct {
	Op  string
	Err error
}

func (e *InteractionError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *InteractionError) Unwrap() error {
	return e.Err
}

// Discard logs a non-fatal interaction failure and moves on.
func Discard(err *InteractionError) {
	if err != nil {
		log.Printf("ℹ️ Best-effort interaction skipped (%s): %v", err.Op, err.Err)
	}
}
