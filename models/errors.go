package models

import "errors"

// ErrNoQuestions is returned by the question bank when a game mode has no
// questions to draw from. Starting a round is impossible until the mode is
// provisioned, so callers should surface this unchanged.
var ErrNoQuestions = errors.New("no questions available for this game mode")

// ErrNoCelebrityAnswers is returned when decoy mode is enabled but the mode
// has no celebrity answers provisioned at all.
var ErrNoCelebrityAnswers = errors.New("no celebrity answers available for this game mode")

// InvalidActionError reports a game operation attempted from the wrong state
// or with a failed precondition. The game is left untouched; the caller can
// correct the request and retry.
type InvalidActionError struct {
	Reason string
}

func (e *InvalidActionError) Error() string {
	return e.Reason
}

func newInvalidAction(reason string) error {
	return &InvalidActionError{Reason: reason}
}

// IsInvalidAction reports whether err is an InvalidActionError.
func IsInvalidAction(err error) bool {
	var invalid *InvalidActionError
	return errors.As(err, &invalid)
}
