package errors

import (
	"errors"
	"fmt"
)

// ErrNotImplemented marks question variants that are declared but have no behavior yet.
var ErrNotImplemented = errors.New("not implemented")

// MalformedQuestionError is returned when a question definition is missing a
// structural field or carries an invalid variant payload.
type MalformedQuestionError struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *MalformedQuestionError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("malformed question %d (%s): %s %s", e.Index, e.ID, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed question %d: %s %s", e.Index, e.Field, e.Reason)
}

func NewMalformedQuestionError(index int, id, field, reason string) *MalformedQuestionError {
	return &MalformedQuestionError{
		Index:  index,
		ID:     id,
		Field:  field,
		Reason: reason,
	}
}

// InvalidAnswerError is returned when an answer violates its question's
// variant rules. The mutation must be rejected, never truncated.
type InvalidAnswerError struct {
	Index  int      `json:"index"`
	Values []string `json:"values"`
	Reason string   `json:"reason"`
	Err    error    `json:"-"`
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("invalid answer for question %d: %s", e.Index, e.Reason)
}

func (e *InvalidAnswerError) Unwrap() error {
	return e.Err
}

func NewInvalidAnswerError(index int, values []string, reason string) *InvalidAnswerError {
	return &InvalidAnswerError{
		Index:  index,
		Values: append([]string(nil), values...),
		Reason: reason,
	}
}

// FetchError wraps any transport or decode failure of a survey fetch.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("survey fetch failed (%s): %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsMalformedQuestion reports whether err carries a MalformedQuestionError.
func IsMalformedQuestion(err error) bool {
	var mqe *MalformedQuestionError
	return errors.As(err, &mqe)
}

// IsInvalidAnswer reports whether err carries an InvalidAnswerError.
func IsInvalidAnswer(err error) bool {
	var iae *InvalidAnswerError
	return errors.As(err, &iae)
}

// IsFetchFailure reports whether err carries a FetchError.
func IsFetchFailure(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
