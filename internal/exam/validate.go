package exam

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidJSON is returned by Decode when the input is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON format")

// ValidationError describes the first structural problem found in an exam.
// Index is -1 for exam-level problems.
type ValidationError struct {
	Index   int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid exam format: %s", e.Message)
	}
	return fmt.Sprintf("invalid question format at index %d: %s %s", e.Index, e.Field, e.Message)
}

// Decode reads and validates an exam in the player's JSON layout.
func Decode(r io.Reader) (*Exam, error) {
	var e Exam
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := Validate(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Validate checks that an exam can be loaded by the quiz player.
func Validate(e *Exam) error {
	if e == nil || e.Title == "" {
		return &ValidationError{Index: -1, Field: "title", Message: "missing title"}
	}
	if e.Questions == nil {
		return &ValidationError{Index: -1, Field: "questions", Message: "missing questions"}
	}

	for i, q := range e.Questions {
		switch {
		case q.ID == 0:
			return &ValidationError{Index: i, Field: "id", Message: "is missing"}
		case q.Type != TypeSingle && q.Type != TypeMultiple && q.Type != TypeText:
			return &ValidationError{Index: i, Field: "type", Message: fmt.Sprintf("%q is not a known type", q.Type)}
		case q.Prompt == "":
			return &ValidationError{Index: i, Field: "question", Message: "is empty"}
		case q.Options == nil:
			return &ValidationError{Index: i, Field: "options", Message: "is missing"}
		case q.Correct == nil:
			return &ValidationError{Index: i, Field: "correct", Message: "is missing"}
		}
		for _, c := range q.Correct {
			if c < 0 || c >= len(q.Options) {
				return &ValidationError{
					Index:   i,
					Field:   "correct",
					Message: fmt.Sprintf("index %d is outside %d options", c, len(q.Options)),
				}
			}
		}
	}
	return nil
}
