package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a quiz, membership or aggregate does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller lacks the required company role.
	ErrForbidden = errors.New("action not allowed")
	// ErrBadRequest classifies structurally invalid submissions.
	ErrBadRequest = errors.New("bad request")
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrNoCorrectAnswers indicates a scored question was authored without a correct answer.
	ErrNoCorrectAnswers = errors.New("question has no correct answers")
)

// ValidationReason enumerates why a submission was rejected.
type ValidationReason int

const (
	ReasonLengthMismatch ValidationReason = iota + 1
	ReasonDuplicateQuestion
	ReasonEmptyAnswers
	ReasonForeignQuestion
	ReasonForeignOrDuplicateAnswer
	ReasonAnswerQuestionMismatch
)

func (r ValidationReason) String() string {
	switch r {
	case ReasonLengthMismatch:
		return "length of answer_ids must match length of question_ids"
	case ReasonDuplicateQuestion:
		return "duplicated question ids"
	case ReasonEmptyAnswers:
		return "need at least one answer per question"
	case ReasonForeignQuestion:
		return "some question ids don't belong to this quiz, or you are missing answers for some questions"
	case ReasonForeignOrDuplicateAnswer:
		return "some submitted answers don't belong to their question, or duplicated answers"
	case ReasonAnswerQuestionMismatch:
		return "some submitted answers don't belong to their question"
	default:
		return "invalid submission"
	}
}

// ValidationError rejects a submission. IDs carries the offending ids when known.
type ValidationError struct {
	Reason ValidationReason
	IDs    []int64
}

func NewValidationError(reason ValidationReason, ids ...int64) *ValidationError {
	return &ValidationError{Reason: reason, IDs: ids}
}

func (e *ValidationError) Error() string {
	return e.Reason.String()
}

// Is makes every ValidationError match ErrBadRequest.
func (e *ValidationError) Is(target error) bool {
	return target == ErrBadRequest
}
