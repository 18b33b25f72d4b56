package app

import (
	"context"

	"knowledge-check-service/internal/domain"
)

// ValidatedAttempt holds the catalog rows backing a structurally valid submission.
type ValidatedAttempt struct {
	Questions []domain.Question
	// Answers follow catalog order, not submission order.
	Answers []domain.Answer
}

// ValidateAttempt checks that every question belongs to the quiz and every answer to its
// claimed question, with no duplicated or missing entries. Failures are *domain.ValidationError.
func ValidateAttempt(ctx context.Context, catalog Catalog, sub domain.AttemptSubmission) (ValidatedAttempt, error) {
	if len(sub.AnswerIDs) != len(sub.QuestionIDs) {
		return ValidatedAttempt{}, domain.NewValidationError(domain.ReasonLengthMismatch)
	}
	if dups := duplicates(sub.QuestionIDs); len(dups) > 0 {
		return ValidatedAttempt{}, domain.NewValidationError(domain.ReasonDuplicateQuestion, dups...)
	}

	var flat []int64
	for i, ids := range sub.AnswerIDs {
		if len(ids) == 0 {
			return ValidatedAttempt{}, domain.NewValidationError(domain.ReasonEmptyAnswers, sub.QuestionIDs[i])
		}
		flat = append(flat, ids...)
	}

	questions, err := catalog.QuizQuestions(ctx, sub.QuizID, sub.QuestionIDs)
	if err != nil {
		return ValidatedAttempt{}, err
	}
	if len(questions) != len(sub.QuestionIDs) {
		return ValidatedAttempt{}, domain.NewValidationError(domain.ReasonForeignQuestion,
			missing(sub.QuestionIDs, questionIDs(questions))...)
	}

	answers, err := catalog.QuestionAnswers(ctx, questionIDs(questions), flat)
	if err != nil {
		return ValidatedAttempt{}, err
	}
	if len(answers) != len(flat) {
		return ValidatedAttempt{}, domain.NewValidationError(domain.ReasonForeignOrDuplicateAnswer,
			append(duplicates(flat), missing(flat, answerIDs(answers))...)...)
	}

	claimed := make(map[int64]map[int64]struct{}, len(sub.QuestionIDs))
	for i, qid := range sub.QuestionIDs {
		set := make(map[int64]struct{}, len(sub.AnswerIDs[i]))
		for _, aid := range sub.AnswerIDs[i] {
			set[aid] = struct{}{}
		}
		claimed[qid] = set
	}
	var misplaced []int64
	for _, a := range answers {
		if _, ok := claimed[a.QuestionID][a.ID]; !ok {
			misplaced = append(misplaced, a.ID)
		}
	}
	if len(misplaced) > 0 {
		return ValidatedAttempt{}, domain.NewValidationError(domain.ReasonAnswerQuestionMismatch, misplaced...)
	}

	return ValidatedAttempt{Questions: questions, Answers: answers}, nil
}

func duplicates(ids []int64) []int64 {
	seen := make(map[int64]int, len(ids))
	var out []int64
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			out = append(out, id)
		}
	}
	return out
}

// missing returns the ids in want that are absent from got.
func missing(want, got []int64) []int64 {
	have := make(map[int64]struct{}, len(got))
	for _, id := range got {
		have[id] = struct{}{}
	}
	var out []int64
	for _, id := range want {
		if _, ok := have[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func questionIDs(questions []domain.Question) []int64 {
	ids := make([]int64, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func answerIDs(answers []domain.Answer) []int64 {
	ids := make([]int64, len(answers))
	for i, a := range answers {
		ids[i] = a.ID
	}
	return ids
}
