package app

import (
	"fmt"

	"knowledge-check-service/internal/domain"
)

// AttemptScore is the unrounded outcome of scoring one attempt.
type AttemptScore struct {
	// CorrectAnswers is the sum of per-question partial credit.
	CorrectAnswers float64
	// Score is CorrectAnswers normalized by the number of correct answers available.
	Score float64
}

// ScoreAttempt grades validated answers with partial credit. For each question q:
//
//	credit(q) = (correct_submitted/total_submitted) * (correct_submitted/total_correct)
//
// and the attempt score is the sum of credits over the sum of total_correct.
func ScoreAttempt(totalCorrect map[int64]int, questionIDs []int64, answers []domain.Answer) (AttemptScore, error) {
	submitted := make(map[int64]int, len(questionIDs))
	correctSubmitted := make(map[int64]int, len(questionIDs))
	for _, a := range answers {
		submitted[a.QuestionID]++
		if a.Correct {
			correctSubmitted[a.QuestionID]++
		}
	}

	var credit float64
	var available int
	for _, qid := range questionIDs {
		tc := totalCorrect[qid]
		if tc == 0 {
			return AttemptScore{}, fmt.Errorf("question %d: %w", qid, domain.ErrNoCorrectAnswers)
		}
		ts := submitted[qid]
		if ts == 0 {
			return AttemptScore{}, domain.NewValidationError(domain.ReasonEmptyAnswers, qid)
		}
		cs := float64(correctSubmitted[qid])
		credit += (cs / float64(ts)) * (cs / float64(tc))
		available += tc
	}
	if available == 0 {
		return AttemptScore{}, domain.NewValidationError(domain.ReasonEmptyAnswers)
	}

	return AttemptScore{
		CorrectAnswers: credit,
		Score:          credit / float64(available),
	}, nil
}
