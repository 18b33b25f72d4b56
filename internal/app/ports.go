package app

import (
	"context"
	"errors"
	"time"

	"knowledge-check-service/internal/domain"
)

// CompanyResolver maps a quiz to its owning company.
type CompanyResolver interface {
	QuizCompanyID(ctx context.Context, quizID int64) (int64, error)
}

// Catalog is the authoritative read model of quizzes, questions and answers.
type Catalog interface {
	CompanyResolver
	// QuizQuestions returns questions whose id is in questionIDs and that belong to quizID.
	QuizQuestions(ctx context.Context, quizID int64, questionIDs []int64) ([]domain.Question, error)
	// QuestionAnswers returns answers whose id is in answerIDs and whose question is in questionIDs.
	QuestionAnswers(ctx context.Context, questionIDs, answerIDs []int64) ([]domain.Answer, error)
	// CorrectAnswerCounts counts correct answers per question.
	CorrectAnswerCounts(ctx context.Context, questionIDs []int64) (map[int64]int, error)
}

// AttemptRepository persists attempts and answers aggregate queries over them.
type AttemptRepository interface {
	// CreateAttempt inserts the attempt atomically and returns it with ID and CreatedAt set.
	CreateAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error)
	ScoreStats(ctx context.Context, scope domain.Scope) (domain.ScoreStats, error)
	ScorePoints(ctx context.Context, scope domain.Scope) ([]domain.ScorePoint, error)
	LastAttemptsByQuiz(ctx context.Context, userID int64, companyID *int64) ([]domain.QuizTime, error)
	LastAttemptsByUser(ctx context.Context, userIDs []int64) ([]domain.UserTime, error)
	// LatestRecurring returns the newest attempt per (user, quiz) for quizzes with a frequency.
	LatestRecurring(ctx context.Context) ([]domain.LatestAttempt, error)
}

// AnswerMirror is the transient keyed store fed at submission time.
type AnswerMirror interface {
	Mirror(ctx context.Context, facts []domain.AnswerFact) error
}

// Authorizer answers company role questions; ErrNotFound when the user is not in the company.
type Authorizer interface {
	Role(ctx context.Context, userID, companyID int64) (domain.Role, error)
}

// MemberDirectory lists the users that belong to a company.
type MemberDirectory interface {
	CompanyMembers(ctx context.Context, companyID int64) ([]int64, error)
}

// Notifier dispatches one notification per outdated (user, quiz) attempt.
type Notifier interface {
	Notify(ctx context.Context, attempts []domain.Attempt) error
}

// Notifiers fans out to every notifier and joins their errors.
type Notifiers []Notifier

func (n Notifiers) Notify(ctx context.Context, attempts []domain.Attempt) error {
	var errs []error
	for _, notifier := range n {
		if err := notifier.Notify(ctx, attempts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clock returns the current time; tests swap it for a fixed one.
type Clock func() time.Time
