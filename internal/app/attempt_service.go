package app

import (
	"context"
	"fmt"
	"log"

	"knowledge-check-service/internal/domain"
)

// AttemptService runs the validate -> score -> record pipeline for submissions.
type AttemptService struct {
	catalog   Catalog
	companies CompanyResolver
	attempts  AttemptRepository
	mirror    AnswerMirror
	access    access
	logger    *log.Logger
}

// AttemptServiceOption customizes an AttemptService.
type AttemptServiceOption func(*AttemptService)

// WithCompanyResolver replaces the catalog's quiz -> company lookup, typically with a cache.
func WithCompanyResolver(r CompanyResolver) AttemptServiceOption {
	return func(s *AttemptService) { s.companies = r }
}

// WithAttemptLogger sets the logger used for mirror failures.
func WithAttemptLogger(l *log.Logger) AttemptServiceOption {
	return func(s *AttemptService) { s.logger = l }
}

func NewAttemptService(catalog Catalog, attempts AttemptRepository, mirror AnswerMirror, authz Authorizer, opts ...AttemptServiceOption) *AttemptService {
	s := &AttemptService{
		catalog:   catalog,
		companies: catalog,
		attempts:  attempts,
		mirror:    mirror,
		access:    access{authz: authz},
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates, scores and stores one attempt of userID, then mirrors its answers.
func (s *AttemptService) Submit(ctx context.Context, userID int64, sub domain.AttemptSubmission) (domain.AttemptRecord, error) {
	companyID, err := s.companies.QuizCompanyID(ctx, sub.QuizID)
	if err != nil {
		return domain.AttemptRecord{}, err
	}
	if err := s.access.requireMember(ctx, userID, companyID); err != nil {
		return domain.AttemptRecord{}, err
	}

	validated, err := ValidateAttempt(ctx, s.catalog, sub)
	if err != nil {
		return domain.AttemptRecord{}, err
	}

	qids := questionIDs(validated.Questions)
	totalCorrect, err := s.catalog.CorrectAnswerCounts(ctx, qids)
	if err != nil {
		return domain.AttemptRecord{}, fmt.Errorf("count correct answers: %w", err)
	}
	result, err := ScoreAttempt(totalCorrect, qids, validated.Answers)
	if err != nil {
		return domain.AttemptRecord{}, err
	}

	attempt, err := s.attempts.CreateAttempt(ctx, domain.Attempt{
		QuizID:         sub.QuizID,
		UserID:         userID,
		Questions:      len(validated.Questions),
		CorrectAnswers: result.CorrectAnswers,
		Score:          result.Score,
	})
	if err != nil {
		return domain.AttemptRecord{}, fmt.Errorf("store attempt: %w", err)
	}

	// The mirror is best effort; the attempt is already committed.
	if s.mirror != nil {
		facts := make([]domain.AnswerFact, 0, len(validated.Answers))
		for _, a := range validated.Answers {
			facts = append(facts, domain.AnswerFact{
				QuizID:     sub.QuizID,
				UserID:     userID,
				CompanyID:  companyID,
				QuestionID: a.QuestionID,
				AnswerID:   a.ID,
				Correct:    a.Correct,
			})
		}
		if err := s.mirror.Mirror(ctx, facts); err != nil {
			s.logger.Printf("mirror attempt %d answers: %v", attempt.ID, err)
		}
	}

	return domain.NewAttemptRecord(attempt), nil
}
