package app

import (
	"context"
	"fmt"

	"knowledge-check-service/internal/domain"
)

// AnalyticsService answers read-only aggregate queries over attempt history.
type AnalyticsService struct {
	attempts  AttemptRepository
	companies CompanyResolver
	members   MemberDirectory
	access    access
}

func NewAnalyticsService(attempts AttemptRepository, companies CompanyResolver, members MemberDirectory, authz Authorizer) *AnalyticsService {
	return &AnalyticsService{
		attempts:  attempts,
		companies: companies,
		members:   members,
		access:    access{authz: authz},
	}
}

// AvgScore aggregates attempts matching every non-nil filter in scope.
func (s *AnalyticsService) AvgScore(ctx context.Context, callerID int64, scope domain.Scope) (domain.ScoreAvg, error) {
	// A quiz filter without a company filter is authorized against the quiz's company.
	authCompany := scope.CompanyID
	if authCompany == nil && scope.QuizID != nil {
		companyID, err := s.companies.QuizCompanyID(ctx, *scope.QuizID)
		if err != nil {
			return domain.ScoreAvg{}, err
		}
		authCompany = &companyID
	}
	if err := s.access.requireScope(ctx, callerID, scope.UserID, authCompany); err != nil {
		return domain.ScoreAvg{}, err
	}

	stats, err := s.attempts.ScoreStats(ctx, scope)
	if err != nil {
		return domain.ScoreAvg{}, err
	}
	if stats.Attempts == 0 {
		return domain.ScoreAvg{}, fmt.Errorf("no attempts: %w", domain.ErrNotFound)
	}
	return domain.ScoreAvg{
		QuizID:              scope.QuizID,
		UserID:              scope.UserID,
		CompanyID:           authCompany,
		TotalQuestions:      stats.TotalQuestions,
		TotalCorrectAnswers: domain.RoundScore(stats.TotalCorrectAnswers),
		AvgScore:            domain.RoundScore(stats.AvgScore),
	}, nil
}

// ScoresByTime returns one running-average series per quiz the user attempted.
// companyID only gates access; the series covers every quiz the user took.
func (s *AnalyticsService) ScoresByTime(ctx context.Context, callerID, userID int64, companyID *int64) ([]domain.QuizScores, error) {
	if err := s.access.requireScope(ctx, callerID, &userID, companyID); err != nil {
		return nil, err
	}
	points, err := s.attempts.ScorePoints(ctx, domain.Scope{UserID: &userID})
	if err != nil {
		return nil, err
	}
	series := runningAverages(points, byQuiz)
	out := make([]domain.QuizScores, len(series))
	for i, sr := range series {
		out[i] = domain.QuizScores{QuizID: sr.key, Result: sr.points}
	}
	return out, nil
}

// MembersScoresByTime returns one running-average series per user over the company's quizzes.
func (s *AnalyticsService) MembersScoresByTime(ctx context.Context, callerID, companyID int64) ([]domain.UserScores, error) {
	if err := s.access.requireAdmin(ctx, callerID, companyID); err != nil {
		return nil, err
	}
	points, err := s.attempts.ScorePoints(ctx, domain.Scope{CompanyID: &companyID})
	if err != nil {
		return nil, err
	}
	series := runningAverages(points, byUser)
	out := make([]domain.UserScores, len(series))
	for i, sr := range series {
		out[i] = domain.UserScores{UserID: sr.key, Result: sr.points}
	}
	return out, nil
}

// UserLastAttempts returns the latest attempt time per quiz for userID.
func (s *AnalyticsService) UserLastAttempts(ctx context.Context, callerID, userID int64, companyID *int64) ([]domain.QuizTime, error) {
	if err := s.access.requireScope(ctx, callerID, &userID, companyID); err != nil {
		return nil, err
	}
	return s.attempts.LastAttemptsByQuiz(ctx, userID, companyID)
}

// MembersLastAttempt returns, for every company member, their latest attempt on any quiz.
func (s *AnalyticsService) MembersLastAttempt(ctx context.Context, callerID, companyID int64) ([]domain.UserTime, error) {
	if err := s.access.requireAdmin(ctx, callerID, companyID); err != nil {
		return nil, err
	}
	members, err := s.members.CompanyMembers(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []domain.UserTime{}, nil
	}
	return s.attempts.LastAttemptsByUser(ctx, members)
}
