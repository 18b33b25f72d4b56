package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"knowledge-check-service/internal/app"
	"knowledge-check-service/internal/domain"
	"knowledge-check-service/internal/infra/memory"
)

// analyticsFixture mirrors the attempt history used across the analytics tests:
// user 1 owns company 1, user 2 is a member, company 2 is owned by user 5.
func analyticsFixture(t *testing.T) (*app.AnalyticsService, *memory.Store, time.Time) {
	t.Helper()
	store := memory.NewStore()
	memory.SeedDemo(store)
	store.SeedQuiz(domain.Quiz{ID: 3, CompanyID: 2})
	store.SetRole(2, 5, domain.RoleOwner)
	store.SetRole(2, 1, domain.RoleMember)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store.SeedAttempt(domain.Attempt{QuizID: 1, UserID: 1, Questions: 2, CorrectAnswers: 2, Score: 1, CreatedAt: base})
	store.SeedAttempt(domain.Attempt{QuizID: 1, UserID: 1, Questions: 2, CorrectAnswers: 1.5, Score: 0.75, CreatedAt: base.Add(time.Hour)})
	store.SeedAttempt(domain.Attempt{QuizID: 3, UserID: 1, Questions: 2, CorrectAnswers: 1.5, Score: 0.75, CreatedAt: base.Add(2 * time.Hour)})
	store.SeedAttempt(domain.Attempt{QuizID: 1, UserID: 2, Questions: 2, CorrectAnswers: 1, Score: 0.5, CreatedAt: base.Add(3 * time.Hour)})

	return app.NewAnalyticsService(store, store, store, store), store, base
}

func ptr(v int64) *int64 { return &v }

func TestAvgScoreScopes(t *testing.T) {
	service, _, _ := analyticsFixture(t)
	ctx := context.Background()

	self, err := service.AvgScore(ctx, 1, domain.Scope{UserID: ptr(1)})
	if err != nil {
		t.Fatalf("self avg: %v", err)
	}
	if self.TotalQuestions != 6 || self.TotalCorrectAnswers != 5 || self.AvgScore != 0.833 {
		t.Fatalf("unexpected self avg %+v", self)
	}
	if self.QuizID != nil || self.CompanyID != nil || *self.UserID != 1 {
		t.Fatalf("expected only user filter echoed, got %+v", self)
	}

	company, err := service.AvgScore(ctx, 5, domain.Scope{CompanyID: ptr(2)})
	if err != nil {
		t.Fatalf("company avg: %v", err)
	}
	if company.TotalQuestions != 2 || company.TotalCorrectAnswers != 1.5 || company.AvgScore != 0.75 {
		t.Fatalf("unexpected company avg %+v", company)
	}

	byQuiz, err := service.AvgScore(ctx, 1, domain.Scope{QuizID: ptr(1)})
	if err != nil {
		t.Fatalf("quiz avg: %v", err)
	}
	if byQuiz.TotalQuestions != 6 || byQuiz.TotalCorrectAnswers != 4.5 || byQuiz.AvgScore != 0.75 {
		t.Fatalf("unexpected quiz avg %+v", byQuiz)
	}
	if byQuiz.CompanyID == nil || *byQuiz.CompanyID != 1 || byQuiz.UserID != nil {
		t.Fatalf("expected quiz company echoed, got %+v", byQuiz)
	}

	both, err := service.AvgScore(ctx, 1, domain.Scope{UserID: ptr(1), CompanyID: ptr(1)})
	if err != nil {
		t.Fatalf("user+company avg: %v", err)
	}
	if both.TotalQuestions != 4 || both.TotalCorrectAnswers != 3.5 || both.AvgScore != 0.875 {
		t.Fatalf("unexpected user+company avg %+v", both)
	}
}

func TestAvgScoreAuthorization(t *testing.T) {
	service, _, _ := analyticsFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		caller int64
		scope  domain.Scope
		want   error
	}{
		{"member reads company", 2, domain.Scope{CompanyID: ptr(1)}, domain.ErrForbidden},
		{"foreign user without company", 1, domain.Scope{UserID: ptr(2)}, domain.ErrForbidden},
		{"unscoped", 1, domain.Scope{}, domain.ErrForbidden},
		{"outsider user in company", 1, domain.Scope{UserID: ptr(5), CompanyID: ptr(1)}, domain.ErrForbidden},
		{"unknown quiz", 1, domain.Scope{QuizID: ptr(100)}, domain.ErrNotFound},
		{"no attempts", 1, domain.Scope{UserID: ptr(3), CompanyID: ptr(1)}, domain.ErrNotFound},
		{"quiz outside company", 1, domain.Scope{QuizID: ptr(3), CompanyID: ptr(1)}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		_, err := service.AvgScore(ctx, tc.caller, tc.scope)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	got, err := service.AvgScore(ctx, 1, domain.Scope{UserID: ptr(2), CompanyID: ptr(1)})
	if err != nil {
		t.Fatalf("admin reads member: %v", err)
	}
	if got.AvgScore != 0.5 {
		t.Fatalf("unexpected member avg %+v", got)
	}
}

func TestScoresByTime(t *testing.T) {
	service, _, base := analyticsFixture(t)
	ctx := context.Background()

	series, err := service.ScoresByTime(ctx, 1, 1, nil)
	if err != nil {
		t.Fatalf("scores by time: %v", err)
	}
	if len(series) != 2 || series[0].QuizID != 1 || series[1].QuizID != 3 {
		t.Fatalf("unexpected series %+v", series)
	}
	if series[0].Result[0].AvgScore != 1 || series[0].Result[1].AvgScore != 0.875 {
		t.Fatalf("unexpected running avg %+v", series[0].Result)
	}
	if !series[0].Result[1].CreatedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected timestamps %+v", series[0].Result)
	}

	// The company only authorizes the read; quizzes of other companies stay in the series.
	scoped, err := service.ScoresByTime(ctx, 1, 1, ptr(2))
	if err != nil {
		t.Fatalf("scoped scores by time: %v", err)
	}
	if len(scoped) != 2 || scoped[0].QuizID != 1 || scoped[1].QuizID != 3 {
		t.Fatalf("expected every quiz of user 1, got %+v", scoped)
	}

	byAdmin, err := service.ScoresByTime(ctx, 5, 1, ptr(2))
	if err != nil {
		t.Fatalf("admin scores by time: %v", err)
	}
	if len(byAdmin) != 2 || len(byAdmin[0].Result) != 2 {
		t.Fatalf("expected full history for company 2 owner, got %+v", byAdmin)
	}

	if _, err := service.ScoresByTime(ctx, 2, 1, ptr(1)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected member to be forbidden, got %v", err)
	}

	empty, err := service.ScoresByTime(ctx, 3, 3, nil)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil series, got %v %v", empty, err)
	}
}

func TestMembersScoresByTime(t *testing.T) {
	service, _, _ := analyticsFixture(t)
	ctx := context.Background()

	series, err := service.MembersScoresByTime(ctx, 1, 1)
	if err != nil {
		t.Fatalf("members scores: %v", err)
	}
	if len(series) != 2 || series[0].UserID != 1 || series[1].UserID != 2 {
		t.Fatalf("unexpected series %+v", series)
	}
	if len(series[0].Result) != 2 || series[1].Result[0].AvgScore != 0.5 {
		t.Fatalf("unexpected results %+v", series)
	}

	if _, err := service.MembersScoresByTime(ctx, 2, 1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestLastAttempts(t *testing.T) {
	service, _, base := analyticsFixture(t)
	ctx := context.Background()

	mine, err := service.UserLastAttempts(ctx, 1, 1, nil)
	if err != nil {
		t.Fatalf("user last attempts: %v", err)
	}
	if len(mine) != 2 || mine[0].QuizID != 1 || !mine[0].CreatedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected last attempts %+v", mine)
	}

	members, err := service.MembersLastAttempt(ctx, 1, 1)
	if err != nil {
		t.Fatalf("members last attempt: %v", err)
	}
	// User 1's latest attempt is on a company 2 quiz; it still counts.
	if len(members) != 2 || !members[0].CreatedAt.Equal(base.Add(2*time.Hour)) || !members[1].CreatedAt.Equal(base.Add(3*time.Hour)) {
		t.Fatalf("unexpected members last attempt %+v", members)
	}

	if _, err := service.MembersLastAttempt(ctx, 2, 1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAvgScoreIsMeanOfAttemptScores(t *testing.T) {
	store := memory.NewStore()
	memory.SeedDemo(store)
	attempts := app.NewAttemptService(store, store, nil, store)
	analytics := app.NewAnalyticsService(store, store, store, store)
	ctx := context.Background()

	// Question 3 has two correct answers, so a full selection scores 0.5 with one correct answer.
	if _, err := attempts.Submit(ctx, 2, domain.AttemptSubmission{
		QuizID: 2, QuestionIDs: []int64{3}, AnswerIDs: [][]int64{{5, 6}},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	got, err := analytics.AvgScore(ctx, 2, domain.Scope{UserID: ptr(2), QuizID: ptr(2)})
	if err != nil {
		t.Fatalf("avg: %v", err)
	}
	if got.TotalQuestions != 1 || got.TotalCorrectAnswers != 1 || got.AvgScore != 0.5 {
		t.Fatalf("expected avg of scores 0.5, got %+v", got)
	}

	// A ratio of sums would report 1/4 here.
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store.SeedAttempt(domain.Attempt{QuizID: 1, UserID: 3, Questions: 1, CorrectAnswers: 1, Score: 1, CreatedAt: base})
	store.SeedAttempt(domain.Attempt{QuizID: 1, UserID: 3, Questions: 3, CorrectAnswers: 0, Score: 0, CreatedAt: base.Add(time.Hour)})
	mixed, err := analytics.AvgScore(ctx, 3, domain.Scope{UserID: ptr(3)})
	if err != nil {
		t.Fatalf("mixed avg: %v", err)
	}
	if mixed.TotalQuestions != 4 || mixed.TotalCorrectAnswers != 1 || mixed.AvgScore != 0.5 {
		t.Fatalf("expected mean 0.5 rather than 0.25, got %+v", mixed)
	}
}
