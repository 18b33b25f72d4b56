package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"knowledge-check-service/internal/domain"
)

// Store is an in-process catalog, attempt log and membership directory.
// It backs tests and the demo server when no Postgres URL is configured.
type Store struct {
	mu    sync.RWMutex
	clock func() time.Time

	quizzes   map[int64]domain.Quiz
	questions map[int64]domain.Question
	answers   map[int64]domain.Answer
	roles     map[int64]map[int64]domain.Role // company -> user -> role
	attempts  []domain.Attempt
	nextID    int64
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock stamps new attempts with clock instead of time.Now.
func NewStoreWithClock(clock func() time.Time) *Store {
	return &Store{
		clock:     clock,
		quizzes:   make(map[int64]domain.Quiz),
		questions: make(map[int64]domain.Question),
		answers:   make(map[int64]domain.Answer),
		roles:     make(map[int64]map[int64]domain.Role),
	}
}

// SeedQuiz stores a quiz along with its nested questions and answers.
// Question and answer parents are taken from the nesting.
func (s *Store) SeedQuiz(q domain.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, question := range q.Questions {
		question.QuizID = q.ID
		for _, a := range question.Answers {
			a.QuestionID = question.ID
			s.answers[a.ID] = a
		}
		question.Answers = nil
		s.questions[question.ID] = question
	}
	q.Questions = nil
	s.quizzes[q.ID] = q
}

// SetRole adds userID to companyID with role.
func (s *Store) SetRole(companyID, userID int64, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roles[companyID] == nil {
		s.roles[companyID] = make(map[int64]domain.Role)
	}
	s.roles[companyID][userID] = role
}

// SeedAttempt appends an attempt with an explicit CreatedAt.
func (s *Store) SeedAttempt(a domain.Attempt) domain.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = s.nextID
	s.attempts = append(s.attempts, a)
	return a
}

func (s *Store) QuizCompanyID(_ context.Context, quizID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[quizID]
	if !ok {
		return 0, fmt.Errorf("%w: %d", domain.ErrQuizNotFound, quizID)
	}
	return q.CompanyID, nil
}

func (s *Store) QuizQuestions(_ context.Context, quizID int64, questionIDs []int64) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Question
	for _, id := range uniqueSorted(questionIDs) {
		if q, ok := s.questions[id]; ok && q.QuizID == quizID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *Store) QuestionAnswers(_ context.Context, questionIDs, answerIDs []int64) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parents := toSet(questionIDs)
	var out []domain.Answer
	for _, id := range uniqueSorted(answerIDs) {
		if a, ok := s.answers[id]; ok && parents[a.QuestionID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) CorrectAnswerCounts(_ context.Context, questionIDs []int64) (map[int64]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parents := toSet(questionIDs)
	counts := make(map[int64]int, len(parents))
	for _, a := range s.answers {
		if a.Correct && parents[a.QuestionID] {
			counts[a.QuestionID]++
		}
	}
	return counts, nil
}

func (s *Store) CreateAttempt(_ context.Context, a domain.Attempt) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[a.QuizID]; !ok {
		return domain.Attempt{}, fmt.Errorf("quiz %d: %w", a.QuizID, domain.ErrNotFound)
	}
	s.nextID++
	a.ID = s.nextID
	a.CreatedAt = s.clock()
	s.attempts = append(s.attempts, a)
	return a, nil
}

// matching returns the attempts within scope; callers hold the read lock.
func (s *Store) matching(scope domain.Scope) []domain.Attempt {
	var out []domain.Attempt
	for _, a := range s.attempts {
		if scope.QuizID != nil && a.QuizID != *scope.QuizID {
			continue
		}
		if scope.UserID != nil && a.UserID != *scope.UserID {
			continue
		}
		if scope.CompanyID != nil && s.quizzes[a.QuizID].CompanyID != *scope.CompanyID {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *Store) ScoreStats(_ context.Context, scope domain.Scope) (domain.ScoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		stats    domain.ScoreStats
		scoreSum float64
	)
	for _, a := range s.matching(scope) {
		stats.Attempts++
		stats.TotalQuestions += a.Questions
		stats.TotalCorrectAnswers += a.CorrectAnswers
		scoreSum += a.Score
	}
	// avg_score is the mean of attempt scores, not correct/questions.
	if stats.Attempts > 0 {
		stats.AvgScore = scoreSum / float64(stats.Attempts)
	}
	return stats, nil
}

func (s *Store) ScorePoints(_ context.Context, scope domain.Scope) ([]domain.ScorePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.matching(scope)
	out := make([]domain.ScorePoint, len(matched))
	for i, a := range matched {
		out[i] = domain.ScorePoint{
			AttemptID: a.ID,
			QuizID:    a.QuizID,
			UserID:    a.UserID,
			Score:     a.Score,
			CreatedAt: a.CreatedAt,
		}
	}
	return out, nil
}

func (s *Store) LastAttemptsByQuiz(_ context.Context, userID int64, companyID *int64) ([]domain.QuizTime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest := make(map[int64]time.Time)
	for _, a := range s.matching(domain.Scope{UserID: &userID, CompanyID: companyID}) {
		if t, ok := latest[a.QuizID]; !ok || a.CreatedAt.After(t) {
			latest[a.QuizID] = a.CreatedAt
		}
	}
	out := make([]domain.QuizTime, 0, len(latest))
	for quizID, t := range latest {
		out = append(out, domain.QuizTime{QuizID: quizID, CreatedAt: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuizID < out[j].QuizID })
	return out, nil
}

func (s *Store) LastAttemptsByUser(_ context.Context, userIDs []int64) ([]domain.UserTime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := toSet(userIDs)
	latest := make(map[int64]time.Time)
	for _, a := range s.attempts {
		if !wanted[a.UserID] {
			continue
		}
		if t, ok := latest[a.UserID]; !ok || a.CreatedAt.After(t) {
			latest[a.UserID] = a.CreatedAt
		}
	}
	out := make([]domain.UserTime, 0, len(latest))
	for userID, t := range latest {
		out = append(out, domain.UserTime{UserID: userID, CreatedAt: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *Store) LatestRecurring(_ context.Context) ([]domain.LatestAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type pair struct{ user, quiz int64 }
	latest := make(map[pair]domain.Attempt)
	for _, a := range s.attempts {
		if s.quizzes[a.QuizID].FrequencyDays == nil {
			continue
		}
		k := pair{a.UserID, a.QuizID}
		cur, ok := latest[k]
		if !ok || a.CreatedAt.After(cur.CreatedAt) || (a.CreatedAt.Equal(cur.CreatedAt) && a.ID > cur.ID) {
			latest[k] = a
		}
	}
	out := make([]domain.LatestAttempt, 0, len(latest))
	for _, a := range latest {
		out = append(out, domain.LatestAttempt{Attempt: a, FrequencyDays: *s.quizzes[a.QuizID].FrequencyDays})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].QuizID < out[j].QuizID
	})
	return out, nil
}

func (s *Store) Role(_ context.Context, userID, companyID int64) (domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[companyID][userID]
	if !ok {
		return "", fmt.Errorf("user %d in company %d: %w", userID, companyID, domain.ErrNotFound)
	}
	return role, nil
}

func (s *Store) CompanyMembers(_ context.Context, companyID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.roles[companyID]))
	for userID := range s.roles[companyID] {
		out = append(out, userID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func uniqueSorted(ids []int64) []int64 {
	set := toSet(ids)
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
