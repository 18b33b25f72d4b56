package postgres

import (
	"context"
	"fmt"

	"knowledge-check-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AttemptRepository stores attempts and runs the analytics aggregates.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

func (r *AttemptRepository) CreateAttempt(ctx context.Context, a domain.Attempt) (domain.Attempt, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("begin attempt tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	err = tx.QueryRow(ctx, `
		INSERT INTO attempts (quiz_id, user_id, questions, correct_answers, score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		a.QuizID, a.UserID, a.Questions, a.CorrectAnswers, a.Score,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("insert attempt: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Attempt{}, fmt.Errorf("commit attempt: %w", err)
	}
	return a, nil
}

// scopeFilter matches attempts a joined to quizzes q; nil parameters disable a filter.
const scopeFilter = `
	($1::bigint IS NULL OR a.quiz_id = $1)
	AND ($2::bigint IS NULL OR a.user_id = $2)
	AND ($3::bigint IS NULL OR q.company_id = $3)`

func (r *AttemptRepository) ScoreStats(ctx context.Context, scope domain.Scope) (domain.ScoreStats, error) {
	var (
		attempts, questions int64
		correct, avg        float64
	)
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(a.id), COALESCE(SUM(a.questions), 0), COALESCE(SUM(a.correct_answers), 0),
		       COALESCE(AVG(a.score), 0)
		FROM attempts a
		JOIN quizzes q ON q.id = a.quiz_id
		WHERE`+scopeFilter,
		scope.QuizID, scope.UserID, scope.CompanyID,
	).Scan(&attempts, &questions, &correct, &avg)
	if err != nil {
		return domain.ScoreStats{}, fmt.Errorf("score stats: %w", err)
	}
	stats := domain.ScoreStats{
		Attempts:            int(attempts),
		TotalQuestions:      int(questions),
		TotalCorrectAnswers: correct,
		AvgScore:            avg,
	}
	return stats, nil
}

func (r *AttemptRepository) ScorePoints(ctx context.Context, scope domain.Scope) ([]domain.ScorePoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.quiz_id, a.user_id, a.score, a.created_at
		FROM attempts a
		JOIN quizzes q ON q.id = a.quiz_id
		WHERE`+scopeFilter,
		scope.QuizID, scope.UserID, scope.CompanyID,
	)
	if err != nil {
		return nil, fmt.Errorf("score points: %w", err)
	}
	defer rows.Close()

	var out []domain.ScorePoint
	for rows.Next() {
		var p domain.ScorePoint
		if err := rows.Scan(&p.AttemptID, &p.QuizID, &p.UserID, &p.Score, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *AttemptRepository) LastAttemptsByQuiz(ctx context.Context, userID int64, companyID *int64) ([]domain.QuizTime, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.quiz_id, MAX(a.created_at)
		FROM attempts a
		JOIN quizzes q ON q.id = a.quiz_id
		WHERE a.user_id = $1 AND ($2::bigint IS NULL OR q.company_id = $2)
		GROUP BY a.quiz_id
		ORDER BY a.quiz_id`, userID, companyID)
	if err != nil {
		return nil, fmt.Errorf("last attempts by quiz: %w", err)
	}
	defer rows.Close()

	out := []domain.QuizTime{}
	for rows.Next() {
		var qt domain.QuizTime
		if err := rows.Scan(&qt.QuizID, &qt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz time: %w", err)
		}
		out = append(out, qt)
	}
	return out, rows.Err()
}

func (r *AttemptRepository) LastAttemptsByUser(ctx context.Context, userIDs []int64) ([]domain.UserTime, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, MAX(created_at)
		FROM attempts
		WHERE user_id = ANY($1)
		GROUP BY user_id
		ORDER BY user_id`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("last attempts by user: %w", err)
	}
	defer rows.Close()

	out := []domain.UserTime{}
	for rows.Next() {
		var ut domain.UserTime
		if err := rows.Scan(&ut.UserID, &ut.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user time: %w", err)
		}
		out = append(out, ut)
	}
	return out, rows.Err()
}

func (r *AttemptRepository) LatestRecurring(ctx context.Context) ([]domain.LatestAttempt, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (a.user_id, a.quiz_id)
			a.id, a.quiz_id, a.user_id, a.questions, a.correct_answers, a.score, a.created_at, q.frequency
		FROM attempts a
		JOIN quizzes q ON q.id = a.quiz_id
		WHERE q.frequency IS NOT NULL
		ORDER BY a.user_id, a.quiz_id, a.created_at DESC, a.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("latest recurring attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.LatestAttempt
	for rows.Next() {
		var (
			l         domain.LatestAttempt
			questions int32
			frequency int32
		)
		if err := rows.Scan(&l.ID, &l.QuizID, &l.UserID, &questions, &l.CorrectAnswers, &l.Score, &l.CreatedAt, &frequency); err != nil {
			return nil, fmt.Errorf("scan latest attempt: %w", err)
		}
		l.Questions = int(questions)
		l.FrequencyDays = int(frequency)
		out = append(out, l)
	}
	return out, rows.Err()
}
