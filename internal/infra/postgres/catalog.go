package postgres

import (
	"context"
	"errors"
	"fmt"

	"knowledge-check-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Catalog reads quizzes, questions and answers from Postgres.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) QuizCompanyID(ctx context.Context, quizID int64) (int64, error) {
	var companyID int64
	err := c.pool.QueryRow(ctx, `SELECT company_id FROM quizzes WHERE id=$1`, quizID).Scan(&companyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %d", domain.ErrQuizNotFound, quizID)
	}
	if err != nil {
		return 0, fmt.Errorf("load quiz company: %w", err)
	}
	return companyID, nil
}

func (c *Catalog) QuizQuestions(ctx context.Context, quizID int64, questionIDs []int64) ([]domain.Question, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, quiz_id, content
		FROM quiz_questions
		WHERE quiz_id=$1 AND id = ANY($2)
		ORDER BY id`, quizID, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Content); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (c *Catalog) QuestionAnswers(ctx context.Context, questionIDs, answerIDs []int64) ([]domain.Answer, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, question_id, content, correct
		FROM quiz_answers
		WHERE id = ANY($1) AND question_id = ANY($2)
		ORDER BY id`, answerIDs, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	defer rows.Close()

	var out []domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Content, &a.Correct); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (c *Catalog) CorrectAnswerCounts(ctx context.Context, questionIDs []int64) (map[int64]int, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT question_id, COUNT(*)
		FROM quiz_answers
		WHERE correct AND question_id = ANY($1)
		GROUP BY question_id`, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("count correct answers: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int, len(questionIDs))
	for rows.Next() {
		var questionID, n int64
		if err := rows.Scan(&questionID, &n); err != nil {
			return nil, fmt.Errorf("scan correct count: %w", err)
		}
		counts[questionID] = int(n)
	}
	return counts, rows.Err()
}
