package postgres

import (
	"context"
	"fmt"
	"time"

	"knowledge-check-service/internal/app"
	"knowledge-check-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Notifications records outdated-attempt notifications in the notifications table.
type Notifications struct {
	pool *pgxpool.Pool
}

func NewNotifications(pool *pgxpool.Pool) *Notifications {
	return &Notifications{pool: pool}
}

func (n *Notifications) Notify(ctx context.Context, attempts []domain.Attempt) error {
	if len(attempts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, msg := range app.OutdatedNotifications(attempts, time.Now()) {
		batch.Queue(
			`INSERT INTO notifications (user_id, quiz_id, status, text, created_at) VALUES ($1, $2, $3, $4, $5)`,
			msg.UserID, msg.QuizID, msg.Status, msg.Text, msg.CreatedAt,
		)
	}

	br := n.pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}
	return nil
}

// ForUser lists a user's notifications, newest first.
func (n *Notifications) ForUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	rows, err := n.pool.Query(ctx, `
		SELECT user_id, quiz_id, status, text, created_at
		FROM notifications
		WHERE user_id=$1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var msg domain.Notification
		if err := rows.Scan(&msg.UserID, &msg.QuizID, &msg.Status, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}
