package memory

import (
	"context"
	"sync"
	"time"

	"knowledge-check-service/internal/app"
	"knowledge-check-service/internal/domain"
)

// Notifier keeps dispatched notifications in memory.
type Notifier struct {
	mu    sync.Mutex
	clock func() time.Time
	sent  []domain.Notification
}

func NewNotifier() *Notifier {
	return &Notifier{clock: time.Now}
}

func (n *Notifier) Notify(_ context.Context, attempts []domain.Attempt) error {
	notifications := app.OutdatedNotifications(attempts, n.clock())
	n.mu.Lock()
	n.sent = append(n.sent, notifications...)
	n.mu.Unlock()
	return nil
}

// Sent returns a copy of everything dispatched so far.
func (n *Notifier) Sent() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.Notification, len(n.sent))
	copy(out, n.sent)
	return out
}
