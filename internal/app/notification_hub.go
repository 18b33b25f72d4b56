package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"knowledge-check-service/internal/domain"
)

const NotificationStatusSent = "sent"

// OutdatedAttemptText is the message sent when a recurring quiz is due again.
func OutdatedAttemptText(quizID int64) string {
	return fmt.Sprintf("Your attempt for quiz %d is outdated. It's time to take the quiz again!", quizID)
}

// OutdatedNotifications builds one notification per outdated attempt.
func OutdatedNotifications(attempts []domain.Attempt, now time.Time) []domain.Notification {
	out := make([]domain.Notification, len(attempts))
	for i, a := range attempts {
		out[i] = domain.Notification{
			UserID:    a.UserID,
			QuizID:    a.QuizID,
			Status:    NotificationStatusSent,
			Text:      OutdatedAttemptText(a.QuizID),
			CreatedAt: now,
		}
	}
	return out
}

// NotificationHub pushes notifications to in-process subscribers, keyed by user.
type NotificationHub struct {
	mu          sync.Mutex
	now         Clock
	subscribers map[int64]map[chan domain.Notification]struct{}
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		now:         time.Now,
		subscribers: make(map[int64]map[chan domain.Notification]struct{}),
	}
}

// Subscribe returns a channel receiving notifications for userID.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *NotificationHub) Subscribe(userID int64) (<-chan domain.Notification, func()) {
	ch := make(chan domain.Notification, 8)

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan domain.Notification]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[userID]
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, userID)
		}
	}
	return ch, cancel
}

// Notify delivers one notification per attempt to the attempt's user, if subscribed.
func (h *NotificationHub) Notify(_ context.Context, attempts []domain.Attempt) error {
	notifications := OutdatedNotifications(attempts, h.now())

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, n := range notifications {
		for ch := range h.subscribers[n.UserID] {
			select {
			case ch <- n:
			default:
				// Slow subscriber: drop its oldest pending message.
				select {
				case <-ch:
				default:
				}
				ch <- n
			}
		}
	}
	return nil
}
