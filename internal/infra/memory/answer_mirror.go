package memory

import (
	"context"
	"path"
	"sort"
	"sync"
	"time"

	"knowledge-check-service/internal/domain"
	"knowledge-check-service/internal/infra/mirrorkey"
)

// AnswerMirror is an in-process transient store with per-key expiry.
// Like the Redis mirror, every answer of an attempt lands on the same key and
// the last write wins.
type AnswerMirror struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	entries map[string]mirrorEntry
}

type mirrorEntry struct {
	fact      domain.AnswerFact
	expiresAt time.Time
}

func NewAnswerMirror(ttl time.Duration) *AnswerMirror {
	return NewAnswerMirrorWithClock(ttl, time.Now)
}

// NewAnswerMirrorWithClock allows deterministic expiry in tests.
func NewAnswerMirrorWithClock(ttl time.Duration, clock func() time.Time) *AnswerMirror {
	return &AnswerMirror{ttl: ttl, clock: clock, entries: make(map[string]mirrorEntry)}
}

func (m *AnswerMirror) Mirror(_ context.Context, facts []domain.AnswerFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()
	for _, f := range facts {
		m.entries[mirrorkey.Key(f.QuizID, f.UserID, f.CompanyID)] = mirrorEntry{
			fact:      f,
			expiresAt: now.Add(m.ttl),
		}
	}
	return nil
}

// Results returns the live records whose key matches a glob pattern.
func (m *AnswerMirror) Results(_ context.Context, pattern string) ([]domain.AnswerFact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()

	keys := make([]string, 0, len(m.entries))
	for key, entry := range m.entries {
		if !entry.expiresAt.After(now) {
			delete(m.entries, key)
			continue
		}
		ok, err := path.Match(pattern, key)
		if err != nil {
			return nil, err
		}
		if ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make([]domain.AnswerFact, len(keys))
	for i, key := range keys {
		out[i] = m.entries[key].fact
	}
	return out, nil
}
