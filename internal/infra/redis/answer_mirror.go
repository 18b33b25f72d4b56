package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"knowledge-check-service/internal/domain"
	"knowledge-check-service/internal/infra/mirrorkey"
	"github.com/redis/go-redis/v9"
)

// AnswerMirror writes submitted answers to Redis hashes keyed per (quiz, user, company).
// Every answer of an attempt shares a key, so each HSET overwrites the previous
// answer's fields and only the last one survives intact.
type AnswerMirror struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAnswerMirror(client *redis.Client, ttl time.Duration) *AnswerMirror {
	return &AnswerMirror{client: client, ttl: ttl}
}

func (m *AnswerMirror) Mirror(ctx context.Context, facts []domain.AnswerFact) error {
	if len(facts) == 0 {
		return nil
	}
	pipe := m.client.Pipeline()
	for _, f := range facts {
		key := mirrorkey.Key(f.QuizID, f.UserID, f.CompanyID)
		pipe.HSet(ctx, key, mirrorkey.Fields(f))
		if m.ttl > 0 {
			pipe.Expire(ctx, key, m.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mirror answers: %w", err)
	}
	return nil
}

// Results scans keys matching pattern and decodes their hashes.
func (m *AnswerMirror) Results(ctx context.Context, pattern string) ([]domain.AnswerFact, error) {
	var keys []string
	iter := m.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %q: %w", pattern, err)
	}
	sort.Strings(keys)

	out := make([]domain.AnswerFact, 0, len(keys))
	for _, key := range keys {
		fields, err := m.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		if len(fields) == 0 {
			// expired between SCAN and HGETALL
			continue
		}
		fact, err := mirrorkey.Parse(fields)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		out = append(out, fact)
	}
	return out, nil
}
