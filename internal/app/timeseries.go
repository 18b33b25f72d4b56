package app

import (
	"sort"

	"knowledge-check-service/internal/domain"
)

type scoreSeries struct {
	key    int64
	points []domain.ScoreTime
}

// runningAverages groups points by key and emits, per group, the cumulative mean of
// scores in chronological order. Points are sorted here by (key, created_at, attempt id)
// so the single linear grouping pass never depends on the caller's ordering.
func runningAverages(points []domain.ScorePoint, key func(domain.ScorePoint) int64) []scoreSeries {
	sorted := make([]domain.ScorePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := key(sorted[i]), key(sorted[j])
		if ki != kj {
			return ki < kj
		}
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].AttemptID < sorted[j].AttemptID
	})

	var out []scoreSeries
	var avg float64
	for _, p := range sorted {
		k := key(p)
		if len(out) == 0 || out[len(out)-1].key != k {
			out = append(out, scoreSeries{key: k})
			avg = 0
		}
		cur := &out[len(out)-1]
		n := float64(len(cur.points) + 1)
		avg = (avg*(n-1) + p.Score) / n
		cur.points = append(cur.points, domain.ScoreTime{
			AvgScore:  domain.RoundScore(avg),
			CreatedAt: p.CreatedAt,
		})
	}
	return out
}

func byQuiz(p domain.ScorePoint) int64 { return p.QuizID }

func byUser(p domain.ScorePoint) int64 { return p.UserID }
