package domain

import "time"

// Role is a user's membership role inside a company.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// IsAdmin reports whether the role may manage the company (owner or admin).
func (r Role) IsAdmin() bool {
	return r == RoleOwner || r == RoleAdmin
}

// IsMember reports whether the role belongs to the company at all.
func (r Role) IsMember() bool {
	return r.IsAdmin() || r == RoleMember
}

// Answer is a candidate answer of a question.
type Answer struct {
	ID         int64  `json:"answer_id"`
	QuestionID int64  `json:"question_id"`
	Content    string `json:"content"`
	Correct    bool   `json:"correct"`
}

// Question belongs to a quiz and owns its answers.
type Question struct {
	ID      int64    `json:"question_id"`
	QuizID  int64    `json:"quiz_id"`
	Content string   `json:"content"`
	Answers []Answer `json:"answers,omitempty"`
}

// Quiz is owned by a company. FrequencyDays is nil when the quiz never recurs.
type Quiz struct {
	ID            int64      `json:"quiz_id"`
	CompanyID     int64      `json:"company_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	FrequencyDays *int       `json:"frequency,omitempty"`
	CreatedBy     int64      `json:"created_by"`
	UpdatedBy     int64      `json:"updated_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Questions     []Question `json:"questions,omitempty"`
}

// Attempt is the immutable summary row of one scored submission.
type Attempt struct {
	ID             int64
	QuizID         int64
	UserID         int64
	Questions      int
	CorrectAnswers float64
	Score          float64
	CreatedAt      time.Time
}

// AttemptSubmission is a user's raw answer sheet for a quiz.
// AnswerIDs[i] holds the answers claimed for QuestionIDs[i].
type AttemptSubmission struct {
	QuizID      int64
	QuestionIDs []int64
	AnswerIDs   [][]int64
}

// AttemptRecord is the API view of a stored attempt.
type AttemptRecord struct {
	AttemptID      int64     `json:"attempt_id"`
	QuizID         int64     `json:"quiz_id"`
	UserID         int64     `json:"user_id"`
	TakenAt        time.Time `json:"taken_at"`
	Questions      int       `json:"questions"`
	CorrectAnswers float64   `json:"correct_answers"`
	Score          float64   `json:"score"`
}

// NewAttemptRecord builds the rounded API view of an attempt.
func NewAttemptRecord(a Attempt) AttemptRecord {
	return AttemptRecord{
		AttemptID:      a.ID,
		QuizID:         a.QuizID,
		UserID:         a.UserID,
		TakenAt:        a.CreatedAt,
		Questions:      a.Questions,
		CorrectAnswers: RoundScore(a.CorrectAnswers),
		Score:          RoundScore(a.Score),
	}
}

// AnswerFact is one submitted answer as mirrored into the transient store.
type AnswerFact struct {
	QuizID     int64 `json:"quiz_id"`
	UserID     int64 `json:"user_id"`
	CompanyID  int64 `json:"company_id"`
	QuestionID int64 `json:"question_id"`
	AnswerID   int64 `json:"answer_id"`
	Correct    bool  `json:"correct"`
}

// Scope narrows attempt queries; nil fields are not filtered on.
type Scope struct {
	QuizID    *int64
	UserID    *int64
	CompanyID *int64
}

// ScoreStats is the raw aggregate over a set of attempts.
type ScoreStats struct {
	Attempts            int
	TotalQuestions      int
	TotalCorrectAnswers float64
	AvgScore            float64
}

// ScoreAvg is the API view of ScoreStats, echoing the filters that were set.
type ScoreAvg struct {
	QuizID              *int64  `json:"quiz_id,omitempty"`
	UserID              *int64  `json:"user_id,omitempty"`
	CompanyID           *int64  `json:"company_id,omitempty"`
	TotalQuestions      int     `json:"total_questions"`
	TotalCorrectAnswers float64 `json:"total_correct_answers"`
	AvgScore            float64 `json:"avg_score"`
}

// ScorePoint is a single attempt score on the timeline.
type ScorePoint struct {
	AttemptID int64
	QuizID    int64
	UserID    int64
	Score     float64
	CreatedAt time.Time
}

// ScoreTime is one running-average point.
type ScoreTime struct {
	AvgScore  float64   `json:"avg_score"`
	CreatedAt time.Time `json:"created_at"`
}

// QuizScores is a running-average series for one quiz.
type QuizScores struct {
	QuizID int64       `json:"quiz_id"`
	Result []ScoreTime `json:"result"`
}

// UserScores is a running-average series for one user.
type UserScores struct {
	UserID int64       `json:"user_id"`
	Result []ScoreTime `json:"result"`
}

// QuizTime is the latest attempt of a user on a quiz.
type QuizTime struct {
	QuizID    int64     `json:"quiz_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserTime is the latest attempt of a user on any quiz.
type UserTime struct {
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LatestAttempt is the most recent attempt of a user on a recurring quiz.
type LatestAttempt struct {
	Attempt
	FrequencyDays int
}

// Notification is a message addressed to a single user.
type Notification struct {
	UserID    int64     `json:"user_id"`
	QuizID    int64     `json:"quiz_id"`
	Status    string    `json:"status"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
