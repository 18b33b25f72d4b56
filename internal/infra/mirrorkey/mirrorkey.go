// Package mirrorkey defines the key layout and hash fields of the transient
// per-answer store consumed by result exports.
//
// Keys look like quiz_id:{q}-user_id:{u}-company_id:{c}. Exporters select keys
// by glob on one of the three segments.
package mirrorkey

import (
	"fmt"
	"strconv"

	"knowledge-check-service/internal/domain"
)

const (
	FieldQuizID     = "quiz_id"
	FieldUserID     = "user_id"
	FieldCompanyID  = "company_id"
	FieldQuestionID = "question_id"
	FieldAnswerID   = "answer_id"
	FieldCorrect    = "correct"
)

// Key is the hash key shared by every answer of a (quiz, user, company) triple.
func Key(quizID, userID, companyID int64) string {
	return fmt.Sprintf("quiz_id:%d-user_id:%d-company_id:%d", quizID, userID, companyID)
}

// QuizPattern matches every key of a quiz.
func QuizPattern(quizID int64) string {
	return fmt.Sprintf("quiz_id:%d-*", quizID)
}

// UserPattern matches every key of a user.
func UserPattern(userID int64) string {
	return fmt.Sprintf("*-user_id:%d-*", userID)
}

// CompanyPattern matches every key of a company.
func CompanyPattern(companyID int64) string {
	return fmt.Sprintf("*-company_id:%d", companyID)
}

// UserCompanyPattern matches the keys of one user inside one company.
func UserCompanyPattern(userID, companyID int64) string {
	return fmt.Sprintf("*-user_id:%d-company_id:%d", userID, companyID)
}

// Fields encodes a fact as hash fields; correct is stored as 1 or 0.
func Fields(f domain.AnswerFact) map[string]interface{} {
	correct := 0
	if f.Correct {
		correct = 1
	}
	return map[string]interface{}{
		FieldQuizID:     f.QuizID,
		FieldUserID:     f.UserID,
		FieldCompanyID:  f.CompanyID,
		FieldQuestionID: f.QuestionID,
		FieldAnswerID:   f.AnswerID,
		FieldCorrect:    correct,
	}
}

// Parse decodes hash fields written by Fields.
func Parse(fields map[string]string) (domain.AnswerFact, error) {
	var f domain.AnswerFact
	targets := []struct {
		name string
		dst  *int64
	}{
		{FieldQuizID, &f.QuizID},
		{FieldUserID, &f.UserID},
		{FieldCompanyID, &f.CompanyID},
		{FieldQuestionID, &f.QuestionID},
		{FieldAnswerID, &f.AnswerID},
	}
	for _, t := range targets {
		raw, ok := fields[t.name]
		if !ok {
			return domain.AnswerFact{}, fmt.Errorf("missing field %q", t.name)
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.AnswerFact{}, fmt.Errorf("field %q: %w", t.name, err)
		}
		*t.dst = v
	}
	switch fields[FieldCorrect] {
	case "1":
		f.Correct = true
	case "0":
	default:
		return domain.AnswerFact{}, fmt.Errorf("field %q: unexpected value %q", FieldCorrect, fields[FieldCorrect])
	}
	return f, nil
}
