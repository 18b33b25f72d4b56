package memory

import "knowledge-check-service/internal/domain"

// SeedDemo loads a small company with one recurring quiz so the server is usable
// without Postgres. User 1 owns company 1, users 2 and 3 are members.
func SeedDemo(s *Store) {
	weekly := 7
	s.SeedQuiz(domain.Quiz{
		ID:            1,
		CompanyID:     1,
		Name:          "Security basics",
		Description:   "Quarterly security refresher",
		FrequencyDays: &weekly,
		CreatedBy:     1,
		UpdatedBy:     1,
		Questions: []domain.Question{
			{ID: 1, Content: "Which of these is a strong password?", Answers: []domain.Answer{
				{ID: 1, Content: "c0rrect-h0rse-battery-staple", Correct: true},
				{ID: 2, Content: "password123"},
			}},
			{ID: 2, Content: "Where do you report a phishing email?", Answers: []domain.Answer{
				{ID: 3, Content: "The security team", Correct: true},
				{ID: 4, Content: "Reply to the sender"},
			}},
		},
	})
	s.SeedQuiz(domain.Quiz{
		ID:        2,
		CompanyID: 1,
		Name:      "Office tour",
		CreatedBy: 1,
		UpdatedBy: 1,
		Questions: []domain.Question{
			{ID: 3, Content: "Which floors have a kitchen?", Answers: []domain.Answer{
				{ID: 5, Content: "First", Correct: true},
				{ID: 6, Content: "Third", Correct: true},
				{ID: 7, Content: "Second"},
			}},
		},
	})
	s.SetRole(1, 1, domain.RoleOwner)
	s.SetRole(1, 2, domain.RoleMember)
	s.SetRole(1, 3, domain.RoleMember)
}
