package migrations

import _ "embed"

//go:embed 2024112201_create_quizzes.sql
var createQuizzesSQL string

func init() {
	Migrations.MustRegister(sqlMigration(createQuizzesSQL, `
		DROP TABLE IF EXISTS quiz_answers;
		DROP TABLE IF EXISTS quiz_questions;
		DROP TABLE IF EXISTS quizzes;
		DROP TABLE IF EXISTS company_members;
		DROP TABLE IF EXISTS companies;`))
}
