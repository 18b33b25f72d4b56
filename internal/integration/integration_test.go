package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"knowledge-check-service/internal/app"
	"knowledge-check-service/internal/domain"
	"knowledge-check-service/internal/infra/mirrorkey"
	"knowledge-check-service/internal/infra/postgres"
	pgmigrations "knowledge-check-service/internal/infra/postgres/migrations"
	infraredis "knowledge-check-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestSubmitAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	seedCatalog(t, ctx, pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	catalog := postgres.NewCatalog(pool)
	attempts := postgres.NewAttemptRepository(pool)
	memberships := postgres.NewMemberships(pool)
	mirror := infraredis.NewAnswerMirror(redisClient, 48*time.Hour)
	companies := infraredis.NewCompanyCache(redisClient, catalog, 5*time.Minute)

	service := app.NewAttemptService(catalog, attempts, mirror, memberships, app.WithCompanyResolver(companies))
	record, err := service.Submit(ctx, 2, domain.AttemptSubmission{
		QuizID:      1,
		QuestionIDs: []int64{1, 2},
		AnswerIDs:   [][]int64{{1}, {3, 4}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if record.Score != 0.75 || record.CorrectAnswers != 1.5 || record.AttemptID == 0 {
		t.Fatalf("unexpected record %+v", record)
	}

	if _, err := service.Submit(ctx, 3, domain.AttemptSubmission{
		QuizID: 1, QuestionIDs: []int64{1}, AnswerIDs: [][]int64{{1}},
	}); err == nil {
		t.Fatalf("expected outsider to be rejected")
	}

	facts, err := mirror.Results(ctx, mirrorkey.UserPattern(2))
	if err != nil {
		t.Fatalf("mirror results: %v", err)
	}
	if len(facts) != 1 || facts[0].CompanyID != 1 {
		t.Fatalf("unexpected mirrored facts %+v", facts)
	}

	if _, err := service.Submit(ctx, 2, domain.AttemptSubmission{
		QuizID: 1, QuestionIDs: []int64{1}, AnswerIDs: [][]int64{{1}},
	}); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	analytics := app.NewAnalyticsService(attempts, companies, memberships, memberships)
	avg, err := analytics.AvgScore(ctx, 1, domain.Scope{CompanyID: ptr(1)})
	if err != nil {
		t.Fatalf("avg score: %v", err)
	}
	// AVG(score) over 0.75 and 1; the ratio of sums would be 2.5/3.
	if avg.TotalQuestions != 3 || avg.TotalCorrectAnswers != 2.5 || avg.AvgScore != 0.875 {
		t.Fatalf("unexpected avg %+v", avg)
	}
	last, err := analytics.MembersLastAttempt(ctx, 1, 1)
	if err != nil {
		t.Fatalf("members last attempt: %v", err)
	}
	if len(last) != 1 || last[0].UserID != 2 {
		t.Fatalf("unexpected members last attempt %+v", last)
	}

	// Age the attempt past the weekly frequency and run the scanner.
	if _, err := pool.Exec(ctx, `UPDATE attempts SET created_at = now() - interval '8 days'`); err != nil {
		t.Fatalf("age attempt: %v", err)
	}
	notifications := postgres.NewNotifications(pool)
	scanner := app.NewStalenessScanner(attempts, notifications, nil)
	if err := scanner.Run(ctx); err != nil {
		t.Fatalf("scan: %v", err)
	}
	sent, err := notifications.ForUser(ctx, 2)
	if err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	if len(sent) != 1 || sent[0].Text != app.OutdatedAttemptText(1) || sent[0].Status != "sent" {
		t.Fatalf("unexpected notifications %+v", sent)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func seedCatalog(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	stmts := []string{
		`INSERT INTO companies (id, name) VALUES (1, 'Acme')`,
		`INSERT INTO company_members (company_id, user_id, role) VALUES (1, 1, 'owner'), (1, 2, 'member')`,
		`INSERT INTO quizzes (id, company_id, name, frequency, created_by, updated_by) VALUES (1, 1, 'Security basics', 7, 1, 1)`,
		`INSERT INTO quiz_questions (id, quiz_id, content) VALUES (1, 1, 'Strong password?'), (2, 1, 'Report phishing where?')`,
		`INSERT INTO quiz_answers (id, question_id, content, correct) VALUES
			(1, 1, 'long passphrase', true), (2, 1, 'password123', false),
			(3, 2, 'security team', true), (4, 2, 'reply to sender', false)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
}

func ptr(v int64) *int64 { return &v }

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
