package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"knowledge-check-service/internal/app"
	"knowledge-check-service/internal/config"
	"knowledge-check-service/internal/infra/memory"
	"knowledge-check-service/internal/infra/postgres"
	redisinfra "knowledge-check-service/internal/infra/redis"
	"knowledge-check-service/internal/scheduler"
	transport "knowledge-check-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the API server and the outdated-attempts scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type backends struct {
	catalog   app.Catalog
	attempts  app.AttemptRepository
	authz     app.Authorizer
	members   app.MemberDirectory
	notifiers app.Notifiers
	close     func()
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret not configured")
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	mirrorTTL := config.TTLDuration(cfg.Redis.TTL, 48*time.Hour)
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)

	var (
		companies app.CompanyResolver
		mirror    app.AnswerMirror
	)
	if redisClient != nil {
		companies = redisinfra.NewCompanyCache(redisClient, store.catalog, quizTTL)
		mirror = redisinfra.NewAnswerMirror(redisClient, mirrorTTL)
	} else {
		companies = memory.NewCompanyCache(store.catalog, quizTTL)
		mirror = memory.NewAnswerMirror(mirrorTTL)
	}

	hub := app.NewNotificationHub()
	notifier := append(store.notifiers, hub)

	attempts := app.NewAttemptService(store.catalog, store.attempts, mirror, store.authz,
		app.WithCompanyResolver(companies))
	analytics := app.NewAnalyticsService(store.attempts, companies, store.members, store.authz)
	scanner := app.NewStalenessScanner(store.attempts, notifier, log.Default())

	router := transport.NewRouter(
		transport.NewJWTAuth(cfg.Auth.JWTSecret),
		transport.NewAttemptHandler(attempts),
		transport.NewAnalyticsHandler(analytics),
		transport.NewNotificationsHandler(hub),
	)

	jobs := scheduler.New(log.Default())
	jobTimeout := config.TTLDuration(cfg.Scheduler.Timeout, 5*time.Minute)
	if err := jobs.Add("outdated-attempts", cfg.Scheduler.OutdatedAttempts, jobTimeout, scanner.Run); err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting knowledge-check service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return jobs.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openBackends connects to Postgres, or falls back to a seeded in-memory store.
func openBackends(ctx context.Context, cfg config.Config) (backends, error) {
	if cfg.Postgres.URL == "" {
		log.Printf("postgres url not configured, using in-memory demo data")
		store := memory.NewStore()
		memory.SeedDemo(store)
		return backends{
			catalog:   store,
			attempts:  store,
			authz:     store,
			members:   store,
			notifiers: app.Notifiers{memory.NewNotifier()},
			close:     func() {},
		}, nil
	}

	if err := RunMigrations(ctx, cfg.Postgres.URL); err != nil {
		return backends{}, err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return backends{}, err
	}
	memberships := postgres.NewMemberships(pool)
	return backends{
		catalog:   postgres.NewCatalog(pool),
		attempts:  postgres.NewAttemptRepository(pool),
		authz:     memberships,
		members:   memberships,
		notifiers: app.Notifiers{postgres.NewNotifications(pool)},
		close:     pool.Close,
	}, nil
}
