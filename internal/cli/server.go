package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geo-quiz-service/internal/app"
	"geo-quiz-service/internal/auth"
	"geo-quiz-service/internal/config"
	"geo-quiz-service/internal/content"
	"geo-quiz-service/internal/game"
	"geo-quiz-service/internal/infra/memory"
	pgloader "geo-quiz-service/internal/infra/postgres"
	infraredis "geo-quiz-service/internal/infra/redis"
	transport "geo-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const reapInterval = time.Minute

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	checks := map[string]transport.Checker{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		checks["redis"] = transport.CheckFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		checks["postgres"] = transport.CheckFunc(pool.Ping)
	}

	var loader memory.QuestionLoader = content.NewLoader(content.Builtin())
	if pool != nil {
		loader = pgloader.NewQuestionLoader(pool)
	}

	questionTTL := config.Duration(cfg.Questions.TTL, 10*time.Minute)
	sessionTTL := config.Duration(cfg.Game.SessionTTL, 30*time.Minute)

	var questions app.QuestionRepository
	var sessions app.SessionRepository
	var scores app.ScoreBoard
	if redisClient != nil {
		hostname, _ := os.Hostname()
		questions = infraredis.NewQuestionRepository(redisClient, loader, questionTTL)
		sessions = infraredis.NewSessionStore(redisClient, config.Duration(cfg.Redis.TTL, sessionTTL), hostname)
		scores = infraredis.NewScoreBoard(redisClient)
	} else {
		questions = memory.NewQuestionRepository(loader, questionTTL)
		sessions = memory.NewSessionStore()
		scores = memory.NewScoreBoard()
	}

	service := app.NewGameService(sessions, questions, scores,
		app.WithRules(gameRules(cfg)),
		app.WithIdleTTL(sessionTTL),
		app.WithLogger(log),
	)

	defaultSet := cfg.Questions.DefaultSet
	if defaultSet == "" {
		defaultSet = content.DefaultSetID
	}
	handler := transport.NewRouter(transport.Deps{
		Service:    service,
		Tokens:     auth.NewIssuer(cfg.Auth.Secret, config.Duration(cfg.Auth.TokenTTL, 24*time.Hour)),
		Logger:     log,
		Checks:     checks,
		DefaultSet: defaultSet,
	})
	server := transport.NewServer(":"+finalPort, handler, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		return server.Shutdown(context.Background())
	})
	g.Go(func() error {
		return service.RunReaper(gctx, reapInterval)
	})
	return g.Wait()
}

func gameRules(cfg config.Config) game.Rules {
	rules := game.DefaultRules()
	if cfg.Game.QuestionSeconds > 0 {
		rules.QuestionSeconds = cfg.Game.QuestionSeconds
	}
	rules.RevealDelay = config.Duration(cfg.Game.RevealDelay, rules.RevealDelay)
	return rules
}
