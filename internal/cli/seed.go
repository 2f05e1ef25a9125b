package cli

import (
	"context"
	"fmt"
	"sort"

	"geo-quiz-service/internal/config"
	"geo-quiz-service/internal/content"
	"geo-quiz-service/internal/domain"
	"geo-quiz-service/internal/infra/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSeedCmd upserts the built-in question sets into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in question sets into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			if err := runMigrations(cmd.Context(), cfg, log); err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg, log)
		},
	}
}

func runSeed(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	builtin := content.Builtin()
	sets := make([]domain.QuestionSet, 0, len(builtin))
	for _, set := range builtin {
		sets = append(sets, set)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].ID < sets[j].ID })

	db := postgres.Open(cfg.Postgres.URL)
	defer db.Close()
	if err := postgres.Seed(ctx, db, sets); err != nil {
		return err
	}
	log.Info("question sets seeded", zap.Int("count", len(sets)))
	return nil
}
