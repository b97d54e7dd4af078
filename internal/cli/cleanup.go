package cli

import (
	"context"
	"fmt"
	"log"

	"school-merit-service/internal/app"
	"school-merit-service/internal/config"
	pgstore "school-merit-service/internal/infra/postgres"
	redisstore "school-merit-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewCleanupCmd rewrites stored badge collections without expired entries.
// The pass is idempotent and optional: reads always filter expired badges,
// so this only trims storage.
func NewCleanupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired badges from storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(cmd.Context(), *configPath)
		},
	}
}

func runCleanup(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Redis.Addr == "" {
		return fmt.Errorf("cleanup requires a configured redis store")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	var studentLoader redisstore.StudentLoader
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		studentLoader = pgstore.NewDocumentStore(pool)
	}

	students := redisstore.NewStudentStore(redisClient, studentLoader)
	merits := app.NewMeritService(students, buildCatalog(cfg), nil)

	removed, err := merits.Cleanup(ctx)
	if err != nil {
		return err
	}
	log.Printf("cleanup removed %d expired badges", removed)
	return nil
}
