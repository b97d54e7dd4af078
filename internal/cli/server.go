package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"school-merit-service/internal/app"
	"school-merit-service/internal/config"
	"school-merit-service/internal/domain"
	"school-merit-service/internal/infra/memory"
	pgstore "school-merit-service/internal/infra/postgres"
	redisstore "school-merit-service/internal/infra/redis"
	transport "school-merit-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the merit service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var documents *pgstore.DocumentStore
	if pool != nil {
		documents = pgstore.NewDocumentStore(pool)
	}

	var quizzes app.QuizStore
	var students app.StudentStore
	if redisClient != nil {
		var quizLoader redisstore.QuizLoader
		var studentLoader redisstore.StudentLoader
		if documents != nil {
			quizLoader = documents
			studentLoader = documents
		}
		quizzes = redisstore.NewQuizStore(redisClient, quizLoader, redisTTL)
		students = redisstore.NewStudentStore(redisClient, studentLoader)
	} else {
		quizzes = memory.NewQuizStoreWithQuizzes(sampleQuizzes())
		students = memory.NewStudentStore()
	}

	validity := config.Duration(cfg.Quiz.Validity, domain.DefaultQuizValidity)

	feed := app.NewAwardFeed()
	merits := app.NewMeritService(students, buildCatalog(cfg), feed)
	submissions := app.NewSubmissionService(quizzes, merits, validity)

	handler := transport.NewHandler(merits, submissions)
	awards := transport.NewAwardsHandler(feed)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws/awards", awards.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting merit service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildCatalog applies configured validity overrides to the built-in badge
// catalog. Overrides for unknown types are logged and skipped.
func buildCatalog(cfg config.Config) domain.Catalog {
	catalog := domain.DefaultCatalog()
	for badgeType, days := range cfg.Badges.ValidityDays {
		key := domain.NormalizeBadgeType(badgeType)
		entry, ok := catalog[key]
		if !ok {
			log.Printf("ignoring validity override for unknown badge type %q", badgeType)
			continue
		}
		entry.ValidityDays = days
		catalog[key] = entry
	}
	return catalog
}

// sampleQuizzes seeds the in-memory store when no backing services are
// configured, for local development.
func sampleQuizzes() map[string]domain.Quiz {
	quiz, err := domain.NewQuiz(
		"quiz-1",
		"General Knowledge",
		"Warm-up quiz",
		"t1",
		"Ms Okello",
		[]domain.Question{
			{
				Prompt:        "What is 2 + 2?",
				Options:       []string{"3", "4", "5", "22"},
				CorrectOption: 1,
			},
			{
				Prompt:        "Which planet is closest to the sun?",
				Options:       []string{"Venus", "Earth", "Mercury", "Mars"},
				CorrectOption: 2,
			},
		},
		domain.DefaultQuizValidity,
		time.Now(),
	)
	if err != nil {
		// Static sample data; a failure here is a programming error.
		panic(err)
	}
	return map[string]domain.Quiz{quiz.ID: quiz}
}
