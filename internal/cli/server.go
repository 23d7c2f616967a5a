package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"portal-quiz-service/internal/app"
	"portal-quiz-service/internal/config"
	filecontent "portal-quiz-service/internal/infra/file"
	"portal-quiz-service/internal/infra/memory"
	pgstore "portal-quiz-service/internal/infra/postgres"
	rediscache "portal-quiz-service/internal/infra/redis"
	"portal-quiz-service/internal/quiz"
	transport "portal-quiz-service/internal/transport/http"
)

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
		defer redisClient.Close()
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var (
		loader  memory.ContentLoader
		results app.ResultRepository = memory.NewResultStore()
	)
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgstore.NewContentLoader(pool)

		db := openBunDB(cfg.Postgres.URL)
		defer db.Close()
		results = pgstore.NewResultStore(db)
	case cfg.Quiz.ContentDir != "":
		loader = filecontent.NewContentLoader(cfg.Quiz.ContentDir)
	default:
		loader = memory.NewStaticContentLoader(sampleContent())
	}

	contentTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var contents app.ContentRepository
	if redisClient != nil {
		contents = rediscache.NewContentRepository(redisClient, loader, contentTTL)
	} else {
		contents = memory.NewContentRepository(loader, contentTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = rediscache.NewSessionStore(redisClient, sessionTTL)
	} else {
		store = memory.NewSessionStore()
	}
	service := app.NewQuizService(store, contents, results, quiz.TickerScheduler{})
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/results", transport.NewResultsHandler(service).ServeHTTP)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
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

// sampleContent serves a demo module when neither Postgres nor a content directory is configured.
func sampleContent() map[string][]byte {
	return map[string][]byte{
		"demo": []byte(`{"modules": [{
			"id": 1,
			"title": "Workplace basics",
			"duration": 300,
			"questions": [
				{"question": "What is 2 + 2?", "options": ["3", "4", "5"], "answer": "4"},
				{"question": "Where do you report a data breach?", "options": ["Security desk", "Nowhere"], "answer": "Security desk", "explanation": "Incidents go to the security desk within 24 hours."}
			]
		}]}`),
	}
}
