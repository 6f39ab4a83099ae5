package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/intervue/intervue-backend/internal/config"
	"github.com/intervue/intervue-backend/internal/database"
	"github.com/intervue/intervue-backend/internal/gateway"
	"github.com/intervue/intervue-backend/internal/handler"
	"github.com/intervue/intervue-backend/internal/logger"
	"github.com/intervue/intervue-backend/internal/quiz"
	"github.com/intervue/intervue-backend/internal/repository"
	"github.com/intervue/intervue-backend/internal/router"
	"github.com/intervue/intervue-backend/internal/service"
	"github.com/intervue/intervue-backend/internal/session"
	"github.com/intervue/intervue-backend/internal/validator"
	"github.com/intervue/intervue-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Intervue Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	subjectRepo := repository.NewSubjectRepository(pool)
	quizQuestionRepo := repository.NewQuizQuestionRepository(pool)

	// ─── Initialize AI Gateway ─────────────────────────────────────────
	chat := gateway.NewChatClient(cfg, log)
	questionSource := gateway.NewAIQuestionSource(chat, rdb, quizQuestionRepo, cfg, log)
	scorer := gateway.NewAIScorer(chat, log)

	// ─── Initialize Services ──────────────────────────────────────────
	tokenService := service.NewTokenService(cfg)
	resumeService := service.NewResumeService(cfg)
	subjectService := service.NewSubjectService(subjectRepo, log)

	// ─── Initialize Session Registries ────────────────────────────────
	violationQueue := worker.NewViolationQueue(rdb, log)
	interviewRegistry := session.NewRegistry(cfg.SessionTTL, log)
	quizRegistry := quiz.NewRegistry(cfg.SessionTTL, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Interview: handler.NewInterviewHandler(
			interviewRegistry, resumeService, tokenService,
			questionSource, scorer, violationQueue, log,
		),
		Quiz: handler.NewQuizHandler(
			quizRegistry, subjectService, tokenService,
			questionSource, scorer, violationQueue, log,
		),
		Subject: handler.NewSubjectHandler(subjectService, log),
		WS:      handler.NewWSHandler(interviewRegistry, cfg.AllowedOrigins, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	violationWorker := worker.NewViolationWorker(pool, rdb, log)
	go violationWorker.Start(workerCtx)
	go interviewRegistry.StartJanitor(workerCtx)
	go quizRegistry.StartJanitor(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(tokenService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the violation queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
