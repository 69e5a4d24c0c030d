package main

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

	"github.com/joho/godotenv"

	"adpnorm/internal/config"
	"adpnorm/internal/email/noop"
	"adpnorm/internal/email/ses"
	"adpnorm/internal/handler"
	"adpnorm/internal/port"
	"adpnorm/internal/queue"
	"adpnorm/internal/repository/postgres"
	"adpnorm/internal/router"
	"adpnorm/internal/service"
	s3storage "adpnorm/internal/storage/s3"
)

const jobTimeout = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.ADP.Configured() {
		analyzeURL, urlErr := cfg.ADP.AnalyzeURL()
		if urlErr != nil {
			return fmt.Errorf("invalid ADP connector config: %w", urlErr)
		}
		log.Printf("ADP connector: analyze endpoint %s (timeout %s)", analyzeURL, cfg.ADP.Timeout())
	} else {
		log.Printf("ADP connector not configured; jobs take uploaded analysis results only")
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	clientRepo := postgres.NewAPIClientRepo(db)
	jobRepo := postgres.NewJobRepo(db)
	pageRepo := postgres.NewPageRepo(db)
	fieldRepo := postgres.NewFieldRepo(db)

	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	notifier, err := newNotifier(cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.Pinger{}
	var (
		enqueuer port.JobEnqueuer
		shutdown func()
	)

	authSvc := service.NewAuthService(clientRepo, cfg.JWT)

	switch cfg.Queue.Backend {
	case config.QueueBackendAsynq:
		redisClient, redisErr := queue.NewRedisClient(ctx, cfg.Queue.RedisURL)
		if redisErr != nil {
			return fmt.Errorf("failed to connect to redis: %w", redisErr)
		}
		defer redisClient.Close()
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})

		asynqEnqueuer, qErr := queue.NewAsynqEnqueuer(cfg.Queue)
		if qErr != nil {
			return qErr
		}
		defer asynqEnqueuer.Close()
		enqueuer = asynqEnqueuer
	default:
		enqueuer = queue.NewPollingEnqueuer()
	}

	jobSvc := service.NewJobService(jobRepo, pageRepo, fieldRepo, s3Client, enqueuer, notifier, cfg.S3, cfg.Normalizer)

	switch cfg.Queue.Backend {
	case config.QueueBackendAsynq:
		consumer, cErr := queue.NewConsumer(cfg.Queue, jobSvc, jobTimeout)
		if cErr != nil {
			return cErr
		}
		if cErr := consumer.Start(); cErr != nil {
			return cErr
		}
		shutdown = consumer.Shutdown
	default:
		worker := service.NewJobQueueWorker(jobRepo, jobSvc, service.JobQueueConfig{
			PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
			MaxRetries:   cfg.Queue.MaxRetries,
			Concurrency:  cfg.Queue.Concurrency,
			JobTimeout:   jobTimeout,
		})
		done := make(chan struct{})
		go func() {
			worker.Start(ctx)
			close(done)
		}()
		shutdown = func() { <-done }
	}

	authH := handler.NewAuthHandler(authSvc)
	jobH := handler.NewJobHandler(jobSvc)
	healthH := handler.NewHealthHandler(db, checks)

	r := router.Setup(authSvc, authH, jobH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (queue backend: %s)", cfg.Server.Port, cfg.Queue.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		shutdown()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	shutdown()
	log.Printf("Shutdown complete")
	return nil
}

func newNotifier(cfg config.EmailConfig) (port.Notifier, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESNotifier(cfg.Region, cfg.FromAddress, cfg.FromName, cfg.NotifyAddress)
	default:
		return noop.NewNoopNotifier(), nil
	}
}
