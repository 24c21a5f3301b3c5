package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"go.uber.org/zap"

	"jobboard/internal/app/config"
	httpapi "jobboard/internal/app/http"
	"jobboard/internal/app/http/handler"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/job"
	"jobboard/internal/infrastructure/async"
	"jobboard/internal/infrastructure/broker"
	"jobboard/internal/infrastructure/db/pg"
	identityclient "jobboard/internal/infrastructure/identity"
	"jobboard/internal/infrastructure/logging"
	"jobboard/internal/notify"
)

const exchangeName = "job.board.exchange"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.NewLogger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db open error", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("db ping error", zap.Error(err))
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("goose dialect error", zap.Error(err))
	}
	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatal("goose up error", zap.Error(err))
	}

	uow := pg.NewTxManager(db)

	exchange := broker.NewExchange(ctx, exchangeName, broker.RetryPolicy{
		MaxAttempts: cfg.ConsumerRetries,
		Backoff:     cfg.ConsumerBackoff,
	}, log)
	defer exchange.Close()

	publisher := async.NewPublisher(ctx, exchange, cfg.PublishWorkers, cfg.PublishTimeout, log)
	defer publisher.Close()

	mailer := notify.NewLogMailer(log)
	consumer := notify.NewConsumer(mailer, cfg.DeliveryTimeout, log)
	if err := consumer.Bind(exchange, cfg.ConsumerWorkers); err != nil {
		log.Fatal("consumer bind error", zap.Error(err))
	}

	authClient := identityclient.NewClient(cfg.AuthServiceURL, cfg.AuthTimeout)

	jobRepo := pg.NewJobRepository(db)
	appRepo := pg.NewApplicationRepository(db)

	jobSvc := job.NewService(uow, jobRepo, authClient, publisher, log)
	appSvc := application.NewService(uow, appRepo, jobRepo, publisher)

	h := handler.New(jobSvc, appSvc, log)
	router := httpapi.NewRouter(h, authClient, log)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
