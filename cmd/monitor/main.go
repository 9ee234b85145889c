package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/MichalMitros/restock-monitor/cmd/monitor/config"
	"github.com/MichalMitros/restock-monitor/internal/catalog"
	"github.com/MichalMitros/restock-monitor/internal/fetcher"
	"github.com/MichalMitros/restock-monitor/internal/handler"
	"github.com/MichalMitros/restock-monitor/internal/monitor"
	"github.com/MichalMitros/restock-monitor/internal/notifier"
	"github.com/MichalMitros/restock-monitor/internal/platform/rabbitmq"
	"github.com/MichalMitros/restock-monitor/internal/platform/storage"
	"github.com/MichalMitros/restock-monitor/pkg/v1/commander"
	_ "github.com/lib/pq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// store is stock state, runs, notifications and subscriptions storage.
type store interface {
	monitor.Store
	notifier.Store
	subscriptionStore
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	opts, err := config.ParseOptions(os.Args[1:])
	if config.IsHelp(err) {
		return
	}
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't parse command line options")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't parse env variables")
	}
	cfg.Apply(opts)

	if err := errors.Join(cfg.Validate(opts.Mode), opts.Validate()); err != nil {
		logger.Fatal().
			Err(err).
			Msg("invalid configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	// rabbitmq is optional outside of listen and command modes.
	var amqpConnection *amqp.Connection
	var rmq *rabbitmq.RabbitMQ
	if cfg.RabbitMQ.URL != "" {
		amqpConnection, err = amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't open RabbitMQ connection")
		}

		rmq, err = rabbitmq.NewRabbitMQ(amqpConnection, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't open RabbitMQ channel")
		}

		if err := rmq.Bind(cfg.RabbitMQ.Queue, cfg.RabbitMQ.CommandRoutingKey); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't bind RabbitMQ queue")
		}
	}

	if opts.Mode == config.ModeCommand {
		cmndr := commander.NewCheckCommander(commander.NewRabbitMQSender(rmq, cfg.RabbitMQ.CommandRoutingKey))
		if err := cmndr.SendCheckCommand(ctx, opts.Brands...); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't send check command")
		}
		logger.Info().Strs("brands", opts.Brands).Msg("check command sent")
		closeConnections(&logger, nil, amqpConnection)
		return
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't load catalog")
	}

	db, st := openStore(ctx, &logger, cfg)

	if config.IsSubscription(opts.Mode) {
		brands, err := manageSubscriptions(ctx, st, cat, opts)
		closeConnections(&logger, db, amqpConnection)
		if err != nil {
			logger.Fatal().
				Err(err).
				Str("mode", opts.Mode).
				Msg("can't update subscriptions")
		}
		logger.Info().
			Str("mode", opts.Mode).
			Strs("brands", brands).
			Msg("subscriptions updated")
		return
	}

	agg := notifier.NewAggregator(
		st,
		newSender(&logger, cfg, rmq),
		&logger,
		notifierOptions(cfg, opts.Mode)...,
	)

	mon := monitor.NewMonitor(
		cat,
		fetcher.NewFetcher(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.UserAgent),
		st,
		agg,
		&logger,
		cfg.Monitor,
		monitor.WithPacer(monitor.NewPacer(cfg.Pacing, time.Now().UnixNano())),
	)

	// handle graceful shutdown and context cancellation
	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-termChan:
			logger.Info().Msg("graceful shutdown start")
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info().
		Str("mode", opts.Mode).
		Strs("brands", cat.Names()).
		Msg("restock monitor up and running")

	exitCode := 0

	switch opts.Mode {
	case config.ModeOnce, config.ModeTest:
		if _, err := mon.RunCycle(ctx, opts.Brands...); err != nil {
			logger.Error().
				Err(err).
				Msg("monitoring cycle failed")
			exitCode = 1
		}
	case config.ModeContinuous:
		if err := mon.RunContinuous(ctx); err != nil {
			logger.Error().
				Err(err).
				Msg("continuous monitoring failed")
			exitCode = 1
		}
	case config.ModeSchedule:
		if err := mon.RunScheduled(ctx, cfg.Schedule); err != nil {
			logger.Error().
				Err(err).
				Msg("scheduled monitoring failed")
			exitCode = 1
		}
	case config.ModeListen:
		han := handler.NewHandler(rmq, mon, &logger)

		// start consuming and handling messages
		if err := han.Start(ctx, cfg.RabbitMQ.Queue); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't start consuming")
		}

		<-ctx.Done()

		// wait for consumer to finish
		<-rmq.Done()
	}

	cancel()
	closeConnections(&logger, db, amqpConnection)

	logger.Info().Msg("graceful shutdown successful")
	os.Exit(exitCode)
}

// openStore opens Postgres store when DATABASE_URL is set and local SQLite store otherwise.
func openStore(ctx context.Context, logger *zerolog.Logger, cfg config.Config) (*sql.DB, store) {
	if cfg.DatabaseURL == "" {
		db, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't open SQLite database")
		}

		st, err := storage.NewSQLite(ctx, db)
		if err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't create SQLite schema")
		}

		return db, st
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't open Postgres connection")
	}

	version, dirty, err := storage.RunMigrations(db)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't run migrations")
	}
	logger.Debug().
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("database migrated")

	return db, storage.NewPostgres(db)
}

func newSender(logger *zerolog.Logger, cfg config.Config, rmq *rabbitmq.RabbitMQ) notifier.Sender {
	switch cfg.Notifier.Transport {
	case config.TransportRabbitMQ:
		return notifier.NewRabbitMQSender(rmq, cfg.Notifier.RoutingKey)
	case config.TransportLog:
		return notifier.NewLogSender(logger)
	default:
		return notifier.NewHTTPSender(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.Notifier.URL, cfg.UserAgent)
	}
}

func notifierOptions(cfg config.Config, mode string) []notifier.Option {
	ops := []notifier.Option{
		notifier.WithWindow(cfg.Notifier.Window),
		notifier.WithClaimTTL(cfg.Notifier.ClaimTTL),
		notifier.WithBrandPause(cfg.Notifier.BrandPause),
		notifier.WithCredential(cfg.Notifier.Credential),
	}
	if mode == config.ModeTest {
		ops = append(ops, notifier.WithDryRun())
	}

	return ops
}

func closeConnections(logger *zerolog.Logger, db *sql.DB, amqpConnection *amqp.Connection) {
	wg := sync.WaitGroup{}

	if db != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := db.Close(); err != nil {
				logger.Error().
					Err(err).
					Msg("can't close database connection")
			}
		}()
	}

	if amqpConnection != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := amqpConnection.Close(); err != nil {
				logger.Error().
					Err(err).
					Msg("can't close RabbitMQ connection")
			}
		}()
	}

	wg.Wait()
}
