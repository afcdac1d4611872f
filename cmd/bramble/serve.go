package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	stemdb "github.com/Ramsey-B/stem/pkg/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/bramble/config"
	basedonrepo "github.com/Ramsey-B/bramble/internal/repositories/basedon"
	creatorrepo "github.com/Ramsey-B/bramble/internal/repositories/creator"
	creatorassignmentrepo "github.com/Ramsey-B/bramble/internal/repositories/creatorassignment"
	gamerepo "github.com/Ramsey-B/bramble/internal/repositories/game"
	labelrepo "github.com/Ramsey-B/bramble/internal/repositories/label"
	labelassignmentrepo "github.com/Ramsey-B/bramble/internal/repositories/labelassignment"
	productrepo "github.com/Ramsey-B/bramble/internal/repositories/product"
	publisherrepo "github.com/Ramsey-B/bramble/internal/repositories/publisher"
	referencerepo "github.com/Ramsey-B/bramble/internal/repositories/reference"
	"github.com/Ramsey-B/bramble/pkg/events"
	"github.com/Ramsey-B/bramble/pkg/graph"
	"github.com/Ramsey-B/bramble/pkg/kafka"
	"github.com/Ramsey-B/bramble/pkg/relations"
	creatorroutes "github.com/Ramsey-B/bramble/pkg/routes/creator"
	gameroutes "github.com/Ramsey-B/bramble/pkg/routes/game"
	"github.com/Ramsey-B/bramble/pkg/routes/health"
	labelroutes "github.com/Ramsey-B/bramble/pkg/routes/label"
	productroutes "github.com/Ramsey-B/bramble/pkg/routes/product"
	publisherroutes "github.com/Ramsey-B/bramble/pkg/routes/publisher"
	"github.com/Ramsey-B/bramble/pkg/server"
)

const version = "0.1.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()
		return serve(cfg, logger)
	},
}

func serve(cfg *config.Config, logger ectologger.Logger) error {
	sqlxDB, err := sqlx.Connect(cfg.DatabaseDriver, postgresDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer sqlxDB.Close()

	sqlxDB.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	sqlxDB.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	sqlxDB.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

	if err := runMigrations(cfg, sqlxDB, logger); err != nil {
		return err
	}

	db := stemdb.NewDatabaseInstance(sqlxDB, logger)

	publishers := publisherrepo.NewRepository(db, logger)
	creators := creatorrepo.NewRepository(db, logger)
	products := productrepo.NewRepository(db, logger)
	games := gamerepo.NewRepository(db, logger)
	labels := labelrepo.NewRepository(db, logger)
	references := referencerepo.NewRepository(db, logger)
	creatorAssignments := creatorassignmentrepo.NewRepository(db, logger)
	labelAssignments := labelassignmentrepo.NewRepository(db, logger)
	basedOn := basedonrepo.NewRepository(db, logger)

	replacer := relations.NewReplacer(references, creatorAssignments, labelAssignments, basedOn, logger)

	var emitter relations.HostEventEmitter
	if cfg.KafkaEnabled {
		producer := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
		emitter = events.NewEmitter(producer, logger)
	}

	var lineage relations.LineageProjector
	var graphClient *graph.Client
	var projector *graph.Projector
	if cfg.GraphDBEnabled {
		graphClient, err = graph.NewClient(graph.Config{
			Host:     cfg.GraphDBHost,
			Port:     cfg.GraphDBPort,
			Username: cfg.GraphDBUser,
			Password: cfg.GraphDBPassword,
		}, logger)
		if err != nil {
			return err
		}
		defer graphClient.Close(context.Background())
		projector = graph.NewProjector(graphClient, logger)
		lineage = projector
	}

	orchestrator := relations.NewOrchestrator(
		publishers, creators, products, games,
		replacer, creatorAssignments, labelAssignments, basedOn,
		emitter, lineage, logger,
	)

	checker := health.NewChecker(sqlxDB, graphClient, version)
	handlers := server.Handlers{
		Health:     checker,
		Publishers: publisherroutes.NewHandler(orchestrator, publishers, references),
		Creators:   creatorroutes.NewHandler(orchestrator, creators, references),
		Products:   productroutes.NewHandler(orchestrator, products, references, creatorAssignments, labelAssignments),
		Games:      gameroutes.NewHandler(orchestrator, games, references, creatorAssignments, labelAssignments, basedOn, projector),
		Labels:     labelroutes.NewHandler(labels),
	}

	srv := server.New(cfg, handlers, logger)
	checker.SetReady(true)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("shutting down")
		checker.SetReady(false)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func runMigrations(cfg *config.Config, sqlxDB *sqlx.DB, logger ectologger.Logger) error {
	driver, err := migratepg.WithInstance(sqlxDB.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	ms := stemdb.NewMigrationService(logger, &stemdb.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	if err := ms.Migrate(cfg.DatabaseName, driver); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
