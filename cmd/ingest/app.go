package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/yash-quizizz/image-search/internal/config"
	"github.com/yash-quizizz/image-search/internal/dataset"
	"github.com/yash-quizizz/image-search/internal/db"
	dbRedis "github.com/yash-quizizz/image-search/internal/db/redis"
	"github.com/yash-quizizz/image-search/internal/domain"
	"github.com/yash-quizizz/image-search/internal/domain/item"
	logpkg "github.com/yash-quizizz/image-search/internal/logger"
	"github.com/yash-quizizz/image-search/internal/metrics"
	documentrepo "github.com/yash-quizizz/image-search/internal/repository/document"
	indexrepo "github.com/yash-quizizz/image-search/internal/repository/index"
	"github.com/yash-quizizz/image-search/internal/transport/bigquery"
	openaiExt "github.com/yash-quizizz/image-search/internal/transport/openai"
	"github.com/yash-quizizz/image-search/internal/transport/slack"
	"github.com/yash-quizizz/image-search/internal/usecase/ingest"
	"github.com/yash-quizizz/image-search/internal/version"
)

const shutdownTimeout = 5 * time.Second

// app is the composition root shared by every subcommand.
type app struct {
	svc         *ingest.Service
	logger      *zap.Logger
	store       db.Store
	stopMetrics func(ctx context.Context) error
}

// newApp connects to the index and wires the pipeline. key selects which
// optional collaborators are built; empty builds only what index creation needs.
func newApp(ctx context.Context, cfg config.Config, env, key string) (*app, error) {
	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting ingest",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	distance, err := db.ParseDistance(cfg.Index.Distance)
	if err != nil {
		return nil, err
	}
	algorithm, err := db.ParseAlgorithm(cfg.Index.Algorithm)
	if err != nil {
		return nil, err
	}

	// valkey-search 1.0.x rejects TEXT fields; text columns fall back to TAG there.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Username:   cfg.Database.Username,
		Password:   cfg.Database.Password,
		DB:         cfg.Database.DB,
		TextSearch: cfg.Database.Driver == "redis",
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	metrics.Register()
	stopMetrics := metrics.Serve(cfg.Metrics.Port, logger)

	ks := domain.Keyspace{Prefix: cfg.Index.KeyPrefix}
	indexes := indexrepo.New(store, ks, cfg.Index.VectorDim).WithVector(indexrepo.VectorConfig{
		Distance:    distance,
		Algorithm:   algorithm,
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	docs := documentrepo.New(store, ks, cfg.Index.VectorDim)

	var (
		rows      dataset.RowSource
		extractor domain.FeatureExtractor
	)
	switch key {
	case dataset.KeyQuizizz:
		src, err := newWarehouse(ctx, cfg.Warehouse, logger)
		if err != nil {
			rows = unavailableSource{err: err}
		} else {
			rows = src
		}
	case dataset.KeyUnsplash:
		extractor = openaiExt.NewExtractor(&openaiExt.Config{
			APIKey:            cfg.Extractor.APIKey,
			BaseURL:           cfg.Extractor.BaseURL,
			Model:             cfg.Extractor.Model,
			Dimensions:        cfg.Extractor.Dimensions,
			Timeout:           time.Duration(cfg.Extractor.TimeoutSec) * time.Second,
			RequestsPerSecond: cfg.Extractor.RequestsPerSecond,
			Logger:            logger,
		})
	}

	alerts := slack.NewNotifier(cfg.Alert.SlackWebhookURL, nil, logger)
	registry := dataset.NewRegistry(dataset.ImageConfig{
		PhotosDir:    cfg.Unsplash.PhotosDir,
		MetadataPath: cfg.Unsplash.MetadataPath,
		Glob:         cfg.Unsplash.Glob,
	}, rows, alerts, logger)

	svc := ingest.New(
		registry,
		ingest.NewLoader(cfg.Ingest.DecodeWorkers),
		extractor,
		indexes,
		docs,
		ks,
		logger,
	)

	return &app{svc: svc, logger: logger, store: store, stopMetrics: stopMetrics}, nil
}

func newWarehouse(ctx context.Context, cfg config.WarehouseConfig, logger *zap.Logger) (*bigquery.Source, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	src, err := bigquery.NewSource(ctx, bigquery.Config{
		ProjectID: cfg.ProjectID,
		Location:  cfg.Location,
		QueryFile: cfg.QueryFile,
		PageSize:  cfg.PageSize,
		Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
	}, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("create warehouse client: %w", err)
	}
	return src, nil
}

// unavailableSource stands in for a warehouse client that could not be built,
// so the dataset degrades and alerts the same way a failed query does.
type unavailableSource struct{ err error }

func (u unavailableSource) FetchQuestions(context.Context) ([]item.Text, error) { return nil, u.err }

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.stopMetrics(ctx); err != nil {
		a.logger.Warn("Metrics server shutdown", zap.Error(err))
	}
	a.store.Close()
	_ = a.logger.Sync()
}
