// Package storage opens the configured report store.
package storage

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/pitchroom/domain/config"
	"github.com/felixgeelhaar/pitchroom/domain/report"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/badger"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/dynamodb"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/filesystem"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/memory"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/mongodb"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/objectstore"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/objectstore/azblob"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/objectstore/gcs"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/objectstore/s3"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/postgres"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/redis"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/sqlite"
)

// CloseFunc releases a store's connections.
type CloseFunc func() error

func noClose() error { return nil }

// Open builds the report store named by cfg.Backend. The returned
// CloseFunc is never nil.
func Open(ctx context.Context, cfg config.StorageConfig) (report.Store, CloseFunc, error) {
	switch cfg.Backend {
	case "", "filesystem":
		dir := cfg.Filesystem.Dir
		if dir == "" {
			dir = "reports"
		}
		s, err := filesystem.NewReportStore(dir)
		if err != nil {
			return nil, noClose, err
		}
		return s, noClose, nil

	case "memory":
		return memory.NewReportStore(), noClose, nil

	case "sqlite":
		s, err := sqlite.NewReportStore(sqlite.FromPath(cfg.SQLite.Path))
		if err != nil {
			return nil, noClose, err
		}
		return s, s.Close, nil

	case "postgres":
		pgCfg := postgres.DefaultConfig()
		pgCfg.DSN = cfg.Postgres.DSN
		pool, err := postgres.Open(ctx, pgCfg)
		if err != nil {
			return nil, noClose, err
		}
		s := postgres.NewReportStore(pool, cfg.Postgres.Schema)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, noClose, err
		}
		return s, func() error { pool.Close(); return nil }, nil

	case "redis":
		opts := []redis.ConfigOption{
			redis.WithAddress(cfg.Redis.Addr),
			redis.WithPassword(cfg.Redis.Password),
			redis.WithDB(cfg.Redis.DB),
			redis.WithTTL(cfg.Redis.TTL.Duration()),
		}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithKeyPrefix(cfg.Redis.Prefix))
		}
		s, err := redis.NewReportStore(redis.DefaultConfig(), opts...)
		if err != nil {
			return nil, noClose, err
		}
		return s, s.Close, nil

	case "badger":
		opts := []badger.Option{badger.WithDir(cfg.Badger.Dir)}
		if cfg.Badger.InMemory {
			opts = append(opts, badger.WithInMemory())
		}
		s, err := badger.NewReportStore(badger.DefaultConfig(), opts...)
		if err != nil {
			return nil, noClose, err
		}
		return s, s.Close, nil

	case "mongodb":
		opts := []mongodb.ConfigOption{mongodb.WithURI(cfg.MongoDB.URI)}
		if cfg.MongoDB.Database != "" {
			opts = append(opts, mongodb.WithDatabase(cfg.MongoDB.Database))
		}
		client, err := mongodb.NewClient(ctx, opts...)
		if err != nil {
			return nil, noClose, err
		}
		s := mongodb.NewReportStore(client, cfg.MongoDB.Collection)
		closeFn := func() error { return client.Close(context.Background()) }
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = closeFn()
			return nil, noClose, err
		}
		return s, closeFn, nil

	case "dynamodb":
		opts := []dynamodb.ConfigOption{}
		if cfg.DynamoDB.Region != "" {
			opts = append(opts, dynamodb.WithRegion(cfg.DynamoDB.Region))
		}
		if cfg.DynamoDB.Endpoint != "" {
			opts = append(opts, dynamodb.WithEndpoint(cfg.DynamoDB.Endpoint))
		}
		if cfg.DynamoDB.Table != "" {
			opts = append(opts, dynamodb.WithReportsTableName(cfg.DynamoDB.Table))
		}
		client, err := dynamodb.NewClient(ctx, opts...)
		if err != nil {
			return nil, noClose, err
		}
		if err := client.CreateReportsTable(ctx); err != nil {
			return nil, noClose, err
		}
		return dynamodb.NewReportStore(client), noClose, nil

	case "s3":
		client, err := s3.New(ctx, s3.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, noClose, err
		}
		return bucketStore(client, cfg.S3.Prefix, noClose)

	case "gcs":
		client, err := gcs.New(ctx, gcs.Config{
			Bucket:          cfg.GCS.Bucket,
			CredentialsFile: cfg.GCS.CredentialsFile,
		})
		if err != nil {
			return nil, noClose, err
		}
		return bucketStore(client, cfg.GCS.Prefix, client.Close)

	case "azblob":
		client, err := azblob.New(azblob.Config{
			AccountName:      cfg.AzBlob.AccountName,
			AccountKey:       cfg.AzBlob.AccountKey,
			ConnectionString: cfg.AzBlob.ConnectionString,
			Container:        cfg.AzBlob.Container,
		})
		if err != nil {
			return nil, noClose, err
		}
		return bucketStore(client, cfg.AzBlob.Prefix, noClose)

	default:
		return nil, noClose, fmt.Errorf("%w: unknown storage backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}

func bucketStore(client objectstore.Client, prefix string, closeFn CloseFunc) (report.Store, CloseFunc, error) {
	s, err := objectstore.NewReportStore(client, prefix)
	if err != nil {
		_ = closeFn()
		return nil, noClose, err
	}
	return s, closeFn, nil
}
