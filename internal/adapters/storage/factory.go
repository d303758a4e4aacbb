package storage

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"golang.org/x/exp/slog"

	"github.com/stoik/phishcatch/internal/config"
	"github.com/stoik/phishcatch/internal/ports"
)

// New creates the ports.Storage selected by cfg.Backend.
// Postgres migrations run here when enabled, before the store is returned.
func New(ctx context.Context, cfg config.Storage, log *slog.Logger) (ports.Storage, error) {
	log = log.With(slog.String("component", "storage"), slog.String("backend", cfg.Backend))

	switch cfg.Backend {
	case config.BackendMemory:
		log.Warn("Using in-memory storage, records are lost on restart")
		return NewMemoryStore(), nil

	case config.BackendSQLite:
		store, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite store: %w", err)
		}
		log.Info("Using SQLite storage", slog.String("path", cfg.SQLitePath))
		return store, nil

	case config.BackendPostgres:
		if cfg.Migrations {
			if err := NewMigration(cfg.DatabaseURL, DefaultEngine).Up(); err != nil {
				return nil, err
			}
			log.Info("Database migrations applied")
		}
		store, err := NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres store: %w", err)
		}
		log.Info("Using PostgreSQL storage")
		return store, nil

	case config.BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		var client *dynamodb.Client
		if cfg.DynamoEndpoint != "" {
			client = dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
				o.BaseEndpoint = &cfg.DynamoEndpoint
			})
			log.Info("Using DynamoDB endpoint", slog.String("endpoint", cfg.DynamoEndpoint))
		} else {
			client = dynamodb.NewFromConfig(awsCfg)
		}

		log.Info("Using DynamoDB table", slog.String("table", cfg.DynamoTable))
		return NewDynamoStore(client, cfg.DynamoTable), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
