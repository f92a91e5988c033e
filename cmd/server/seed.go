package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/rl1809/graphql-bench/internal/adapter/storage"
	"github.com/rl1809/graphql-bench/internal/config"
	"github.com/rl1809/graphql-bench/internal/core/domain"
	"github.com/rl1809/graphql-bench/internal/core/seed"
	"github.com/rl1809/graphql-bench/internal/port"
)

func newSeedCmd(configPath *string) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy a dataset from one store to another",
		Example: `  server seed --from generate --to file
  server seed --from file --to mysql`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log)
			return copySnapshot(cmd.Context(), cfg, from, to, logger)
		},
	}
	cmd.Flags().StringVar(&from, "from", config.SourceGenerate, "source: generate, file, redis or mysql")
	cmd.Flags().StringVar(&to, "to", config.SourceFile, "destination: file, redis or mysql")
	return cmd
}

func copySnapshot(ctx context.Context, cfg *config.Config, from, to string, logger *slog.Logger) error {
	if from == to {
		return fmt.Errorf("source and destination are both %q", from)
	}

	source, closeSource, err := openSource(ctx, cfg, from, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	sink, closeSink, err := openSink(ctx, cfg, to, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	snap, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading %s snapshot: %w", from, err)
	}
	if err := sink.Save(ctx, snap); err != nil {
		return fmt.Errorf("saving %s snapshot: %w", to, err)
	}

	counts := snap.Counts()
	logger.Info("dataset copied", "from", from, "to", to,
		"users", counts[domain.KindUser],
		"products", counts[domain.KindProduct],
		"orders", counts[domain.KindOrder],
	)
	return nil
}

// generatedSource fabricates a fresh dataset on every Load.
type generatedSource struct {
	opts seed.Options
}

func (g generatedSource) Load(context.Context) (*domain.Snapshot, error) {
	if err := g.opts.Validate(); err != nil {
		return nil, err
	}
	return seed.Generate(g.opts), nil
}

func openSource(ctx context.Context, cfg *config.Config, kind string, logger *slog.Logger) (port.SnapshotSource, func(), error) {
	if kind == config.SourceGenerate {
		gen := cfg.Seed.Generate
		return generatedSource{opts: seed.Options{
			Users:      gen.Users,
			Categories: gen.Categories,
			Products:   gen.Products,
			Reviews:    gen.Reviews,
			Orders:     gen.Orders,
			Seed:       gen.Seed,
		}}, func() {}, nil
	}
	return openRepository(ctx, cfg, kind, logger)
}

func openSink(ctx context.Context, cfg *config.Config, kind string, logger *slog.Logger) (port.SnapshotSink, func(), error) {
	return openRepository(ctx, cfg, kind, logger)
}

func openRepository(ctx context.Context, cfg *config.Config, kind string, logger *slog.Logger) (port.SnapshotRepository, func(), error) {
	switch kind {
	case config.SourceFile:
		return storage.NewJSONAdapter(cfg.Seed.Dir), func() {}, nil

	case config.SourceRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Seed.RedisAddr,
			PoolSize: 10,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		logger.Info("connected to redis", "addr", cfg.Seed.RedisAddr)
		return storage.NewRedisAdapter(rdb, cfg.Seed.RedisPrefix), func() { rdb.Close() }, nil

	case config.SourceMySQL:
		db, err := sql.Open("mysql", cfg.Seed.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect mysql: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping mysql: %w", err)
		}
		logger.Info("connected to mysql")

		adapter := storage.NewMySQLAdapter(db)
		if err := adapter.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return adapter, func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", kind)
	}
}
