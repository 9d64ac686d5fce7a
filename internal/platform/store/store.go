// Package store opens the transaction store selected by STORE_DRIVER.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/finance_dashboard/internal/adapters/supabase"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/finance_dashboard/internal/platform/config"
	"github.com/SscSPs/finance_dashboard/internal/repositories/database/pgsql"
	"github.com/SscSPs/finance_dashboard/internal/utils/dates"
	"github.com/SscSPs/finance_dashboard/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is an opened backend. Pool is nil for the supabase driver.
type Store struct {
	Repos portsrepo.RepositoryProvider
	Pool  *pgxpool.Pool
}

// Close releases the database pool, if any.
func (s *Store) Close() {
	if s.Pool != nil {
		database.ClosePgxPool(s.Pool)
	}
}

// Open connects to the configured backend. cfg must already be validated.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	normalizer := dates.NewNormalizer(loc)

	switch cfg.StoreDriver {
	case config.DriverSupabase:
		client, err := supabase.NewClient(supabase.Options{
			URL:        cfg.SupabaseURL,
			AnonKey:    cfg.SupabaseAnonKey,
			ServiceKey: cfg.SupabaseServiceKey,
			Table:      cfg.SupabaseTable,
			Timeout:    cfg.HTTPTimeout,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("Using supabase store", slog.String("table", client.Table()))
		return &Store{Repos: portsrepo.RepositoryProvider{
			TransactionRepo: supabase.NewTransactionRepository(client, normalizer),
			AuthProvider:    supabase.NewAuthProvider(client),
			ChangeFeed:      supabase.NewRealtimeFeed(client),
		}}, nil

	case config.DriverPostgres:
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		if cfg.RunMigrations {
			if err := pgsql.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				pool.Close()
				return nil, err
			}
		}
		logger.Info("Using postgres store")
		return &Store{Repos: pgsql.NewRepositoryProvider(pool, normalizer), Pool: pool}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
