package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/petcare-labs/petcare/internal/auth"
	"github.com/petcare-labs/petcare/internal/config"
	"github.com/petcare-labs/petcare/internal/fixtures"
	"github.com/petcare-labs/petcare/internal/retry"
	"github.com/petcare-labs/petcare/internal/status"
	"github.com/petcare-labs/petcare/internal/storage"
)

// store is the opened repository plus whatever must be released with it.
type store struct {
	repo    storage.Repository
	closers []func() error

	// schema reports whether migrations are applied; nil for memory.
	schema status.Check
}

func (s *store) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// loadDataset returns the seed file's dataset, or the built-in household.
func loadDataset(cfg *config.Config, now time.Time) (*fixtures.Dataset, error) {
	if cfg.Storage.SeedFile != "" {
		return fixtures.LoadFile(cfg.Storage.SeedFile, now)
	}
	return fixtures.Default(now)
}

// openStore builds the configured repository. SQL backends are retried
// until reachable, migrated, and seeded only when empty.
func openStore(ctx context.Context, cfg *config.Config, now func() time.Time, logger *zap.Logger) (*store, error) {
	if cfg.Storage.Driver == "memory" {
		return openMemoryStore(ctx, cfg, now, logger)
	}

	repo, err := storage.OpenSQL(storage.SQLConfig{
		Driver:          cfg.Storage.Driver,
		DSN:             cfg.Storage.DSN,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return nil, err
	}
	s := &store{repo: repo, closers: []func() error{repo.Close}}

	policy := retry.DefaultConfig()
	policy.OnAttempt = func(attempt int, err error, next time.Duration) {
		if next == 0 {
			logger.Error("storage unreachable, giving up", zap.Int("attempt", attempt), zap.Error(err))
			return
		}
		logger.Warn("storage unreachable, retrying",
			zap.Int("attempt", attempt), zap.Duration("backoff", next), zap.Error(err))
	}
	if res := retry.ExecuteWithRetry(ctx, policy, repo.CheckConnectivity); !res.Success {
		s.Close()
		return nil, res.Err()
	}

	if err := repo.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	logger.Info("storage ready", zap.String("driver", repo.Dialect().Name))
	runner := storage.NewMigrationRunner(repo.DB(), repo.Dialect())
	s.schema = func(ctx context.Context) error {
		applied, err := runner.Applied(ctx)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			return fmt.Errorf("no migrations applied")
		}
		return nil
	}

	if cfg.Storage.Seed {
		ds, err := loadDataset(cfg, now())
		if err != nil {
			s.Close()
			return nil, err
		}
		seeded, err := storage.SeedIfEmpty(ctx, repo, ds)
		if err != nil {
			s.Close()
			return nil, err
		}
		if seeded {
			logger.Info("seeded demo household", zap.Int("records", ds.Size()))
		}
	}
	return s, nil
}

func openMemoryStore(ctx context.Context, cfg *config.Config, now func() time.Time, logger *zap.Logger) (*store, error) {
	opts := []storage.MemoryOption{storage.WithLatency(cfg.Storage.Latency)}
	if cfg.Storage.Seed {
		ds, err := loadDataset(cfg, now())
		if err != nil {
			return nil, err
		}
		opts = append(opts, storage.WithDataset(ds))
		logger.Info("loaded demo household", zap.Int("records", ds.Size()))
	}
	repo := storage.NewMemoryRepository(opts...)
	s := &store{repo: repo, closers: []func() error{repo.Close}}

	if cfg.Storage.WatchSeed {
		w, err := fixtures.NewWatcher(cfg.Storage.SeedFile, now, repo.Load, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to watch seed file: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			w.Stop()
			return nil, err
		}
		s.closers = append(s.closers, func() error { w.Stop(); return nil })
	}
	return s, nil
}

// newAuthenticator registers every configured user. auth.token, when set,
// is also accepted as a caretaker so a single-user setup needs one setting.
func newAuthenticator(cfg *config.Config) (*auth.StaticTokenAuthenticator, error) {
	authn := auth.NewStaticTokenAuthenticator()
	for i, u := range cfg.Auth.Users {
		roles := u.Roles
		if len(roles) == 0 {
			roles = []string{auth.RoleViewer}
		}
		authn.RegisterToken(u.Token, &auth.User{
			ID:    fmt.Sprintf("user-%d", i+1),
			Name:  u.Name,
			Roles: roles,
		})
	}
	if cfg.Auth.Token != "" {
		authn.RegisterToken(cfg.Auth.Token, &auth.User{
			ID:    "owner",
			Name:  "owner",
			Roles: []string{auth.RoleCaretaker},
		})
	}
	if authn.Len() == 0 {
		return nil, fmt.Errorf("no tokens configured: set auth.token or auth.users (PETCARE_AUTH_TOKEN)")
	}
	return authn, nil
}
