package store

import (
	"context"
	"fmt"

	"github.com/wricardo/mars-rover/config"
	"github.com/wricardo/mars-rover/pkg/log"
	"github.com/wricardo/mars-rover/rover/service"
)

// Open builds the store selected by cfg.Driver. The returned closer is
// always non-nil.
func Open(ctx context.Context, cfg config.StoreConfig) (service.RoverStore, func() error, error) {
	noop := func() error { return nil }
	logger := log.FromCtx(ctx)

	switch cfg.Driver {
	case config.DriverMemory, "":
		logger.Info().Str("driver", config.DriverMemory).Msg("rover store opened")
		return NewMemoryStore(), noop, nil

	case config.DriverFile:
		persistence, err := NewFilePersistence(cfg.DataDir)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create persistence: %w", err)
		}
		s := NewMemoryStoreWithPersistence(persistence)
		if err := s.LoadPersisted(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to load persisted rovers")
		}
		logger.Info().Str("driver", cfg.Driver).Str("data_dir", cfg.DataDir).Msg("rover store opened")
		return s, noop, nil

	case config.DriverSQLite:
		s, err := OpenSQL(ctx, DialectSQLite, cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		logger.Info().Str("driver", cfg.Driver).Str("dsn", cfg.DSN).Msg("rover store opened")
		return s, s.Close, nil

	case config.DriverPostgres:
		s, err := OpenSQL(ctx, DialectPostgres, cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		logger.Info().Str("driver", cfg.Driver).Msg("rover store opened")
		return s, s.Close, nil

	default:
		return nil, noop, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}
