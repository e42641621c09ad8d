// Package backends opens the persistence backend selected in config and
// builds the choices sources declared in definition files.
package backends

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/goliatone/go-formfields/internal/config"
	"github.com/goliatone/go-formfields/pkg/datastore"
	"github.com/goliatone/go-formfields/pkg/datastore/dynamostore"
	"github.com/goliatone/go-formfields/pkg/datastore/memory"
	"github.com/goliatone/go-formfields/pkg/datastore/redisstore"
	"github.com/goliatone/go-formfields/pkg/datastore/sqlstore"
)

// Opened is a ready backend plus whatever must be closed with it.
type Opened struct {
	Backend datastore.Backend
	// DB is set for the SQL backends and feeds table datasources.
	DB      *gorm.DB
	closers []func() error
}

// Close releases connections held by the backend.
func (o *Opened) Close() error {
	if o == nil {
		return nil
	}
	var errs []error
	for i := len(o.closers) - 1; i >= 0; i-- {
		if err := o.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	o.closers = nil
	return errors.Join(errs...)
}

// Open connects the backend named in cfg.Backend. SQL backends are migrated
// before returning.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Opened, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case config.BackendMemory, "":
		logger.Info("using in-memory backend")
		return &Opened{Backend: memory.New()}, nil

	case config.BackendSQLite, config.BackendMySQL:
		dialect := sqlstore.DialectSQLite
		if cfg.Backend == config.BackendMySQL {
			dialect = sqlstore.DialectMySQL
		}
		db, err := sqlstore.Open(dialect, cfg.DSN, &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("backends: %w", err)
		}
		if dialect == sqlstore.DialectSQLite {
			// in-memory sqlite databases live as long as their connection
			sqlDB.SetMaxOpenConns(1)
		}
		opened := &Opened{DB: db, closers: []func() error{sqlDB.Close}}
		backend, err := sqlstore.New(db)
		if err != nil {
			_ = opened.Close()
			return nil, err
		}
		if err := backend.Migrate(ctx); err != nil {
			_ = opened.Close()
			return nil, err
		}
		opened.Backend = backend
		logger.Info("using sql backend", zap.String("dialect", dialect))
		return opened, nil

	case config.BackendRedis:
		client, err := redisstore.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		backend, err := redisstore.New(client)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		logger.Info("using redis backend", zap.String("addr", cfg.Redis.Addr))
		return &Opened{Backend: backend, closers: []func() error{client.Close}}, nil

	case config.BackendDynamo:
		client, err := dynamostore.NewClient(ctx, cfg.Dynamo.Region, cfg.Dynamo.AccessKeyID, cfg.Dynamo.SecretAccessKey)
		if err != nil {
			return nil, err
		}
		backend, err := dynamostore.New(client, cfg.Dynamo.Table)
		if err != nil {
			return nil, err
		}
		logger.Info("using dynamodb backend",
			zap.String("table", cfg.Dynamo.Table),
			zap.String("region", cfg.Dynamo.Region),
		)
		return &Opened{Backend: backend}, nil
	}
	return nil, fmt.Errorf("backends: unknown backend %q", cfg.Backend)
}
