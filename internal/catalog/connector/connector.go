package connector

import (
	"context"
	"fmt"
	"strconv"

	"github.com/smallbiznis/quotient/internal/catalog/domain"
	"github.com/smallbiznis/quotient/internal/config"
	"github.com/smallbiznis/quotient/internal/observability/logger"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
	"github.com/smallbiznis/quotient/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type (
	Params struct {
		fx.In
		Config config.Config
		Log    *zap.Logger
		Store  storedomain.Service
	}

	connector struct {
		driver string
		log    *zap.Logger
		store  storedomain.Service
	}
)

func Provide(p Params) domain.Connector {
	driver := p.Config.CatalogDBType
	if driver == "" {
		driver = "sqlserver"
	}

	return &connector{
		driver: driver,
		log:    p.Log.Named("catalog.connector"),
		store:  p.Store,
	}
}

// Open resolves the saved endpoint for the role and dials it. The returned
// release func closes the underlying pool; the handle must not be used after.
func (c *connector) Open(ctx context.Context, role string) (*gorm.DB, func(), error) {
	cfg, err := c.store.ConnectionConfig(ctx, role)
	if err != nil {
		return nil, nil, err
	}

	dialector, err := db.Dialect(db.Config{
		Type:     c.driver,
		Host:     cfg.Host,
		Port:     strconv.Itoa(cfg.Port),
		Name:     cfg.DatabaseName,
		User:     cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(logger.DefaultGormLoggerConfig()),
		TranslateError: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open %s catalog: %w", role, err)
	}

	release := func() {
		sqlDB, err := conn.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			c.log.Warn("close catalog connection",
				zap.String("role", role),
				zap.Error(err),
			)
		}
	}

	return conn, release, nil
}
