package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"koomy/portal/internal/logging"
	gormModels "koomy/portal/internal/models/gorm"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Ledger bundles the two views of the upload ledger database: GORM for
// writes, sqlx for the reporting queries.
type Ledger struct {
	ORM *gorm.DB
	SQL *sqlx.DB
}

// OpenLedger connects to the ledger database and migrates its schema
func OpenLedger(ctx context.Context, driver, dsn string) (*Ledger, error) {
	var (
		orm *gorm.DB
		sq  *sqlx.DB
		err error
	)
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch driver {
	case DriverPostgres:
		sq, err = ConnectPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		orm, err = gorm.Open(postgres.New(postgres.Config{Conn: sq.DB}), cfg)
		if err != nil {
			sq.Close()
			return nil, fmt.Errorf("failed to open gorm on postgres: %w", err)
		}
	case DriverSQLite:
		orm, err = gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite ledger: %w", err)
		}
		sqlDB, err := orm.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		// one connection so :memory: databases are shared between gorm and sqlx
		sqlDB.SetMaxOpenConns(1)
		sq = sqlx.NewDb(sqlDB, "sqlite3")
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", driver)
	}

	if err := orm.WithContext(ctx).AutoMigrate(&gormModels.UploadAttempt{}); err != nil {
		sq.Close()
		return nil, fmt.Errorf("failed to migrate ledger: %w", err)
	}

	logging.Info("Upload ledger ready", "driver", driver)
	return &Ledger{ORM: orm, SQL: sq}, nil
}

func (l *Ledger) Ping(ctx context.Context) error {
	return l.SQL.PingContext(ctx)
}

func (l *Ledger) Close() error {
	return l.SQL.Close()
}
