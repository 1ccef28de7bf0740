package store

import (
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

const (
	pqUniqueViolation   = "23505"
	mysqlDuplicateEntry = 1062
	defaultMaxOpenConns = 25
	defaultMaxIdleConns = 5
	defaultConnLifetime = 5 * time.Minute
)

// PoolConfig configures the connection pool
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Connect opens and pings a database for the given driver
func Connect(driver, dsn string, pool PoolConfig) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverMySQL:
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	if driver == DriverMySQL {
		var err error
		if dsn, err = normalizeMySQLDSN(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	// Configure connection pool
	db.SetMaxOpenConns(orDefault(pool.MaxOpenConns, defaultMaxOpenConns))
	db.SetMaxIdleConns(orDefault(pool.MaxIdleConns, defaultMaxIdleConns))
	lifetime := pool.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = defaultConnLifetime
	}
	db.SetConnMaxLifetime(lifetime)

	return db, nil
}

// normalizeMySQLDSN makes timestamps scan into time.Time and makes
// RowsAffected count matched rows, as Postgres does
func normalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", errors.Wrap(err, "parse mysql dsn")
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// isUniqueViolation reports whether err is a unique constraint failure in either dialect
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return false
}
