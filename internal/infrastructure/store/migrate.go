package store

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migrations
var migrationsFS embed.FS

// Migration directions
const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// Migrate applies the embedded schema migrations for driver.
// It opens and closes its own connection.
func Migrate(driver, dsn, direction string) error {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return errors.Wrap(err, "open database")
	}

	m, err := newMigrator(db, driver)
	if err != nil {
		db.Close()
		return err
	}
	defer m.Close()

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Down()
	default:
		return errors.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && err != migrate.ErrNoChange {
		return errors.Wrapf(err, "migrate %s", direction)
	}
	return nil
}

func newMigrator(db *sql.DB, driver string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, errors.Wrap(err, "load migrations")
	}

	var target database.Driver
	switch driver {
	case DriverPostgres:
		target, err = migratepostgres.WithInstance(db, &migratepostgres.Config{})
	case DriverMySQL:
		target, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "init migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		return nil, errors.Wrap(err, "init migrator")
	}
	return m, nil
}
