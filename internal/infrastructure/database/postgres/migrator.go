package postgres

import (
	stderrors "errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // database driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // file source driver

	"github.com/turtacn/policylens/internal/config"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/pkg/errors"
)

// RunMigrations applies all pending schema migrations from the configured
// migrations directory.  Called on apiserver startup; a fully migrated
// database is not an error.
func RunMigrations(cfg config.DatabaseConfig, log logging.Logger) error {
	if log == nil {
		log = logging.NewNopLogger()
	}

	m, err := migrate.New("file://"+cfg.MigrationPath, BuildDSN(cfg))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "create migrate instance")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "run migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && !stderrors.Is(err, migrate.ErrNilVersion) {
		log.Warn("could not read migration version", logging.Err(err))
		return nil
	}
	log.Info("database migrations applied",
		logging.Int("version", int(version)),
		logging.Bool("dirty", dirty))
	return nil
}
