package sdk

import (
	"fmt"
	"log/slog"

	"github.com/celerix-dev/imperivm/internal/engine"
)

// Supported persistence drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open initializes an embedded store for driver. For DriverFile, path is a
// data directory; for DriverSQLite it is the database file. Existing data is
// loaded before the store is returned.
func Open(driver, path string, logger *slog.Logger) (*engine.MemStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var p engine.Persister
	switch driver {
	case DriverFile, "":
		fp, err := engine.NewFilePersistence(path)
		if err != nil {
			return nil, err
		}
		fp.Logger = logger
		p = fp
	case DriverSQLite:
		sp, err := engine.OpenSQLitePersistence(path)
		if err != nil {
			return nil, err
		}
		sp.Logger = logger
		p = sp
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}

	allData, err := p.LoadAll()
	if err != nil {
		// Start empty rather than refusing to boot; the next write recreates the data.
		logger.Warn("could not load existing data", "driver", driver, "error", err)
		allData = nil
	}

	store := engine.NewMemStore(allData, p)
	store.SetLogger(logger)
	return store, nil
}
