// Command lostfound runs the lost-and-found service and its maintenance tasks.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/logging"
	"github.com/erazemk/lostfound/internal/query"
	"github.com/erazemk/lostfound/internal/store"
)

var (
	configPath string
	cfg        *config.Config
	closeLog   = func() {}
)

var rootCmd = &cobra.Command{
	Use:           "lostfound",
	Short:         "Lost-and-found item tracking service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}
		closeLog, err = logging.Setup(cfg.Logging())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file (yaml, toml or json)")
	pf.String("driver", "sqlite", "database driver: sqlite or pgx")
	pf.StringP("dsn", "d", "lostfound.sqlite3", "database path or postgres:// URL")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-format", "text", "log format: text or json")
	pf.StringP("log", "l", "", "log file path (default: stdout/stderr only)")

	rootCmd.AddCommand(serveCmd, initCmd, migrateCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openStore opens the configured database and returns a store and migrator
// over it. The caller closes the returned handle.
func openStore() (*sql.DB, *store.Store, db.Migrator, error) {
	dialect, err := query.DialectFor(cfg.DB.Driver)
	if err != nil {
		return nil, nil, db.Migrator{}, err
	}
	database, err := db.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, nil, db.Migrator{}, err
	}
	mg := db.Migrator{DB: database, Driver: cfg.DB.Driver, DSN: cfg.DB.DSN}
	return database, store.New(database, dialect), mg, nil
}
