package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erazemk/lostfound/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(mg db.Migrator) error {
			if err := mg.Up(); err != nil {
				return err
			}
			return printVersion(mg)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert migrations",
	Long: `Revert migrations. By default only the lost-and-found tables are dropped
and operator accounts are kept; --all reverts every migration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		return withMigrator(func(mg db.Migrator) error {
			var err error
			if all {
				err = mg.Down()
			} else {
				err = mg.DownTo(db.VersionOperators)
			}
			if err != nil {
				return err
			}
			return printVersion(mg)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(printVersion)
	},
}

func init() {
	migrateDownCmd.Flags().Bool("all", false, "also drop operator accounts and settings")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

func withMigrator(fn func(db.Migrator) error) error {
	database, _, mg, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(mg)
}

func printVersion(mg db.Migrator) error {
	v, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Printf("schema version %d (%s)\n", v, state)
	return nil
}
