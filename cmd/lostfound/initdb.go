package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schema, reference data and the first admin account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, st, mg, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := mg.Up(); err != nil {
			return err
		}
		if err := db.Seed(cmd.Context(), mg); err != nil {
			return err
		}
		fmt.Printf("Database ready: %s (%s)\n", cfg.DB.DSN, cfg.DB.Driver)
		fmt.Println("Schema and reference data initialized.")
		fmt.Println()

		password, err := ensureAdmin(cmd.Context(), st, cfg.Admin.Username)
		if err != nil {
			return err
		}
		if password == "" {
			fmt.Println("An admin account already exists; no account was created.")
			return nil
		}
		printAdminCreated(cfg.Admin.Username, password)
		return nil
	},
}

func init() {
	initCmd.Flags().StringP("user", "u", "admin", "admin username")
}

// ensureAdmin creates an admin account with a generated password when no
// active admin exists. It returns the password, or "" if nothing was created.
func ensureAdmin(ctx context.Context, st *store.Store, username string) (string, error) {
	n, err := st.CountAdmins(ctx)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", nil
	}

	password, err := auth.GeneratePassword()
	if err != nil {
		return "", err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	if _, err := st.CreateAccount(ctx, username, hash, model.RoleAdmin); err != nil {
		return "", fmt.Errorf("creating admin account: %w", err)
	}
	return password, nil
}

// printAdminCreated prints the bootstrap credentials to stdout.
func printAdminCreated(username, password string) {
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password; it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}
