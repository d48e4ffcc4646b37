package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/query"
)

const accountColumns = `AccountID, Username, PasswordHash, Role, CreatedAt, DeletedAt`

func scanAccount(rows *sql.Rows) (model.Account, error) {
	var a model.Account
	if err := rows.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.DeletedAt); err != nil {
		return a, fmt.Errorf("scanning account: %w", err)
	}
	return a, nil
}

func (s *Store) getAccount(ctx context.Context, op, where string, arg any) (*model.Account, error) {
	var acct *model.Account
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op:   op,
		SQL:  `SELECT ` + accountColumns + ` FROM Account WHERE ` + where,
		Args: []any{arg},
	}, func(rows *sql.Rows) error {
		a, err := scanAccount(rows)
		acct = &a
		return err
	})
	return acct, err
}

// CreateAccount creates an operator account.
func (s *Store) CreateAccount(ctx context.Context, username, passwordHash, role string) (*model.Account, error) {
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("%w: role %q", query.ErrInvalidValue, role)
	}
	res, err := s.exec.Write(ctx, s.db, query.Statement{
		Op:        "insert_account",
		SQL:       `INSERT INTO Account (Username, PasswordHash, Role) VALUES (?, ?, ?) RETURNING AccountID`,
		Args:      []any{username, passwordHash, role},
		Returning: "AccountID",
	})
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}
	return s.GetAccount(ctx, res.ID)
}

// GetAccount returns an account by ID, or nil if there is none.
func (s *Store) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	acct, err := s.getAccount(ctx, "get_account", `AccountID = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}
	return acct, nil
}

// GetAccountByUsername returns the account with the given username. The
// active account wins over soft-deleted ones so auth checks can tell a
// deleted login apart from an unknown one.
func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	acct, err := s.getAccount(ctx, "get_account",
		`Username = ? ORDER BY CASE WHEN DeletedAt IS NULL THEN 0 ELSE 1 END, AccountID DESC LIMIT 1`,
		username)
	if err != nil {
		return nil, fmt.Errorf("getting account by username: %w", err)
	}
	return acct, nil
}

// ListAccounts returns all non-deleted accounts.
func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	accts := []model.Account{}
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op:  "list_accounts",
		SQL: `SELECT ` + accountColumns + ` FROM Account WHERE DeletedAt IS NULL ORDER BY AccountID`,
	}, func(rows *sql.Rows) error {
		a, err := scanAccount(rows)
		accts = append(accts, a)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return accts, nil
}

// CountAdmins returns the number of active admin accounts.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op:   "count_admins",
		SQL:  `SELECT COUNT(*) FROM Account WHERE Role = ? AND DeletedAt IS NULL`,
		Args: []any{model.RoleAdmin},
	}, func(rows *sql.Rows) error {
		return rows.Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return n, nil
}

// UpdateAccountRole changes an account's role.
func (s *Store) UpdateAccountRole(ctx context.Context, id int64, role string) error {
	if !model.ValidRole(role) {
		return fmt.Errorf("%w: role %q", query.ErrInvalidValue, role)
	}
	_, err := s.exec.Write(ctx, s.db, query.Statement{
		Op:         "update_account",
		SQL:        `UPDATE Account SET Role = ? WHERE AccountID = ? AND DeletedAt IS NULL`,
		Args:       []any{role, id},
		MustAffect: true,
	})
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	return nil
}

// UpdateAccountPassword replaces an account's password hash.
func (s *Store) UpdateAccountPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := s.exec.Write(ctx, s.db, query.Statement{
		Op:         "update_account",
		SQL:        `UPDATE Account SET PasswordHash = ? WHERE AccountID = ? AND DeletedAt IS NULL`,
		Args:       []any{passwordHash, id},
		MustAffect: true,
	})
	if err != nil {
		return fmt.Errorf("updating account password: %w", err)
	}
	return nil
}

// DeleteAccount soft-deletes an account.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	_, err := s.exec.Write(ctx, s.db, query.Statement{
		Op:         "delete_account",
		SQL:        `UPDATE Account SET DeletedAt = CURRENT_TIMESTAMP WHERE AccountID = ? AND DeletedAt IS NULL`,
		Args:       []any{id},
		MustAffect: true,
	})
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return nil
}
