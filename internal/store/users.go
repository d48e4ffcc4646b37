package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/query"
)

const userColumns = `UserID, Name, Email, Phone, Role`

func scanUser(rows *sql.Rows) (model.User, error) {
	var u model.User
	var phone sql.NullString
	if err := rows.Scan(&u.ID, &u.Name, &u.Email, &phone, &u.Role); err != nil {
		return u, fmt.Errorf("scanning user: %w", err)
	}
	u.Phone = phone.String
	return u, nil
}

// RegisterUser creates a user who can report and claim items. A duplicate
// email is a constraint violation.
func (s *Store) RegisterUser(ctx context.Context, name, email, phone, role string) (*model.User, error) {
	name, email, role = strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(role)
	if name == "" || email == "" || role == "" {
		return nil, fmt.Errorf("%w: name, email and role are required", query.ErrInvalidValue)
	}

	var phoneArg any
	if p := strings.TrimSpace(phone); p != "" {
		phoneArg = p
	}

	res, err := s.exec.Write(ctx, s.db, query.Statement{
		Op:        "insert_user",
		SQL:       `INSERT INTO Users (Name, Email, Phone, Role) VALUES (?, ?, ?, ?) RETURNING UserID`,
		Args:      []any{name, email, phoneArg, role},
		Returning: "UserID",
	})
	if err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}

	return s.GetUser(ctx, res.ID)
}

// GetUser returns a user by ID, or nil if there is none.
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user *model.User
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op:   "get_user",
		SQL:  `SELECT ` + userColumns + ` FROM Users WHERE UserID = ?`,
		Args: []any{id},
	}, func(rows *sql.Rows) error {
		u, err := scanUser(rows)
		user = &u
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users ordered by ID.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op:  "list_users",
		SQL: `SELECT ` + userColumns + ` FROM Users ORDER BY UserID`,
	}, func(rows *sql.Rows) error {
		u, err := scanUser(rows)
		users = append(users, u)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}
