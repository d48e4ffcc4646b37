package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/erazemk/lostfound/internal/query"
)

const jwtSecretKey = "jwt_secret"

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Insert-if-absent followed by a re-select keeps concurrent startups on the
// same secret.
func (s *Store) GetJWTSecret(ctx context.Context) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := s.exec.Write(ctx, s.db, query.Statement{
		Op:   "set_setting",
		SQL:  `INSERT INTO Setting (SettingKey, SettingValue) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		Args: []any{jwtSecretKey, candidate},
	})
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	secret, err := s.GetSetting(ctx, jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}
	return secret, nil
}

// GetSetting returns a setting's value, or "" if it is not set.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op:   "get_setting",
		SQL:  `SELECT SettingValue FROM Setting WHERE SettingKey = ?`,
		Args: []any{key},
	}, func(rows *sql.Rows) error {
		return rows.Scan(&value)
	})
	if err != nil {
		return "", fmt.Errorf("getting setting %s: %w", key, err)
	}
	return value, nil
}
