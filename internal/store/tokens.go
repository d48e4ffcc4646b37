package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/lostfound/internal/query"
)

// RevokeToken adds a token's JTI to the revocation list.
func (s *Store) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := s.exec.Write(ctx, s.db, query.Statement{
		Op:   "revoke_token",
		SQL:  `INSERT INTO RevokedToken (JTI, ExpiresAt) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		Args: []any{jti, expiresAt.UTC()},
	})
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	// Expired revocations can go; their tokens no longer validate anyway.
	_, _ = s.exec.Write(ctx, s.db, query.Statement{
		Op:   "purge_tokens",
		SQL:  `DELETE FROM RevokedToken WHERE ExpiresAt < ?`,
		Args: []any{time.Now().UTC()},
	})

	return nil
}

// IsTokenRevoked checks if a token's JTI has been revoked.
func (s *Store) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op:   "check_token",
		SQL:  `SELECT COUNT(*) FROM RevokedToken WHERE JTI = ?`,
		Args: []any{jti},
	}, func(rows *sql.Rows) error {
		return rows.Scan(&count)
	})
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return count > 0, nil
}
