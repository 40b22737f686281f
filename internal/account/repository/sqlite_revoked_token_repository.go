package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/AlibekovAA/chat-accounts/internal/account/domain"
	"github.com/AlibekovAA/chat-accounts/internal/common/db"
)

const (
	insertRevokedTokenSQL        = `INSERT INTO revoked_tokens (jti, user_id, expires_at, revoked_at) VALUES (?, ?, ?, ?) ON CONFLICT (jti) DO NOTHING`
	selectRevokedTokenSQL        = `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = ? AND expires_at > ?)`
	deleteExpiredRevokedTokenSQL = `DELETE FROM revoked_tokens WHERE expires_at <= ?`
)

type SQLiteRevokedTokenRepository struct {
	db *sql.DB
}

func NewSQLiteRevokedTokenRepository(conn *sql.DB) *SQLiteRevokedTokenRepository {
	return &SQLiteRevokedTokenRepository{db: conn}
}

var _ RevokedTokenRepository = (*SQLiteRevokedTokenRepository)(nil)

func (r *SQLiteRevokedTokenRepository) Revoke(ctx context.Context, token domain.RevokedToken) error {
	start := time.Now()
	_, err := r.db.ExecContext(
		ctx,
		insertRevokedTokenSQL,
		token.TokenID,
		string(token.UserID),
		token.ExpiresAt.UnixNano(),
		token.RevokedAt.UnixNano(),
	)
	return db.HandleExecError(db.DriverSQLite, err, "revoke token", start)
}

func (r *SQLiteRevokedTokenRepository) IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error) {
	start := time.Now()

	var exists bool
	err := r.db.QueryRowContext(ctx, selectRevokedTokenSQL, jti, now.UnixNano()).Scan(&exists)
	if err := db.HandleQueryError(db.DriverSQLite, err, nil, "check revoked token", start); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *SQLiteRevokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	start := time.Now()
	res, err := r.db.ExecContext(ctx, deleteExpiredRevokedTokenSQL, now.UnixNano())
	if err != nil {
		return 0, db.HandleExecError(db.DriverSQLite, err, "delete expired revoked tokens", start)
	}
	db.MeasureQueryDuration(db.DriverSQLite, "delete expired revoked tokens", start)

	n, err := res.RowsAffected()
	if err != nil {
		return 0, db.HandleExecError(db.DriverSQLite, err, "count deleted revoked tokens", start)
	}
	return n, nil
}
