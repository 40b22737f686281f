package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/chat-accounts/internal/account/domain"
	"github.com/AlibekovAA/chat-accounts/internal/common/constants"
	"github.com/AlibekovAA/chat-accounts/internal/common/db"
)

// RevokedTokenRepository remembers logged-out token IDs until the tokens
// would have expired anyway.
type RevokedTokenRepository interface {
	Revoke(ctx context.Context, token domain.RevokedToken) error
	IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type PgRevokedTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgRevokedTokenRepository(pool *pgxpool.Pool) *PgRevokedTokenRepository {
	return &PgRevokedTokenRepository{pool: pool}
}

func (r *PgRevokedTokenRepository) Revoke(ctx context.Context, token domain.RevokedToken) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO revoked_tokens (jti, user_id, expires_at, revoked_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (jti) DO NOTHING`,
		token.TokenID,
		string(token.UserID),
		token.ExpiresAt,
		token.RevokedAt,
	)
	return db.HandleExecError(db.DriverPostgres, err, "revoke token", start)
}

func (r *PgRevokedTokenRepository) IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS(
			SELECT 1 FROM revoked_tokens
			WHERE jti = $1 AND expires_at > $2
		)`,
		jti,
		now,
	)

	var exists bool
	err := row.Scan(&exists)
	if err := db.HandleQueryError(db.DriverPostgres, err, nil, "check revoked token", start); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgRevokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`DELETE FROM revoked_tokens WHERE expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, db.HandleExecError(db.DriverPostgres, err, "delete expired revoked tokens", start)
	}
	db.MeasureQueryDuration(db.DriverPostgres, "delete expired revoked tokens", start)
	return res.RowsAffected(), nil
}
