package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/chat-accounts/internal/account/domain"
	"github.com/AlibekovAA/chat-accounts/internal/common/db"
	"github.com/AlibekovAA/chat-accounts/internal/common/logger"
)

const pgUniqueViolation = "23505"

type PgUserRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPgUserRepository(pool *pgxpool.Pool, log *logger.Logger) *PgUserRepository {
	return &PgUserRepository{pool: pool, log: log}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, password_hash, salt, created_at) VALUES ($1, $2, $3, $4, $5)`,
		string(user.ID),
		user.Username,
		user.PasswordHash,
		user.Salt,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			db.MeasureQueryDuration(db.DriverPostgres, "create user", start)
			return ErrUsernameAlreadyExists
		}
	}
	return db.HandleExecError(db.DriverPostgres, err, "create user", start)
}

func (r *PgUserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	var user domain.User

	err := db.RetryWithBackoff(ctx, r.log, db.DefaultRetryConfig, func() error {
		start := time.Now()
		row := r.pool.QueryRow(
			ctx,
			`SELECT id, username, password_hash, salt, created_at FROM users WHERE username = $1`,
			username,
		)

		var id string
		err := row.Scan(&id, &user.Username, &user.PasswordHash, &user.Salt, &user.CreatedAt)
		if err == nil {
			user.ID = domain.UserID(id)
		}
		return db.HandleQueryError(db.DriverPostgres, err, ErrUserNotFound, "find user by username", start)
	})
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}
