package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/AlibekovAA/chat-accounts/internal/account/domain"
	"github.com/AlibekovAA/chat-accounts/internal/common/db"
)

const (
	insertUserSQL           = `INSERT INTO users (id, username, password_hash, salt, created_at) VALUES (?, ?, ?, ?, ?)`
	selectUserByUsernameSQL = `SELECT id, username, password_hash, salt, created_at FROM users WHERE username = ?`
)

type SQLiteUserRepository struct {
	db *sql.DB
}

func NewSQLiteUserRepository(conn *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: conn}
}

var _ UserRepository = (*SQLiteUserRepository)(nil)

func (r *SQLiteUserRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.db.ExecContext(
		ctx,
		insertUserSQL,
		string(user.ID),
		user.Username,
		user.PasswordHash,
		user.Salt,
		user.CreatedAt.UnixNano(),
	)
	if err != nil && isSQLiteUniqueViolation(err) {
		db.MeasureQueryDuration(db.DriverSQLite, "create user", start)
		return ErrUsernameAlreadyExists
	}
	return db.HandleExecError(db.DriverSQLite, err, "create user", start)
}

func (r *SQLiteUserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()

	var (
		user      domain.User
		id        string
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, selectUserByUsernameSQL, username).
		Scan(&id, &user.Username, &user.PasswordHash, &user.Salt, &createdAt)
	if err := db.HandleQueryError(db.DriverSQLite, err, ErrUserNotFound, "find user by username", start); err != nil {
		return domain.User{}, err
	}

	user.ID = domain.UserID(id)
	user.CreatedAt = time.Unix(0, createdAt).UTC()
	return user, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
