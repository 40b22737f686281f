package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/AlibekovAA/chat-accounts/internal/account/domain"
	commonerrors "github.com/AlibekovAA/chat-accounts/internal/common/errors"
)

func newMockSQLite(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = conn.Close()
	}
	return conn, mock, cleanup
}

func testUser() domain.User {
	return domain.User{
		ID:           "user-123",
		Username:     "alice",
		PasswordHash: "hash",
		Salt:         "salt",
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteUserRepository_Create(t *testing.T) {
	user := testUser()

	tests := []struct {
		name       string
		mockExpect func(sqlmock.Sqlmock)
		wantErr    error
	}{
		{
			name: "success",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("user-123", "alice", "hash", "salt", user.CreatedAt.UnixNano()).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "duplicate username",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("user-123", "alice", "hash", "salt", user.CreatedAt.UnixNano()).
					WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"))
			},
			wantErr: ErrUsernameAlreadyExists,
		},
		{
			name: "driver failure",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("user-123", "alice", "hash", "salt", user.CreatedAt.UnixNano()).
					WillReturnError(errors.New("disk I/O error"))
			},
			wantErr: commonerrors.ErrDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock, cleanup := newMockSQLite(t)
			defer cleanup()

			tt.mockExpect(mock)
			repo := NewSQLiteUserRepository(conn)

			err := repo.Create(context.Background(), user)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSQLiteUserRepository_FindByUsername(t *testing.T) {
	user := testUser()

	t.Run("found", func(t *testing.T) {
		conn, mock, cleanup := newMockSQLite(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "salt", "created_at"}).
			AddRow("user-123", "alice", "hash", "salt", user.CreatedAt.UnixNano())
		mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
			WithArgs("alice").
			WillReturnRows(rows)

		got, err := NewSQLiteUserRepository(conn).FindByUsername(context.Background(), "alice")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.ID != user.ID || got.Username != user.Username || got.PasswordHash != user.PasswordHash || got.Salt != user.Salt {
			t.Errorf("expected %+v, got %+v", user, got)
		}
		if !got.CreatedAt.Equal(user.CreatedAt) {
			t.Errorf("expected created_at %v, got %v", user.CreatedAt, got.CreatedAt)
		}
	})

	t.Run("not found", func(t *testing.T) {
		conn, mock, cleanup := newMockSQLite(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
			WithArgs("bob").
			WillReturnError(sql.ErrNoRows)

		_, err := NewSQLiteUserRepository(conn).FindByUsername(context.Background(), "bob")
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("driver failure", func(t *testing.T) {
		conn, mock, cleanup := newMockSQLite(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
			WithArgs("alice").
			WillReturnError(errors.New("database is closed"))

		_, err := NewSQLiteUserRepository(conn).FindByUsername(context.Background(), "alice")
		if !errors.Is(err, commonerrors.ErrDatabaseError) {
			t.Fatalf("expected database error, got %v", err)
		}
		if errors.Is(err, ErrUserNotFound) {
			t.Fatal("driver failure must not look like a missing user")
		}
	})
}
