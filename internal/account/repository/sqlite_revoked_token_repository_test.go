package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/AlibekovAA/chat-accounts/internal/account/domain"
	commonerrors "github.com/AlibekovAA/chat-accounts/internal/common/errors"
)

func TestSQLiteRevokedTokenRepository_Revoke(t *testing.T) {
	conn, mock, cleanup := newMockSQLite(t)
	defer cleanup()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	token := domain.RevokedToken{
		TokenID:   "jti-1",
		UserID:    "user-123",
		ExpiresAt: now.Add(time.Hour),
		RevokedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta(insertRevokedTokenSQL)).
		WithArgs("jti-1", "user-123", token.ExpiresAt.UnixNano(), now.UnixNano()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := NewSQLiteRevokedTokenRepository(conn).Revoke(context.Background(), token); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestSQLiteRevokedTokenRepository_IsRevoked(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("revoked", func(t *testing.T) {
		conn, mock, cleanup := newMockSQLite(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(selectRevokedTokenSQL)).
			WithArgs("jti-1", now.UnixNano()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		revoked, err := NewSQLiteRevokedTokenRepository(conn).IsRevoked(context.Background(), "jti-1", now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !revoked {
			t.Error("expected token to be revoked")
		}
	})

	t.Run("query failure", func(t *testing.T) {
		conn, mock, cleanup := newMockSQLite(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(selectRevokedTokenSQL)).
			WithArgs("jti-1", now.UnixNano()).
			WillReturnError(errors.New("database is locked"))

		_, err := NewSQLiteRevokedTokenRepository(conn).IsRevoked(context.Background(), "jti-1", now)
		if !errors.Is(err, commonerrors.ErrDatabaseError) {
			t.Fatalf("expected database error, got %v", err)
		}
	})
}

func TestSQLiteRevokedTokenRepository_DeleteExpired(t *testing.T) {
	conn, mock, cleanup := newMockSQLite(t)
	defer cleanup()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(deleteExpiredRevokedTokenSQL)).
		WithArgs(now.UnixNano()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := NewSQLiteRevokedTokenRepository(conn).DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}
}
