package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v4"

	commonerrors "github.com/AlibekovAA/chat-accounts/internal/common/errors"
	"github.com/AlibekovAA/chat-accounts/internal/observability/metrics"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// HandleQueryError records query latency and maps driver errors: no rows
// becomes notFoundErr, anything else becomes ErrDatabaseError wrapping the
// driver error.
func HandleQueryError(driver string, err error, notFoundErr error, operation string, startTime time.Time) error {
	MeasureQueryDuration(driver, operation, startTime)

	if err == nil {
		return nil
	}
	if IsNoRows(err) && notFoundErr != nil {
		return notFoundErr
	}
	metrics.DBQueryErrors.WithLabelValues(driver, operation).Inc()
	return commonerrors.ErrDatabaseError.WithCause(fmt.Errorf("failed to %s: %w", operation, err))
}

func HandleExecError(driver string, err error, operation string, startTime time.Time) error {
	return HandleQueryError(driver, err, nil, operation, startTime)
}

func MeasureQueryDuration(driver, operation string, startTime time.Time) {
	metrics.DBQueryDurationSeconds.WithLabelValues(driver, operation).Observe(time.Since(startTime).Seconds())
}
