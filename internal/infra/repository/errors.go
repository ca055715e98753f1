package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apdomain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
)

const uniqueViolation = "23505"

// notFound maps gorm's missing-row error to a NotFound business error and
// wraps anything else.
func notFound(err error, code, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrNotFound(code, message)
	}
	return fmt.Errorf("%s: %w", code, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// dayNumber is the second advisory lock key for a calendar date.
func dayNumber(date time.Time) int32 {
	return int32(date.Unix() / 86400)
}

// windowLockKey is the second lock key used for a vet's window edits.
const windowLockKey int32 = -1

func lockVetKey(tx *gorm.DB, vetID uint, key int32) error {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", int32(vetID), key).Error; err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	return nil
}

func dateParam(date time.Time) string {
	return date.Format("2006-01-02")
}

func activeStatuses() []string {
	out := make([]string, 0, len(apdomain.ActiveStatuses))
	for _, st := range apdomain.ActiveStatuses {
		out = append(out, string(st))
	}
	return out
}
