package postgres

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/lib/pq"

	"eventcircle/internal/domain"
)

const (
	pqForeignKeyViolation = "23503"
	pqSerializationFail   = "40001"
	pqDeadlockDetected    = "40P01"
	pqAdminShutdown       = "57P01"
	pqConnectionException = "08"
)

// translate maps driver errors onto domain sentinels. Connection loss,
// serialization failures and deadlines become retryable.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return domain.MarkTransient(err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == pqConnectionException,
			pqErr.Code == pqSerializationFail,
			pqErr.Code == pqDeadlockDetected,
			pqErr.Code == pqAdminShutdown:
			return domain.MarkTransient(err)
		case pqErr.Code == pqForeignKeyViolation:
			return domain.ErrNotFound
		}
	}
	return err
}
