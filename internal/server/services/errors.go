package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/dmitrijs2005/tasksync/internal/common"
)

// storageError marks connectivity failures as common.ErrStorageUnavailable.
// Context expiry and domain errors pass through unchanged.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var opErr *net.OpError
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &opErr) {
		return errors.Join(common.ErrStorageUnavailable, err)
	}
	return err
}
