package sqlite

import (
	"fmt"
	"strings"

	"github.com/rpggio/sitetrack/internal/repository"
)

// isBusy reports a lock held by another connection or process past the busy
// timeout.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

func wrapBusy(err error, op, key string) error {
	if isBusy(err) {
		return fmt.Errorf("%w: %s cache slot %s: %w", repository.ErrUnavailable, op, key, err)
	}
	return fmt.Errorf("failed to %s cache slot %s: %w", op, key, err)
}
