package club

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a player, match or season id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate")
)

// translateError marks unique constraint violations with ErrDuplicate, keeping the driver message.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return errors.Mark(err, ErrDuplicate)
	}
	// libsql reports constraint failures as plain text.
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return errors.Mark(err, ErrDuplicate)
	}
	return err
}
