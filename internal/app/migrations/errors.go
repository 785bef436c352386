package migrations

import (
	"fmt"
)

// MigrationError reports a migration that could not be applied, including
// ordering problems like gaps in the applied sequence.
type MigrationError struct {
	Version int64
	Name    string
	Err     error
}

func (e *MigrationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("migration %04d_%s: %v", e.Version, e.Name, e.Err)
	}
	return fmt.Sprintf("migration %04d: %v", e.Version, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// IntegrityError reports the first discrepancy found between the ledger and
// the known migration sequence.
type IntegrityError struct {
	Version int64
	Reason  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed at version %04d: %s", e.Version, e.Reason)
}
