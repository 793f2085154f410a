package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

var (
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate")

	// ErrReferenced indicates a foreign key rejected the write or delete:
	// the row is still referenced, or references a missing parent.
	ErrReferenced = errors.New("referenced")
)

// isUniqueViolation matches both the translated gorm error and the plain-text
// errors glebarez/sqlite returns when translation is off.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	low := strings.ToLower(err.Error())
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrForeignKeyViolated) ||
		strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

// constraintError marks a constraint failure with ErrDuplicate or
// ErrReferenced and keeps the driver error reachable through errors.Is/As.
type constraintError struct {
	kind error
	err  error
}

func (e *constraintError) Error() string   { return e.kind.Error() + ": " + e.err.Error() }
func (e *constraintError) Unwrap() []error { return []error{e.kind, e.err} }

// classify wraps constraint failures with ErrDuplicate or ErrReferenced while
// keeping the driver error, see DriverMessage.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return &constraintError{kind: ErrDuplicate, err: err}
	case isForeignKeyViolation(err):
		return &constraintError{kind: ErrReferenced, err: err}
	default:
		return err
	}
}

// DriverMessage returns the storage message of err without the
// ErrDuplicate/ErrReferenced prefix, for reports that show it verbatim.
func DriverMessage(err error) string {
	var ce *constraintError
	if errors.As(err, &ce) {
		return ce.err.Error()
	}
	return err.Error()
}
