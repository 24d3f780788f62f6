package custom_error

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type UniqueViolationError struct {
	message string
	code    string
}

type ForeignKeyViolationError struct {
	message string
	code    string
}

func (f *ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("%s (code: %s)", f.message, f.code)
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("%s (code: %s)", e.message, e.code)
}

func WrapDBError(message, code string) error {
	switch code {
	case codeUniqueViolation:
		return &UniqueViolationError{
			message: message,
			code:    code,
		}
	case codeForeignKeyViolation:
		return &ForeignKeyViolationError{
			message: "Value is already used by other resources " + message,
			code:    code,
		}
	default:
		return fmt.Errorf("uncategorized error occurred with code %s: %s", code, message)
	}
}

// TranslateDBError classifies driver errors from postgres (lib/pq or pgx) and sqlite. Constraint
// violations become UniqueViolationError or ForeignKeyViolationError, everything
// else is wrapped in a StorageError.
func TranslateDBError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUniqueViolation, codeForeignKeyViolation:
			return WrapDBError(op, string(pqErr.Code))
		}
		return Storage(op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation, codeForeignKeyViolation:
			return WrapDBError(op, pgErr.Code)
		}
		return Storage(op, err)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return WrapDBError(op, codeUniqueViolation)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return WrapDBError(op, codeForeignKeyViolation)
		}
	}

	return Storage(op, err)
}
