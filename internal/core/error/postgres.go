package errx

import (
	"database/sql"
	"errors"
	"net/http"
)

// WrapPostgres maps catalog database errors to the unified AppError type.
// A missing row is not an error at this boundary; callers translate it to an
// absent result instead.
func WrapPostgres(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return nil
	}

	return New(err, http.StatusBadGateway, PostgresErrorMessage)
}
