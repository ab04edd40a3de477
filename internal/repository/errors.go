package repository

import (
	"errors"
	"fmt"
	"strings"

	domainRepo "healthsure/internal/domain/repository"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// translateError maps Postgres constraint violations onto the domain
// sentinels. Other errors pass through untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s", domainRepo.ErrDuplicateKey, pgErr.ConstraintName)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %s", domainRepo.ErrForeignKeyViolation, pgErr.ConstraintName)
	default:
		return err
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
