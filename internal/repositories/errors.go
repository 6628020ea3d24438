package repositories

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// isUniqueViolation recognises a duplicate key whether gorm translated it or
// the postgres driver returned it raw.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
		return pgerr.Code == pgerrcode.UniqueViolation
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
		return pgerr.Code == pgerrcode.ForeignKeyViolation
	}
	return false
}
