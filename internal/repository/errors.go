package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// pgError : достает ошибку postgres с заданным кодом
func pgError(err error, code string) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == code {
		return pqErr, true
	}
	return nil, false
}

// uniqueViolation : имя нарушенного ограничения уникальности
func uniqueViolation(err error) (string, bool) {
	pqErr, ok := pgError(err, pgerrcode.UniqueViolation)
	if !ok {
		return "", false
	}
	return pqErr.Constraint, true
}

func foreignKeyViolation(err error) bool {
	_, ok := pgError(err, pgerrcode.ForeignKeyViolation)
	return ok
}
