package persistence

import (
	"errors"
	"strings"

	"github.com/tims/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver errors to domain errors. resource names the
// entity in not-found messages.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewNotFoundError(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return shared.WrapDomainError(shared.CodeAlreadyExists, resource+" already exists", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.WrapDomainError(shared.CodeValidation, "Referenced record does not exist", err)
	}
	return err
}

// translateDeleteError maps a foreign key violation on delete to a conflict:
// another row started referencing the record after the guard checks ran.
func translateDeleteError(err error, resource, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || isForeignKeyViolation(err) {
		return shared.WrapDomainError(shared.CodeConflict, message, err)
	}
	return translateError(err, resource)
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// isUniqueViolation catches SQLite constraint errors that gorm does not translate
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// likeEscape is appended to every LIKE built from likePattern.
const likeEscape = ` ESCAPE '\'`

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern for
// LOWER(col) LIKE ? ESCAPE '\'. Wildcards in s match literally.
func likePattern(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
