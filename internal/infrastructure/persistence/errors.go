package persistence

import (
	"errors"
	"strings"

	"github.com/edi/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// notFound maps gorm.ErrRecordNotFound to a NOT_FOUND domain error
func notFound(err error, entity string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound.Newf("%s %v not found", entity, id)
	}
	return err
}

// isDuplicateKey reports a unique constraint violation. TranslateError covers
// postgres and sqlite; the message check catches drivers without a translator.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func concurrentModification(entity string, id any) error {
	return shared.ErrConcurrencyConflict.Newf("%s %v has been modified by another user", entity, id)
}
