package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// storeError replaces gorm.ErrRecordNotFound with the entity sentinel and wraps anything else.
func storeError(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isDuplicate reports a unique constraint violation.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
