package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/garcom-app/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCommitFailed      = errors.New("commit failed, retry")
	ErrInvalidImport     = errors.New("invalid or empty file")
)

// IsValidation reports whether err was caused by rejected input.
func IsValidation(err error) bool {
	var verr *models.ValidationError
	return errors.As(err, &verr)
}

func notFound(err error, what string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
	}
	return err
}
