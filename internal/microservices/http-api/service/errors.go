package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// conflictField guesses the offending field from the violated constraint
// name carried in a repository.ErrDuplicate error.
func conflictField(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return "email"
	case strings.Contains(msg, "slug"):
		return "slug"
	case strings.Contains(msg, "author_title"):
		return "title"
	default:
		return "username"
	}
}
