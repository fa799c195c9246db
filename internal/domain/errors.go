package domain

import (
	"errors"

	"github.com/MrSnakeDoc/favorg/internal/urlnorm"
)

var (
	// ErrInvalidURL means a single URL cannot be normalized.
	// Always recoverable at the entry level.
	ErrInvalidURL = urlnorm.ErrInvalidURL

	// ErrUnsupportedFormat means an import file matches none of the parsers.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidFormat means a parser recognised its format but the
	// document is structurally unusable (JSON that is not JSON, CSV without url column).
	ErrInvalidFormat = errors.New("invalid format")

	ErrNotFound      = errors.New("not found")
	ErrLocked        = errors.New("record is locked")
	ErrInvalidInput  = errors.New("invalid input")
	ErrBusy          = errors.New("another bulk operation is in progress")
	ErrCategoryCycle = errors.New("category hierarchy would contain a cycle")
	ErrCategoryInUse = errors.New("category is still referenced by bookmarks")
)
