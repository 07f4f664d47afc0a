package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrRecordNotFound is returned when a lookup matches no rows.
	ErrRecordNotFound = errors.New("not found")
	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("duplicate key")
)

// translateError maps driver and GORM errors onto the package sentinels.
// The DB should be opened with TranslateError enabled; the string checks
// cover drivers that do not implement gorm's ErrorTranslator.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	s := err.Error()
	if strings.Contains(s, "UNIQUE constraint failed") || strings.Contains(s, "duplicate key value") {
		return ErrDuplicateKey
	}
	return err
}

// MaxPageNumber bounds Page.Number so offsets cannot overflow.
const MaxPageNumber = 1 << 20

// Page selects a 1-based page of a listing.
type Page struct {
	Number int
	Size   int
}

func (p Page) limit() int {
	if p.Size < 1 {
		return 5
	}
	return p.Size
}

func (p Page) offset() int {
	n := min(p.Number, MaxPageNumber)
	if n < 1 {
		return 0
	}
	return (n - 1) * p.limit()
}

func paginate(p Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.offset()).Limit(p.limit())
	}
}

func containsPattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
