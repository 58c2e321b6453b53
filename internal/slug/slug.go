// Package slug derives unique URL identifiers from display names.
package slug

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gosimple "github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Fallback is used when a name has no characters that survive slugging
const Fallback = "untitled"

// ErrExhausted is returned by Write when every attempt hit a unique violation
var ErrExhausted = errors.New("slug attempts exhausted")

// Counter answers the two questions the generator asks of a collection
type Counter interface {
	// CountPrefix counts rows whose slug starts with base, ignoring excludeID
	CountPrefix(ctx context.Context, base string, excludeID uint) (int64, error)
	// Exists reports whether a row other than excludeID uses slug
	Exists(ctx context.Context, slug string, excludeID uint) (bool, error)
}

// Make lower-cases and hyphenates name
func Make(name string) string {
	base := gosimple.Make(name)
	if base == "" {
		return Fallback
	}
	return base
}

// Generate returns a slug for name that no other row of the collection uses.
// When rows already start with the base slug the suffix -{count+1} is
// appended, moving further up while that candidate is taken.
func Generate(ctx context.Context, name string, excludeID uint, counter Counter) (string, error) {
	base := Make(name)

	count, err := counter.CountPrefix(ctx, base, excludeID)
	if err != nil {
		return "", fmt.Errorf("failed to count slugs: %w", err)
	}
	if count == 0 {
		return base, nil
	}

	for n := count + 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		taken, err := counter.Exists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
}

// Write generates a slug for name and hands it to write. While write fails
// with gorm.ErrDuplicatedKey, a fresh slug is generated, at most attempts
// times in total.
func Write(ctx context.Context, name string, excludeID uint, counter Counter, attempts int, write func(generated string) error) error {
	for attempt := 0; attempt < attempts; attempt++ {
		generated, err := Generate(ctx, name, excludeID, counter)
		if err != nil {
			return err
		}

		err = write(generated)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return ErrExhausted
}

// TableCounter counts slugs in a table, soft-deleted rows included
type TableCounter struct {
	DB    *gorm.DB
	Table string
}

// NewTableCounter creates a counter over the slug column of table
func NewTableCounter(db *gorm.DB, table string) *TableCounter {
	return &TableCounter{DB: db, Table: table}
}

// CountPrefix implements Counter
func (c *TableCounter) CountPrefix(ctx context.Context, base string, excludeID uint) (int64, error) {
	var count int64
	query := c.DB.WithContext(ctx).Table(c.Table).Where("slug LIKE ? ESCAPE '\\'", escapeLike(base)+"%")
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists implements Counter
func (c *TableCounter) Exists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	query := c.DB.WithContext(ctx).Table(c.Table).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
