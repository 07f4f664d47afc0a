package repositories

import (
	"fmt"

	"yamdb/internal/models"

	"gorm.io/gorm"
)

// taxonomy is satisfied by the slug-addressed catalog models.
type taxonomy interface {
	models.Category | models.Genre
}

// GORMTaxonomyRepository stores name/slug records (categories and genres).
type GORMTaxonomyRepository[T taxonomy] struct {
	db   *gorm.DB
	kind string
}

// NewGORMCategoryRepository creates a category repository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMTaxonomyRepository[models.Category] {
	return &GORMTaxonomyRepository[models.Category]{db: db, kind: "category"}
}

// NewGORMGenreRepository creates a genre repository.
func NewGORMGenreRepository(db *gorm.DB) *GORMTaxonomyRepository[models.Genre] {
	return &GORMTaxonomyRepository[models.Genre]{db: db, kind: "genre"}
}

// List returns one page ordered by name. search matches names case-insensitively.
func (r *GORMTaxonomyRepository[T]) List(search string, page Page) ([]T, int64, error) {
	query := func() *gorm.DB {
		q := r.db.Model(new(T))
		if search != "" {
			q = q.Where("LOWER(name) LIKE ?", containsPattern(search))
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count %s records: %w", r.kind, err)
	}
	var items []T
	if err := query().Scopes(paginate(page)).Order("name").Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list %s records: %w", r.kind, err)
	}
	return items, total, nil
}

// GetBySlug retrieves a record by its unique slug.
func (r *GORMTaxonomyRepository[T]) GetBySlug(slug string) (*T, error) {
	var item T
	if err := r.db.First(&item, "slug = ?", slug).Error; err != nil {
		return nil, fmt.Errorf("%s with slug %s: %w", r.kind, slug, translateError(err))
	}
	return &item, nil
}

// FindBySlugs returns the records matching slugs. Missing slugs are skipped.
func (r *GORMTaxonomyRepository[T]) FindBySlugs(slugs []string) ([]T, error) {
	var items []T
	if len(slugs) == 0 {
		return items, nil
	}
	if err := r.db.Where("slug IN ?", slugs).Order("name").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to look up %s slugs: %w", r.kind, err)
	}
	return items, nil
}

// Create inserts a record; a taken slug yields ErrDuplicateKey.
func (r *GORMTaxonomyRepository[T]) Create(item *T) error {
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", r.kind, translateError(err))
	}
	return nil
}

// Update saves every field of an existing record.
func (r *GORMTaxonomyRepository[T]) Update(item *T) error {
	if err := r.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to update %s: %w", r.kind, translateError(err))
	}
	return nil
}

// Delete removes the record and detaches it from titles.
// Titles of a deleted category keep existing with no category.
func (r *GORMTaxonomyRepository[T]) Delete(item *T) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		switch v := any(item).(type) {
		case *models.Category:
			if err := tx.Model(&models.Title{}).Where("category_id = ?", v.ID).
				Update("category_id", nil).Error; err != nil {
				return err
			}
		case *models.Genre:
			if err := tx.Exec("DELETE FROM genre_titles WHERE genre_id = ?", v.ID).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(item)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.kind, err)
	}
	return nil
}
