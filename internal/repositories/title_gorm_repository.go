package repositories

import (
	"fmt"

	"yamdb/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMTitleRepository is a GORM implementation of TitleRepository.
type GORMTitleRepository struct {
	db *gorm.DB
}

// NewGORMTitleRepository creates a new instance of GORMTitleRepository.
func NewGORMTitleRepository(db *gorm.DB) *GORMTitleRepository {
	return &GORMTitleRepository{db: db}
}

// withRating selects the title columns plus the mean review score. The
// rating is NULL for titles without reviews.
func (r *GORMTitleRepository) withRating(db *gorm.DB) *gorm.DB {
	rating := r.db.Model(&models.Review{}).
		Select("AVG(reviews.score)").
		Where("reviews.title_id = titles.id")
	return db.Select("titles.*, (?) AS rating", rating).
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name") }).
		Preload("Category")
}

func (r *GORMTitleRepository) filtered(f TitleFilter) *gorm.DB {
	q := r.db.Model(&models.Title{})
	if f.Name != "" {
		q = q.Where("LOWER(titles.name) LIKE ?", containsPattern(f.Name))
	}
	if f.Category != "" {
		q = q.Where("titles.category_id IN (?)", r.db.Model(&models.Category{}).
			Select("categories.id").
			Where("LOWER(categories.slug) LIKE ?", containsPattern(f.Category)))
	}
	if f.Genre != "" {
		q = q.Where("titles.id IN (?)", r.db.Table("genre_titles").
			Select("genre_titles.title_id").
			Joins("JOIN genres ON genres.id = genre_titles.genre_id").
			Where("LOWER(genres.slug) LIKE ?", containsPattern(f.Genre)))
	}
	if f.Year != 0 {
		q = q.Where("titles.year = ?", f.Year)
	}
	return q
}

// List returns one page of titles ordered by name.
func (r *GORMTitleRepository) List(filter TitleFilter, page Page) ([]models.Title, int64, error) {
	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count titles: %w", err)
	}
	var titles []models.Title
	err := r.withRating(r.filtered(filter)).
		Scopes(paginate(page)).
		Order("titles.name").
		Find(&titles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list titles: %w", err)
	}
	return titles, total, nil
}

// GetByID retrieves a single title with its rating.
func (r *GORMTitleRepository) GetByID(id uint) (*models.Title, error) {
	var title models.Title
	if err := r.withRating(r.db.Model(&models.Title{})).First(&title, "titles.id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("title with ID %d: %w", id, translateError(err))
	}
	return &title, nil
}

// Create inserts the title and links it to the already stored genres.
func (r *GORMTitleRepository) Create(title *models.Title) error {
	if err := r.db.Omit("Category", "Genres.*").Create(title).Error; err != nil {
		return fmt.Errorf("failed to create title: %w", translateError(err))
	}
	return nil
}

// Update saves the title's own columns and replaces its genre links.
func (r *GORMTitleRepository) Update(title *models.Title) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(title).Error; err != nil {
			return err
		}
		return tx.Model(title).Omit("Genres.*").Association("Genres").Replace(title.Genres)
	})
	if err != nil {
		return fmt.Errorf("failed to update title %d: %w", title.ID, translateError(err))
	}
	return nil
}

// Delete removes the title together with its reviews, their comments and
// its genre links.
func (r *GORMTitleRepository) Delete(title *models.Title) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		reviewIDs := tx.Model(&models.Review{}).Select("id").Where("title_id = ?", title.ID)
		if err := tx.Where("review_id IN (?)", reviewIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", title.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM genre_titles WHERE title_id = ?", title.ID).Error; err != nil {
			return err
		}
		res := tx.Omit(clause.Associations).Delete(title)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete title %d: %w", title.ID, err)
	}
	return nil
}
