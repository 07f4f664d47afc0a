package repositories

import "yamdb/internal/models"

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(search string, page Page) ([]models.Category, int64, error)
	GetBySlug(slug string) (*models.Category, error)
	Create(category *models.Category) error
	Update(category *models.Category) error
	Delete(category *models.Category) error
}

// GenreRepository defines the interface for genre data access.
type GenreRepository interface {
	List(search string, page Page) ([]models.Genre, int64, error)
	GetBySlug(slug string) (*models.Genre, error)
	FindBySlugs(slugs []string) ([]models.Genre, error)
	Create(genre *models.Genre) error
	Delete(genre *models.Genre) error
}

// TitleFilter narrows a title listing. Zero values are ignored.
type TitleFilter struct {
	Name     string
	Category string
	Genre    string
	Year     int
}

// TitleRepository defines the interface for title data access. Returned
// titles carry their genres, category and computed rating.
type TitleRepository interface {
	List(filter TitleFilter, page Page) ([]models.Title, int64, error)
	GetByID(id uint) (*models.Title, error)
	Create(title *models.Title) error
	Update(title *models.Title) error
	Delete(title *models.Title) error
}

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	ListByTitle(titleID uint, page Page) ([]models.Review, int64, error)
	GetByID(titleID, reviewID uint) (*models.Review, error)
	// Create returns ErrDuplicateKey when the author already reviewed the title.
	Create(review *models.Review) error
	Update(review *models.Review) error
	Delete(review *models.Review) error
}

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	ListByReview(reviewID uint, page Page) ([]models.Comment, int64, error)
	GetByID(reviewID, commentID uint) (*models.Comment, error)
	Create(comment *models.Comment) error
	Update(comment *models.Comment) error
	Delete(comment *models.Comment) error
}
