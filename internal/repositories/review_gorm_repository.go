package repositories

import (
	"fmt"

	"yamdb/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

func (r *GORMReviewRepository) preloaded() *gorm.DB {
	return r.db.Preload("Author").Preload("Title")
}

// ListByTitle returns one page of a title's reviews ordered by publication date.
func (r *GORMReviewRepository) ListByTitle(titleID uint, page Page) ([]models.Review, int64, error) {
	var total int64
	if err := r.db.Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews of title %d: %w", titleID, err)
	}
	var reviews []models.Review
	err := r.preloaded().
		Where("title_id = ?", titleID).
		Scopes(paginate(page)).
		Order("pub_date, id").
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews of title %d: %w", titleID, err)
	}
	return reviews, total, nil
}

// GetByID retrieves a review that belongs to titleID.
func (r *GORMReviewRepository) GetByID(titleID, reviewID uint) (*models.Review, error) {
	var review models.Review
	err := r.preloaded().First(&review, "id = ? AND title_id = ?", reviewID, titleID).Error
	if err != nil {
		return nil, fmt.Errorf("review %d of title %d: %w", reviewID, titleID, translateError(err))
	}
	return &review, nil
}

// Create inserts the review. The unique (title_id, author_id) index decides
// races between concurrent reviews by the same author.
func (r *GORMReviewRepository) Create(review *models.Review) error {
	if err := r.db.Omit(clause.Associations).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", translateError(err))
	}
	return nil
}

// Update saves the review's text and score.
func (r *GORMReviewRepository) Update(review *models.Review) error {
	err := r.db.Model(review).Omit(clause.Associations).
		Updates(map[string]any{"text": review.Text, "score": review.Score}).Error
	if err != nil {
		return fmt.Errorf("failed to update review %d: %w", review.ID, translateError(err))
	}
	return nil
}

// Delete removes the review and its comments.
func (r *GORMReviewRepository) Delete(review *models.Review) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", review.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Omit(clause.Associations).Delete(&models.Review{}, review.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete review %d: %w", review.ID, err)
	}
	return nil
}

// GORMCommentRepository is a GORM implementation of CommentRepository.
type GORMCommentRepository struct {
	db *gorm.DB
}

// NewGORMCommentRepository creates a new instance of GORMCommentRepository.
func NewGORMCommentRepository(db *gorm.DB) *GORMCommentRepository {
	return &GORMCommentRepository{db: db}
}

// ListByReview returns one page of a review's comments ordered by publication date.
func (r *GORMCommentRepository) ListByReview(reviewID uint, page Page) ([]models.Comment, int64, error) {
	var total int64
	if err := r.db.Model(&models.Comment{}).Where("review_id = ?", reviewID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count comments of review %d: %w", reviewID, err)
	}
	var comments []models.Comment
	err := r.db.Preload("Author").
		Where("review_id = ?", reviewID).
		Scopes(paginate(page)).
		Order("pub_date, id").
		Find(&comments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments of review %d: %w", reviewID, err)
	}
	return comments, total, nil
}

// GetByID retrieves a comment that belongs to reviewID.
func (r *GORMCommentRepository) GetByID(reviewID, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Preload("Author").First(&comment, "id = ? AND review_id = ?", commentID, reviewID).Error
	if err != nil {
		return nil, fmt.Errorf("comment %d of review %d: %w", commentID, reviewID, translateError(err))
	}
	return &comment, nil
}

// Create inserts the comment.
func (r *GORMCommentRepository) Create(comment *models.Comment) error {
	if err := r.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", translateError(err))
	}
	return nil
}

// Update saves the comment's text.
func (r *GORMCommentRepository) Update(comment *models.Comment) error {
	err := r.db.Model(comment).Omit(clause.Associations).Update("text", comment.Text).Error
	if err != nil {
		return fmt.Errorf("failed to update comment %d: %w", comment.ID, translateError(err))
	}
	return nil
}

// Delete removes the comment.
func (r *GORMCommentRepository) Delete(comment *models.Comment) error {
	res := r.db.Delete(&models.Comment{}, comment.ID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment %d: %w", comment.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %d: %w", comment.ID, ErrRecordNotFound)
	}
	return nil
}
