package services

import (
	"errors"
	"fmt"
	"net/http"

	"yamdb/internal/models"
	"yamdb/internal/policy"
	"yamdb/internal/repositories"
)

// ReviewInput is the payload for creating a review.
type ReviewInput struct {
	Text  string `json:"text" validate:"required,max=200"`
	Score int    `json:"score" validate:"required,min=1,max=10"`
}

// ReviewPatch is a partial review update.
type ReviewPatch struct {
	Text  *string `json:"text" validate:"omitempty,min=1,max=200"`
	Score *int    `json:"score" validate:"omitempty,min=1,max=10"`
}

// CommentInput is the payload for creating or editing a comment.
type CommentInput struct {
	Text string `json:"text" validate:"required,max=200"`
}

func authorizeAuthored(actor *models.User, method string) error {
	if !policy.CanAccessCollection(policy.AuthorOrStaffOrReadOnly, actor, method) {
		return ErrForbidden
	}
	return nil
}

func authorizeObject(actor *models.User, method string, authorID uint) error {
	if !policy.CanAccessObject(actor, method, authorID) {
		return ErrForbidden
	}
	return nil
}

// ReviewService manages reviews of titles.
type ReviewService struct {
	reviews  repositories.ReviewRepository
	titles   repositories.TitleRepository
	validate *Validator
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews repositories.ReviewRepository, titles repositories.TitleRepository) *ReviewService {
	return &ReviewService{reviews: reviews, titles: titles, validate: NewValidator()}
}

func (s *ReviewService) ensureTitle(titleID uint) error {
	if _, err := s.titles.GetByID(titleID); err != nil {
		return lookupError(err, fmt.Sprintf("title %d", titleID))
	}
	return nil
}

// List returns a page of the title's reviews.
func (s *ReviewService) List(actor *models.User, titleID uint, page repositories.Page) ([]models.Review, int64, error) {
	if err := authorizeAuthored(actor, http.MethodGet); err != nil {
		return nil, 0, err
	}
	if err := s.ensureTitle(titleID); err != nil {
		return nil, 0, err
	}
	return s.reviews.ListByTitle(titleID, page)
}

// Get returns one review of the title.
func (s *ReviewService) Get(actor *models.User, titleID, reviewID uint) (*models.Review, error) {
	if err := authorizeAuthored(actor, http.MethodGet); err != nil {
		return nil, err
	}
	return s.get(titleID, reviewID)
}

func (s *ReviewService) get(titleID, reviewID uint) (*models.Review, error) {
	review, err := s.reviews.GetByID(titleID, reviewID)
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("review %d of title %d", reviewID, titleID))
	}
	return review, nil
}

// Create posts a review by actor. A second review of the same title by the
// same author fails with ErrConflict.
func (s *ReviewService) Create(actor *models.User, titleID uint, in ReviewInput) (*models.Review, error) {
	if err := authorizeAuthored(actor, http.MethodPost); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if err := s.ensureTitle(titleID); err != nil {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     in.Text,
		Score:    in.Score,
	}
	if err := s.reviews.Create(review); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: you have already reviewed this title", ErrConflict)
		}
		return nil, err
	}
	return s.get(titleID, review.ID)
}

// Update edits a review. Allowed for its author, moderators and admins.
func (s *ReviewService) Update(actor *models.User, titleID, reviewID uint, patch ReviewPatch) (*models.Review, error) {
	if err := authorizeAuthored(actor, http.MethodPatch); err != nil {
		return nil, err
	}
	review, err := s.get(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := authorizeObject(actor, http.MethodPatch, review.AuthorID); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}
	if patch.Text != nil {
		review.Text = *patch.Text
	}
	if patch.Score != nil {
		review.Score = *patch.Score
	}
	if err := s.reviews.Update(review); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes a review and its comments. Allowed for its author,
// moderators and admins.
func (s *ReviewService) Delete(actor *models.User, titleID, reviewID uint) error {
	if err := authorizeAuthored(actor, http.MethodDelete); err != nil {
		return err
	}
	review, err := s.get(titleID, reviewID)
	if err != nil {
		return err
	}
	if err := authorizeObject(actor, http.MethodDelete, review.AuthorID); err != nil {
		return err
	}
	return lookupError(s.reviews.Delete(review), fmt.Sprintf("review %d", reviewID))
}

// CommentService manages comments on reviews.
type CommentService struct {
	comments repositories.CommentRepository
	reviews  repositories.ReviewRepository
	validate *Validator
}

// NewCommentService creates a new CommentService.
func NewCommentService(comments repositories.CommentRepository, reviews repositories.ReviewRepository) *CommentService {
	return &CommentService{comments: comments, reviews: reviews, validate: NewValidator()}
}

// ensureReview checks the review exists and belongs to the title.
func (s *CommentService) ensureReview(titleID, reviewID uint) error {
	if _, err := s.reviews.GetByID(titleID, reviewID); err != nil {
		return lookupError(err, fmt.Sprintf("review %d of title %d", reviewID, titleID))
	}
	return nil
}

// List returns a page of the review's comments.
func (s *CommentService) List(actor *models.User, titleID, reviewID uint, page repositories.Page) ([]models.Comment, int64, error) {
	if err := authorizeAuthored(actor, http.MethodGet); err != nil {
		return nil, 0, err
	}
	if err := s.ensureReview(titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.comments.ListByReview(reviewID, page)
}

// Get returns one comment of the review.
func (s *CommentService) Get(actor *models.User, titleID, reviewID, commentID uint) (*models.Comment, error) {
	if err := authorizeAuthored(actor, http.MethodGet); err != nil {
		return nil, err
	}
	return s.get(titleID, reviewID, commentID)
}

func (s *CommentService) get(titleID, reviewID, commentID uint) (*models.Comment, error) {
	if err := s.ensureReview(titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(reviewID, commentID)
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("comment %d", commentID))
	}
	return comment, nil
}

// Create posts a comment by actor on the review.
func (s *CommentService) Create(actor *models.User, titleID, reviewID uint, in CommentInput) (*models.Comment, error) {
	if err := authorizeAuthored(actor, http.MethodPost); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if err := s.ensureReview(titleID, reviewID); err != nil {
		return nil, err
	}
	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Text:     in.Text,
	}
	if err := s.comments.Create(comment); err != nil {
		return nil, err
	}
	return s.get(titleID, reviewID, comment.ID)
}

// Update edits a comment. Allowed for its author, moderators and admins.
func (s *CommentService) Update(actor *models.User, titleID, reviewID, commentID uint, in CommentInput) (*models.Comment, error) {
	if err := authorizeAuthored(actor, http.MethodPatch); err != nil {
		return nil, err
	}
	comment, err := s.get(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := authorizeObject(actor, http.MethodPatch, comment.AuthorID); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	comment.Text = in.Text
	if err := s.comments.Update(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment. Allowed for its author, moderators and admins.
func (s *CommentService) Delete(actor *models.User, titleID, reviewID, commentID uint) error {
	if err := authorizeAuthored(actor, http.MethodDelete); err != nil {
		return err
	}
	comment, err := s.get(titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := authorizeObject(actor, http.MethodDelete, comment.AuthorID); err != nil {
		return err
	}
	return lookupError(s.comments.Delete(comment), fmt.Sprintf("comment %d", commentID))
}
