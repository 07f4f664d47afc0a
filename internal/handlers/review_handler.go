package handlers

import (
	"time"

	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReviewResponse is the public representation of a review.
type ReviewResponse struct {
	ID      uint      `json:"id"`
	Title   string    `json:"title"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func newReviewResponse(r models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Title:   r.Title.Name,
		Author:  r.Author.Username,
		Text:    r.Text,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}

// CommentResponse is the public representation of a comment.
type CommentResponse struct {
	ID      uint      `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
}

func newCommentResponse(cm models.Comment) CommentResponse {
	return CommentResponse{
		ID:      cm.ID,
		Author:  cm.Author.Username,
		Text:    cm.Text,
		PubDate: cm.PubDate,
	}
}

// ReviewHandler handles reviews of a title and the comments on them.
type ReviewHandler struct {
	reviews  *services.ReviewService
	comments *services.CommentService
	pageSize int
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews *services.ReviewService, comments *services.CommentService, pageSize int) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, comments: comments, pageSize: pageSize}
}

// RegisterRoutes registers the review and comment routes nested under a title.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	reviewRoutes := router.Group("/titles/:title_id/reviews")
	reviewRoutes.Get("/", h.HandleListReviews)
	reviewRoutes.Post("/", h.HandleCreateReview)
	reviewRoutes.Get("/:review_id", h.HandleGetReview)
	reviewRoutes.Patch("/:review_id", h.HandleUpdateReview)
	reviewRoutes.Put("/:review_id", h.HandleUpdateReview)
	reviewRoutes.Delete("/:review_id", h.HandleDeleteReview)

	commentRoutes := reviewRoutes.Group("/:review_id/comments")
	commentRoutes.Get("/", h.HandleListComments)
	commentRoutes.Post("/", h.HandleCreateComment)
	commentRoutes.Get("/:comment_id", h.HandleGetComment)
	commentRoutes.Patch("/:comment_id", h.HandleUpdateComment)
	commentRoutes.Put("/:comment_id", h.HandleUpdateComment)
	commentRoutes.Delete("/:comment_id", h.HandleDeleteComment)
}

// ids reads the numeric path parameters in order.
func ids(c *fiber.Ctx, names ...string) ([]uint, error) {
	out := make([]uint, 0, len(names))
	for _, name := range names {
		id, err := idParam(c, name)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// HandleListReviews returns a page of a title's reviews.
func (h *ReviewHandler) HandleListReviews(c *fiber.Ctx) error {
	p, err := ids(c, "title_id")
	if err != nil {
		return errorResponse(c, err)
	}
	page := pageParam(c, h.pageSize)
	reviews, count, err := h.reviews.List(middleware.Actor(c), p[0], page)
	if err != nil {
		return errorResponse(c, err)
	}
	results := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		results = append(results, newReviewResponse(r))
	}
	return paginated(c, page, count, results)
}

// HandleCreateReview posts the caller's review of a title.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	p, err := ids(c, "title_id")
	if err != nil {
		return errorResponse(c, err)
	}
	var in services.ReviewInput
	if err := parseBody(c, &in); err != nil {
		return errorResponse(c, err)
	}
	review, err := h.reviews.Create(middleware.Actor(c), p[0], in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newReviewResponse(*review))
}

// HandleGetReview returns one review.
func (h *ReviewHandler) HandleGetReview(c *fiber.Ctx) error {
	p, err := ids(c, "title_id", "review_id")
	if err != nil {
		return errorResponse(c, err)
	}
	review, err := h.reviews.Get(middleware.Actor(c), p[0], p[1])
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(newReviewResponse(*review))
}

// HandleUpdateReview edits a review.
func (h *ReviewHandler) HandleUpdateReview(c *fiber.Ctx) error {
	p, err := ids(c, "title_id", "review_id")
	if err != nil {
		return errorResponse(c, err)
	}
	var patch services.ReviewPatch
	if err := parseBody(c, &patch); err != nil {
		return errorResponse(c, err)
	}
	review, err := h.reviews.Update(middleware.Actor(c), p[0], p[1], patch)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(newReviewResponse(*review))
}

// HandleDeleteReview deletes a review and its comments.
func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	p, err := ids(c, "title_id", "review_id")
	if err != nil {
		return errorResponse(c, err)
	}
	if err := h.reviews.Delete(middleware.Actor(c), p[0], p[1]); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListComments returns a page of a review's comments.
func (h *ReviewHandler) HandleListComments(c *fiber.Ctx) error {
	p, err := ids(c, "title_id", "review_id")
	if err != nil {
		return errorResponse(c, err)
	}
	page := pageParam(c, h.pageSize)
	comments, count, err := h.comments.List(middleware.Actor(c), p[0], p[1], page)
	if err != nil {
		return errorResponse(c, err)
	}
	results := make([]CommentResponse, 0, len(comments))
	for _, cm := range comments {
		results = append(results, newCommentResponse(cm))
	}
	return paginated(c, page, count, results)
}

// HandleCreateComment posts the caller's comment on a review.
func (h *ReviewHandler) HandleCreateComment(c *fiber.Ctx) error {
	p, err := ids(c, "title_id", "review_id")
	if err != nil {
		return errorResponse(c, err)
	}
	var in services.CommentInput
	if err := parseBody(c, &in); err != nil {
		return errorResponse(c, err)
	}
	comment, err := h.comments.Create(middleware.Actor(c), p[0], p[1], in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newCommentResponse(*comment))
}

// HandleGetComment returns one comment.
func (h *ReviewHandler) HandleGetComment(c *fiber.Ctx) error {
	p, err := ids(c, "title_id", "review_id", "comment_id")
	if err != nil {
		return errorResponse(c, err)
	}
	comment, err := h.comments.Get(middleware.Actor(c), p[0], p[1], p[2])
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(newCommentResponse(*comment))
}

// HandleUpdateComment edits a comment.
func (h *ReviewHandler) HandleUpdateComment(c *fiber.Ctx) error {
	p, err := ids(c, "title_id", "review_id", "comment_id")
	if err != nil {
		return errorResponse(c, err)
	}
	var in services.CommentInput
	if err := parseBody(c, &in); err != nil {
		return errorResponse(c, err)
	}
	comment, err := h.comments.Update(middleware.Actor(c), p[0], p[1], p[2], in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(newCommentResponse(*comment))
}

// HandleDeleteComment deletes a comment.
func (h *ReviewHandler) HandleDeleteComment(c *fiber.Ctx) error {
	p, err := ids(c, "title_id", "review_id", "comment_id")
	if err != nil {
		return errorResponse(c, err)
	}
	if err := h.comments.Delete(middleware.Actor(c), p[0], p[1], p[2]); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
