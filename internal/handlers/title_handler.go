package handlers

import (
	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/repositories"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TitleHandler handles HTTP requests for titles.
type TitleHandler struct {
	service  *services.TitleService
	pageSize int
}

// NewTitleHandler creates a new TitleHandler.
func NewTitleHandler(service *services.TitleService, pageSize int) *TitleHandler {
	return &TitleHandler{service: service, pageSize: pageSize}
}

// RegisterRoutes registers the title routes.
func (h *TitleHandler) RegisterRoutes(router fiber.Router) {
	titleRoutes := router.Group("/titles")
	titleRoutes.Get("/", h.HandleList)
	titleRoutes.Post("/", h.HandleCreate)
	titleRoutes.Get("/:id", h.HandleGet)
	titleRoutes.Patch("/:id", h.HandleUpdate)
	titleRoutes.Put("/:id", h.HandleUpdate)
	titleRoutes.Delete("/:id", h.HandleDelete)
}

// titleResponse renders an empty genre list as [] rather than null.
func titleResponse(t *models.Title) *models.Title {
	if t.Genres == nil {
		t.Genres = []models.Genre{}
	}
	return t
}

// HandleList returns a page of titles filtered by name, category, genre and year.
func (h *TitleHandler) HandleList(c *fiber.Ctx) error {
	filter := repositories.TitleFilter{
		Name:     c.Query("name"),
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Year:     c.QueryInt("year", 0),
	}
	page := pageParam(c, h.pageSize)
	titles, count, err := h.service.List(middleware.Actor(c), filter, page)
	if err != nil {
		return errorResponse(c, err)
	}
	for i := range titles {
		titleResponse(&titles[i])
	}
	return paginated(c, page, count, titles)
}

// HandleCreate creates a title.
func (h *TitleHandler) HandleCreate(c *fiber.Ctx) error {
	var in services.TitleInput
	if err := parseBody(c, &in); err != nil {
		return errorResponse(c, err)
	}
	title, err := h.service.Create(middleware.Actor(c), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(titleResponse(title))
}

// HandleGet returns a title by ID.
func (h *TitleHandler) HandleGet(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}
	title, err := h.service.Get(middleware.Actor(c), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(titleResponse(title))
}

// HandleUpdate edits a title.
func (h *TitleHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}
	var patch services.TitlePatch
	if err := parseBody(c, &patch); err != nil {
		return errorResponse(c, err)
	}
	title, err := h.service.Update(middleware.Actor(c), id, patch)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(titleResponse(title))
}

// HandleDelete deletes a title with its reviews and comments.
func (h *TitleHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}
	if err := h.service.Delete(middleware.Actor(c), id); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
