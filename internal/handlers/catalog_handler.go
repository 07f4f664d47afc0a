package handlers

import (
	"yamdb/internal/middleware"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service  *services.CategoryService
	pageSize int
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CategoryService, pageSize int) *CategoryHandler {
	return &CategoryHandler{service: service, pageSize: pageSize}
}

// RegisterRoutes registers the category routes.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleList)
	categoryRoutes.Post("/", h.HandleCreate)
	categoryRoutes.Get("/:slug", h.HandleGet)
	categoryRoutes.Patch("/:slug", h.HandleUpdate)
	categoryRoutes.Put("/:slug", h.HandleUpdate)
	categoryRoutes.Delete("/:slug", h.HandleDelete)
}

// HandleList returns a page of categories, optionally filtered by ?search=.
func (h *CategoryHandler) HandleList(c *fiber.Ctx) error {
	page := pageParam(c, h.pageSize)
	categories, count, err := h.service.List(middleware.Actor(c), c.Query("search"), page)
	if err != nil {
		return errorResponse(c, err)
	}
	return paginated(c, page, count, categories)
}

// HandleCreate creates a category.
func (h *CategoryHandler) HandleCreate(c *fiber.Ctx) error {
	var in services.TaxonomyInput
	if err := parseBody(c, &in); err != nil {
		return errorResponse(c, err)
	}
	category, err := h.service.Create(middleware.Actor(c), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleGet returns a category by slug.
func (h *CategoryHandler) HandleGet(c *fiber.Ctx) error {
	category, err := h.service.Get(middleware.Actor(c), c.Params("slug"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(category)
}

// HandleUpdate renames a category or changes its slug.
func (h *CategoryHandler) HandleUpdate(c *fiber.Ctx) error {
	var patch services.TaxonomyPatch
	if err := parseBody(c, &patch); err != nil {
		return errorResponse(c, err)
	}
	category, err := h.service.Update(middleware.Actor(c), c.Params("slug"), patch)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(category)
}

// HandleDelete deletes a category and answers 204 with its former representation.
func (h *CategoryHandler) HandleDelete(c *fiber.Ctx) error {
	category, err := h.service.Delete(middleware.Actor(c), c.Params("slug"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusNoContent).JSON(category)
}

// GenreHandler handles HTTP requests for genres.
type GenreHandler struct {
	service  *services.GenreService
	pageSize int
}

// NewGenreHandler creates a new GenreHandler.
func NewGenreHandler(service *services.GenreService, pageSize int) *GenreHandler {
	return &GenreHandler{service: service, pageSize: pageSize}
}

// RegisterRoutes registers the genre routes.
func (h *GenreHandler) RegisterRoutes(router fiber.Router) {
	genreRoutes := router.Group("/genres")
	genreRoutes.Get("/", h.HandleList)
	genreRoutes.Post("/", h.HandleCreate)
	genreRoutes.Delete("/:slug", h.HandleDelete)
}

// HandleList returns a page of genres, optionally filtered by ?search=.
func (h *GenreHandler) HandleList(c *fiber.Ctx) error {
	page := pageParam(c, h.pageSize)
	genres, count, err := h.service.List(middleware.Actor(c), c.Query("search"), page)
	if err != nil {
		return errorResponse(c, err)
	}
	return paginated(c, page, count, genres)
}

// HandleCreate creates a genre.
func (h *GenreHandler) HandleCreate(c *fiber.Ctx) error {
	var in services.TaxonomyInput
	if err := parseBody(c, &in); err != nil {
		return errorResponse(c, err)
	}
	genre, err := h.service.Create(middleware.Actor(c), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(genre)
}

// HandleDelete deletes a genre.
func (h *GenreHandler) HandleDelete(c *fiber.Ctx) error {
	genre, err := h.service.Delete(middleware.Actor(c), c.Params("slug"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusNoContent).JSON(genre)
}
