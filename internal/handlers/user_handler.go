package handlers

import (
	"yamdb/internal/middleware"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user administration and the caller's own profile.
type UserHandler struct {
	service  *services.UserService
	pageSize int
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, pageSize int) *UserHandler {
	return &UserHandler{service: service, pageSize: pageSize}
}

// RegisterRoutes registers the user routes. /users/me is matched before
// /users/:username.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/me", h.HandleGetMe)
	userRoutes.Patch("/me", h.HandleUpdateMe)
	userRoutes.Get("/", h.HandleList)
	userRoutes.Post("/", h.HandleCreate)
	userRoutes.Get("/:username", h.HandleGet)
	userRoutes.Patch("/:username", h.HandleUpdate)
	userRoutes.Put("/:username", h.HandleUpdate)
}

// HandleList returns a page of users.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	page := pageParam(c, h.pageSize)
	users, count, err := h.service.List(middleware.Actor(c), page)
	if err != nil {
		return errorResponse(c, err)
	}
	return paginated(c, page, count, users)
}

// HandleCreate registers a user on behalf of an admin.
func (h *UserHandler) HandleCreate(c *fiber.Ctx) error {
	var in services.UserInput
	if err := parseBody(c, &in); err != nil {
		return errorResponse(c, err)
	}
	user, err := h.service.Create(middleware.Actor(c), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleGet returns a user by username.
func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	user, err := h.service.Get(middleware.Actor(c), c.Params("username"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(user)
}

// HandleUpdate edits any field of a user, role included.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	var patch services.UserPatch
	if err := parseBody(c, &patch); err != nil {
		return errorResponse(c, err)
	}
	user, err := h.service.Update(middleware.Actor(c), c.Params("username"), patch)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(user)
}

// HandleGetMe returns the caller's profile.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	user, err := h.service.Me(middleware.Actor(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(user)
}

// HandleUpdateMe edits the caller's profile. The role cannot be changed here.
func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	var patch services.UserPatch
	if err := parseBody(c, &patch); err != nil {
		return errorResponse(c, err)
	}
	user, err := h.service.UpdateMe(middleware.Actor(c), patch)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(user)
}
