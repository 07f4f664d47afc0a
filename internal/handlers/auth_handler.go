package handlers

import (
	"log"

	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles sign-up and token exchange.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the authentication routes. mw runs before every
// auth route, e.g. a rate limiter.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, mw ...fiber.Handler) {
	authRoutes := router.Group("/auth", mw...)
	authRoutes.Post("/signup", h.HandleSignUp)
	authRoutes.Post("/token", h.HandleToken)
}

// HandleSignUp stores and mails a confirmation code for a new user.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var req services.SignUpRequest
	if err := parseBody(c, &req); err != nil {
		return errorResponse(c, err)
	}

	user, err := h.authService.SignUp(req)
	if err != nil {
		log.Printf("Sign-up of %s rejected: %v", req.Username, err)
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"username": user.Username,
		"email":    user.Email,
	})
}

// HandleToken exchanges a username and confirmation code for a JWT.
func (h *AuthHandler) HandleToken(c *fiber.Ctx) error {
	var req services.TokenRequest
	if err := parseBody(c, &req); err != nil {
		return errorResponse(c, err)
	}

	token, err := h.authService.IssueToken(req)
	if err != nil {
		log.Printf("Token request for %s failed: %v", req.Username, err)
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": token})
}
