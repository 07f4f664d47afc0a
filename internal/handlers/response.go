package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"yamdb/internal/repositories"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// errorResponse writes err with the status code of its category.
func errorResponse(c *fiber.Ctx, err error) error {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  vErr.Fields,
		})
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid or expired token",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Permission denied",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Not found",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Conflict",
			"error":   err.Error(),
		})
	}
	log.Printf("Error handling %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
		"error":   err.Error(),
	})
}

// parseBody decodes the request body into out. A malformed body is a
// validation failure.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		log.Printf("Error parsing request body for %s %s: %v", c.Method(), c.Path(), err)
		return fmt.Errorf("%w: invalid request body: %v", services.ErrValidation, err)
	}
	return nil
}

// idParam reads a positive numeric path parameter. Anything else cannot
// name a stored row and is reported as not found.
func idParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s %q %w", name, c.Params(name), services.ErrNotFound)
	}
	return uint(id), nil
}

// pageParam reads the 1-based ?page= query parameter, clamped to
// [1, repositories.MaxPageNumber].
func pageParam(c *fiber.Ctx, size int) repositories.Page {
	n := c.QueryInt("page", 1)
	if n < 1 {
		n = 1
	}
	if n > repositories.MaxPageNumber {
		n = repositories.MaxPageNumber
	}
	return repositories.Page{Number: n, Size: size}
}

// pageURL is the current request URL with its page parameter set to n.
func pageURL(c *fiber.Ctx, n int) string {
	query := url.Values{}
	for k, v := range c.Queries() {
		query.Set(k, v)
	}
	query.Set("page", strconv.Itoa(n))
	return c.BaseURL() + c.Path() + "?" + query.Encode()
}

// paginated writes one page of results in the {count, next, previous,
// results} envelope.
func paginated[T any](c *fiber.Ctx, page repositories.Page, count int64, results []T) error {
	var next, previous *string
	if int64(page.Number)*int64(page.Size) < count {
		u := pageURL(c, page.Number+1)
		next = &u
	}
	if page.Number > 1 {
		u := pageURL(c, page.Number-1)
		previous = &u
	}
	if results == nil {
		results = []T{}
	}
	return c.JSON(fiber.Map{
		"count":    count,
		"next":     next,
		"previous": previous,
		"results":  results,
	})
}
