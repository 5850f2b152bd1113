package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/sol/internal/handlers"
	"github.com/example/sol/internal/services"
)

// ErrorHandler renders every error as {success:false, error:{code, message}}.
// Business errors carry their own status and a localized message; anything
// unexpected is logged and reported as an opaque 500.
func ErrorHandler(defaultLang services.Lang) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		lang := handlers.RequestLang(c, defaultLang)

		var orderErr *services.OrderError
		if errors.As(err, &orderErr) {
			return respondError(c, orderErr.Info.Status, orderErr.Info.Code, orderErr.Message(lang))
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return respondError(c, fe.Code, statusCode(fe.Code), fe.Message)
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, fiber.StatusNotFound, statusCode(fiber.StatusNotFound), "not found")
		}

		log.Printf("[HTTP] %s %s failed: %v", c.Method(), c.OriginalURL(), err)
		return respondError(c, fiber.StatusInternalServerError, "INTERNAL", services.Describe("error.INTERNAL", lang))
	}
}

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// statusCode turns an HTTP status into an error code, e.g. 404 -> NOT_FOUND.
func statusCode(status int) string {
	text := strings.ToUpper(http.StatusText(status))
	if text == "" {
		return "ERROR"
	}
	return strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text)
}
