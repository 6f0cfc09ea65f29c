package errors

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

const internalError = "Internal server error"

// HandleError writes the wire representation of err. Pipeline errors keep
// their category and diagnostics, anything else becomes a generic 500.
func HandleError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if ae, ok := As(err); ok {
		if ae.Err != nil {
			slog.Warn("analysis error", "kind", ae.Kind, "message", ae.Message, "err", ae.Err)
		}
		return c.Status(ae.Status()).JSON(ae.Body())
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	slog.Error("unhandled error", "path", c.Path(), "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": internalError})
}

// FiberErrorHandler is installed as fiber.Config.ErrorHandler so that errors
// escaping a handler never leak internal detail.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	return HandleError(c, err)
}
