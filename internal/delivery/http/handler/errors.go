package handler

import (
	"github.com/gofiber/fiber/v2"

	"signtusk/internal/domain/entity"
)

// statusForCode maps domain error codes to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case entity.CodeInvalidFile, entity.CodeNoSigners:
		return fiber.StatusBadRequest
	case entity.CodeNotFound:
		return fiber.StatusNotFound
	case entity.CodeUnauthorized:
		return fiber.StatusForbidden
	case entity.CodeDuplicateDocument, entity.CodeInvalidTransition,
		entity.CodeAlreadyActed, entity.CodeOutOfOrder:
		return fiber.StatusConflict
	case entity.CodeSigningFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	if de, ok := entity.AsDomainError(err); ok {
		return c.Status(statusForCode(de.Code)).JSON(entity.NewDomainErrorResponse(de))
	}
	return c.Status(fiber.StatusInternalServerError).JSON(
		entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
	)
}
