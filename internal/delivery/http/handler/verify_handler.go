package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"signtusk/internal/domain/entity"
	"signtusk/internal/usecase"
)

type VerifyHandler struct {
	verify usecase.VerifyUsecase
	keys   usecase.KeyUsecase
	logger *zap.Logger
}

func NewVerifyHandler(verify usecase.VerifyUsecase, keys usecase.KeyUsecase, logger *zap.Logger) *VerifyHandler {
	return &VerifyHandler{
		verify: verify,
		keys:   keys,
		logger: logger,
	}
}

type verifyRequest struct {
	File []byte `json:"file"`
}

// Verify godoc
// @Summary Verify a document's signatures
// @Description Recomputes the digest and re-validates every stored signature.
// @Description A mismatch is a normal valid:false result, never an error.
// @Tags verify
// @Accept json
// @Produce json
// @Param request body verifyRequest true "Verify request"
// @Success 200 {object} entity.APIResponse
// @Router /api/v1/verify [post]
func (h *VerifyHandler) Verify(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid request body"),
		)
	}

	result, err := h.verify.Verify(ctx, req.File)
	if err != nil {
		h.logger.Error("Verification failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(result, "Verification completed"))
}

// ResolveTag resolves a verification-link payload into the document's
// verification summary.
func (h *VerifyHandler) ResolveTag(c *fiber.Ctx) error {
	ctx := c.UserContext()

	result, err := h.verify.ResolveTag(ctx, c.Params("tag"))
	if err != nil {
		h.logger.Error("Failed to resolve verification tag", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(result, "Verification completed"))
}

type registerKeyRequest struct {
	Identity  string `json:"identity"`
	PublicKey string `json:"public_key"`
}

// RegisterKey enrolls a signer identity's public key.
func (h *VerifyHandler) RegisterKey(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req registerKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid request body"),
		)
	}

	if err := h.keys.RegisterPublicKey(ctx, req.Identity, req.PublicKey); err != nil {
		h.logger.Error("Failed to register public key", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(
		entity.NewSuccessResponse(nil, "Public key registered successfully"),
	)
}
