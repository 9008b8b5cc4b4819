package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"signtusk/internal/domain/entity"
	"signtusk/internal/usecase"
)

type MultiSignHandler struct {
	multisign usecase.MultiSignUsecase
	logger    *zap.Logger
}

func NewMultiSignHandler(multisign usecase.MultiSignUsecase, logger *zap.Logger) *MultiSignHandler {
	return &MultiSignHandler{
		multisign: multisign,
		logger:    logger,
	}
}

type initiateRequest struct {
	File             []byte          `json:"file"`
	OwnerIdentity    string          `json:"owner_identity"`
	SignerIdentities []string        `json:"signer_identities"`
	Ordering         string          `json:"ordering"`
	Metadata         entity.Metadata `json:"metadata"`
	ConfirmDuplicate bool            `json:"confirm_duplicate"`
}

// Initiate godoc
// @Summary Initiate a multi-signer document
// @Description Creates a pending document with a fixed signer set
// @Tags multisign
// @Accept json
// @Produce json
// @Param request body initiateRequest true "Initiate request"
// @Success 201 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 409 {object} entity.APIResponse
// @Router /api/v1/multisign [post]
func (h *MultiSignHandler) Initiate(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req initiateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid request body"),
		)
	}

	doc, err := h.multisign.Initiate(ctx, usecase.InitiateRequest{
		Bytes:            req.File,
		OwnerIdentity:    req.OwnerIdentity,
		SignerIdentities: req.SignerIdentities,
		Ordering:         entity.OrderingPolicy(req.Ordering),
		Metadata:         req.Metadata,
		ConfirmDuplicate: req.ConfirmDuplicate,
	})
	if err != nil {
		h.logger.Error("Failed to initiate multi-sign request", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(
		entity.NewSuccessResponse(fiber.Map{
			"document":   doc,
			"verify_tag": entity.VerifyTag(doc),
		}, "Multi-sign request created successfully"),
	)
}

type memberSignRequest struct {
	SignerIdentity string `json:"signer_identity"`
	Credential     string `json:"credential"`
}

// SignAsMember godoc
// @Summary Sign as one member of a multi-signer document
// @Tags multisign
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body memberSignRequest true "Member sign request"
// @Success 200 {object} entity.APIResponse
// @Failure 403 {object} entity.APIResponse
// @Failure 409 {object} entity.APIResponse
// @Router /api/v1/multisign/{id}/sign [post]
func (h *MultiSignHandler) SignAsMember(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req memberSignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid request body"),
		)
	}
	if req.SignerIdentity == "" || req.Credential == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "signer_identity and credential are required"),
		)
	}

	result, err := h.multisign.SignAsMember(ctx, usecase.MemberSignRequest{
		DocumentID:     c.Params("id"),
		SignerIdentity: req.SignerIdentity,
		Credential:     req.Credential,
	})
	if err != nil {
		h.logger.Error("Failed to sign as member", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(result, "Signature recorded"))
}

type memberRejectRequest struct {
	SignerIdentity string `json:"signer_identity"`
}

// RejectAsMember rejects on behalf of one member, voiding the whole request.
func (h *MultiSignHandler) RejectAsMember(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req memberRejectRequest
	if err := c.BodyParser(&req); err != nil || req.SignerIdentity == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "signer_identity is required"),
		)
	}

	result, err := h.multisign.RejectAsMember(ctx, c.Params("id"), req.SignerIdentity)
	if err != nil {
		h.logger.Error("Failed to reject as member", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(result, "Rejection recorded"))
}
