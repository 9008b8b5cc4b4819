package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"signtusk/internal/domain/entity"
	"signtusk/internal/usecase"
)

type DocumentHandler struct {
	lifecycle usecase.LifecycleUsecase
	audit     usecase.AuditUsecase
	logger    *zap.Logger
}

func NewDocumentHandler(lifecycle usecase.LifecycleUsecase, audit usecase.AuditUsecase, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		lifecycle: lifecycle,
		audit:     audit,
		logger:    logger,
	}
}

type uploadRequest struct {
	File             []byte          `json:"file"`
	OwnerIdentity    string          `json:"owner_identity"`
	Metadata         entity.Metadata `json:"metadata"`
	ConfirmDuplicate bool            `json:"confirm_duplicate"`
}

// Upload godoc
// @Summary Upload a document
// @Description Create a single-signer document from base64 file bytes
// @Tags documents
// @Accept json
// @Produce json
// @Param request body uploadRequest true "Upload request"
// @Success 201 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 409 {object} entity.APIResponse
// @Router /api/v1/documents [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req uploadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid request body"),
		)
	}

	result, err := h.lifecycle.Upload(ctx, usecase.UploadRequest{
		Bytes:            req.File,
		OwnerIdentity:    req.OwnerIdentity,
		Metadata:         req.Metadata,
		ConfirmDuplicate: req.ConfirmDuplicate,
	})
	if err != nil {
		h.logger.Error("Failed to upload document", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(
		entity.NewSuccessResponse(result, "Document uploaded successfully"),
	)
}

type actorRequest struct {
	ActorIdentity string `json:"actor_identity"`
}

// Preview marks the document previewed. Idempotent.
func (h *DocumentHandler) Preview(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req actorRequest
	if err := c.BodyParser(&req); err != nil || req.ActorIdentity == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "actor_identity is required"),
		)
	}

	doc, err := h.lifecycle.Preview(ctx, c.Params("id"), req.ActorIdentity)
	if err != nil {
		h.logger.Error("Failed to preview document", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(doc, "Document previewed"))
}

type decisionRequest struct {
	ActorIdentity string `json:"actor_identity"`
	Action        string `json:"action"`
}

// Decide godoc
// @Summary Accept or reject a previewed document
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body decisionRequest true "Decision"
// @Success 200 {object} entity.APIResponse
// @Failure 409 {object} entity.APIResponse
// @Router /api/v1/documents/{id}/decision [post]
func (h *DocumentHandler) Decide(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req decisionRequest
	if err := c.BodyParser(&req); err != nil || req.ActorIdentity == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "actor_identity is required"),
		)
	}
	if req.Action != usecase.DecisionAccept && req.Action != usecase.DecisionReject {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "action must be accept or reject"),
		)
	}

	doc, err := h.lifecycle.Decide(ctx, c.Params("id"), req.ActorIdentity, req.Action)
	if err != nil {
		h.logger.Error("Failed to apply decision", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(doc, "Decision applied"))
}

type signRequest struct {
	SigningIdentity string `json:"signing_identity"`
	Credential      string `json:"credential"`
	SignedArtifact  []byte `json:"signed_artifact"`
}

// Sign godoc
// @Summary Sign an accepted document
// @Description Signs the original digest and stamps the signed artifact's digest
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body signRequest true "Sign request"
// @Success 200 {object} entity.APIResponse
// @Failure 409 {object} entity.APIResponse
// @Failure 502 {object} entity.APIResponse
// @Router /api/v1/documents/{id}/sign [post]
func (h *DocumentHandler) Sign(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req signRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid request body"),
		)
	}
	if req.SigningIdentity == "" || req.Credential == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "signing_identity and credential are required"),
		)
	}

	result, err := h.lifecycle.Sign(ctx, usecase.SignRequest{
		DocumentID:      c.Params("id"),
		SigningIdentity: req.SigningIdentity,
		Credential:      req.Credential,
		SignedArtifact:  req.SignedArtifact,
	})
	if err != nil {
		h.logger.Error("Failed to sign document", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(result, "Document signed successfully"))
}

// Finalize promotes a signed document to completed. Idempotent.
func (h *DocumentHandler) Finalize(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req actorRequest
	if err := c.BodyParser(&req); err != nil || req.ActorIdentity == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "actor_identity is required"),
		)
	}

	doc, err := h.lifecycle.Finalize(ctx, c.Params("id"), req.ActorIdentity)
	if err != nil {
		h.logger.Error("Failed to finalize document", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(doc, "Document finalized"))
}

// Get returns one document record.
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()

	doc, err := h.lifecycle.Get(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(doc, "Document retrieved successfully"))
}

// List returns the owner's documents, newest first.
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()

	owner := c.Query("owner")
	if owner == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "owner is required"),
		)
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "10"))

	docs, err := h.lifecycle.ListByOwner(ctx, owner, page, perPage)
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(docs, "Documents retrieved successfully"))
}

// AuditHistory returns the append-only audit trail for a document.
func (h *DocumentHandler) AuditHistory(c *fiber.Ctx) error {
	ctx := c.UserContext()

	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "50"))

	entries, err := h.audit.History(ctx, c.Params("id"), page, perPage)
	if err != nil {
		h.logger.Error("Failed to get audit history", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(entries, "Audit history retrieved successfully"))
}
