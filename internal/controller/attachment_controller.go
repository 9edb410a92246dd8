package controller

import (
	"fmt"
	"path/filepath"

	"rag-chat-be/internal/pkg/serverutils"
	"rag-chat-be/internal/service"
	"rag-chat-be/pkg/ingestion"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAttachmentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type attachmentController struct {
	attachmentService service.IAttachmentService
	ingestionService  service.IIngestionService
	uploadTmpDir      string
}

func NewAttachmentController(
	attachmentService service.IAttachmentService,
	ingestionService service.IIngestionService,
	uploadTmpDir string,
) IAttachmentController {
	return &attachmentController{
		attachmentService: attachmentService,
		ingestionService:  ingestionService,
		uploadTmpDir:      uploadTmpDir,
	}
}

func (c *attachmentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1/:id/attachments")
	h.Post("", c.Upload)
	h.Get("", c.List)
	h.Get(":attachmentId", c.Show)
	h.Delete(":attachmentId", c.Delete)
}

func (c *attachmentController) Upload(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	userId, err := serverutils.OptionalUserId(ctx)
	if err != nil {
		return err
	}
	uploaderId := uuid.Nil
	if userId != nil {
		uploaderId = *userId
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file field")
	}
	if !ingestion.IsSupportedExtension(fileHeader.Filename) {
		return fiber.NewError(fiber.StatusUnsupportedMediaType,
			fmt.Sprintf("unsupported file type %q", filepath.Ext(fileHeader.Filename)))
	}

	tmpPath := filepath.Join(c.uploadTmpDir, fmt.Sprintf("upload-%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename)))
	if err := ctx.SaveFile(fileHeader, tmpPath); err != nil {
		return fmt.Errorf("stage upload: %w", err)
	}

	res, err := c.ingestionService.IngestAttachment(ctx.Context(), sessionId, uploaderId, tmpPath, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Attachment accepted for processing", res))
}

func (c *attachmentController) List(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.attachmentService.List(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get attachments", res))
}

func (c *attachmentController) Show(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	attachmentId, err := uuid.Parse(ctx.Params("attachmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid attachment id")
	}

	res, err := c.attachmentService.Show(ctx.Context(), sessionId, attachmentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get attachment", res))
}

func (c *attachmentController) Delete(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	attachmentId, err := uuid.Parse(ctx.Params("attachmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid attachment id")
	}

	if err := c.attachmentService.Delete(ctx.Context(), sessionId, attachmentId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete attachment", nil))
}
