package controller

import (
	"fmt"
	"path/filepath"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/serverutils"
	"rag-chat-be/internal/service"
	"rag-chat-be/pkg/ingestion"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IKnowledgeBaseController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	UploadDocument(ctx *fiber.Ctx) error
	ListDocuments(ctx *fiber.Ctx) error
	DeleteDocument(ctx *fiber.Ctx) error
}

type knowledgeBaseController struct {
	kbService        service.IKnowledgeBaseService
	ingestionService service.IIngestionService
	uploadTmpDir     string
}

func NewKnowledgeBaseController(
	kbService service.IKnowledgeBaseService,
	ingestionService service.IIngestionService,
	uploadTmpDir string,
) IKnowledgeBaseController {
	return &knowledgeBaseController{
		kbService:        kbService,
		ingestionService: ingestionService,
		uploadTmpDir:     uploadTmpDir,
	}
}

func (c *knowledgeBaseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/kb/v1")
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Post(":id/documents", c.UploadDocument)
	h.Get(":id/documents", c.ListDocuments)
	h.Delete(":id/documents/:docId", c.DeleteDocument)
}

func (c *knowledgeBaseController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.RequireUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateKBRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.kbService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create knowledge base", res))
}

func (c *knowledgeBaseController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.RequireUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.kbService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get knowledge bases", res))
}

func (c *knowledgeBaseController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.RequireUserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid knowledge base id")
	}

	res, err := c.kbService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get knowledge base", res))
}

func (c *knowledgeBaseController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.RequireUserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid knowledge base id")
	}

	var req dto.UpdateKBRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.kbService.Update(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update knowledge base", res))
}

func (c *knowledgeBaseController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.RequireUserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid knowledge base id")
	}

	if err := c.kbService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete knowledge base", nil))
}

// UploadDocument accepts a multipart file, stages it to a temp path and
// hands it to the ingestion pipeline. Processing continues in the
// background; poll the document status for the outcome.
func (c *knowledgeBaseController) UploadDocument(ctx *fiber.Ctx) error {
	userId, err := serverutils.RequireUserId(ctx)
	if err != nil {
		return err
	}
	kbId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid knowledge base id")
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

	res, err := c.ingestionService.IngestKBDocument(ctx.Context(), kbId, userId, tmpPath, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document accepted for processing", res))
}

func (c *knowledgeBaseController) ListDocuments(ctx *fiber.Ctx) error {
	kbId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid knowledge base id")
	}

	res, err := c.kbService.ListDocuments(ctx.Context(), kbId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get documents", res))
}

func (c *knowledgeBaseController) DeleteDocument(ctx *fiber.Ctx) error {
	kbId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid knowledge base id")
	}
	docId, err := uuid.Parse(ctx.Params("docId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	if err := c.kbService.DeleteDocument(ctx.Context(), kbId, docId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete document", nil))
}
