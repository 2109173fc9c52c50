package handler

import (
	"medlit-rag-be/internal/dto"
	"medlit-rag-be/internal/pkg/logger"
	"medlit-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PaperHandler struct {
	service service.IIngestService
	logger  logger.ILogger
}

func NewPaperHandler(svc service.IIngestService, log logger.ILogger) *PaperHandler {
	return &PaperHandler{
		service: svc,
		logger:  log,
	}
}

// IndexPaper accepts extracted paper text and queues it for chunking
// and embedding. Returns 202: indexing happens asynchronously.
func (h *PaperHandler) IndexPaper(c *fiber.Ctx) error {
	var req dto.IndexPaperRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.SourceFile == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "source_file is required"})
	}
	if len(req.Pages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "pages must not be empty"})
	}

	if err := h.service.Publish(c.Context(), req); err != nil {
		h.logger.Error("PaperHandler", "Failed to queue paper for indexing", map[string]interface{}{
			"source_file": req.SourceFile,
			"error":       err.Error(),
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to queue paper"})
	}

	h.logger.Info("PaperHandler", "Paper queued for indexing", map[string]interface{}{
		"source_file": req.SourceFile,
		"pages":       len(req.Pages),
	})
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":      "queued",
		"source_file": req.SourceFile,
	})
}
