package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"futurisys/attrition-api/internal/models"
)

const welcomeMessage = "Welcome to Futurisys ML API"

// ERDGenerator renders the database schema as markdown.
type ERDGenerator interface {
	Generate(ctx context.Context) (string, error)
}

type MetaHandler struct {
	title   string
	version string
	erd     ERDGenerator
	now     func() time.Time
}

func NewMetaHandler(title, version string, erd ERDGenerator) *MetaHandler {
	return &MetaHandler{title: title, version: version, erd: erd, now: time.Now}
}

// HandleRoot handles GET /v1/
func (h *MetaHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(models.RootResponse{
		Message: welcomeMessage,
		Version: h.version,
	})
}

// HandleHealth handles GET /v1/health
func (h *MetaHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
	})
}

// HandleERD handles GET /v1/erd
func (h *MetaHandler) HandleERD(c *fiber.Ctx) error {
	md, err := h.erd.Generate(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return c.SendString(md)
}

// HandleBanner handles GET / with a summary of the available endpoints.
func (h *MetaHandler) HandleBanner(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": h.title,
		"version": h.version,
		"endpoints": []string{
			"GET /v1/health",
			"GET /v1/erd",
			"POST /v1/predictions",
			"GET /v1/predictions",
			"GET /v1/predictions/:id",
			"DELETE /v1/predictions/:id",
			"GET /v1/outputs",
			"GET /ui",
			"GET /metrics",
		},
	})
}
