package category

import (
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/categories", h.getCategories)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	return c.JSON(h.service.List())
}
