package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	db Pinger
}

// NewHandler reports liveness. db may be nil when no SQL store is configured.
func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/health", h.check)
}

func (h *Handler) check(c *fiber.Ctx) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			log.Warnw("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
