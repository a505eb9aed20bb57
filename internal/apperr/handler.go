package apperr

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Handler is the fiber.Config ErrorHandler. It renders every error as
// {"error", "code"} and logs internal failures with the request context.
// Route params and the query string are logged; the body never is.
func Handler(c *fiber.Ctx, err error) error {
	ae := From(err)
	if ae.Status >= fiber.StatusInternalServerError {
		log.Errorw("request failed",
			"requestId", c.Locals("requestid"),
			"method", c.Method(),
			"path", c.Path(),
			"params", c.AllParams(),
			"query", string(c.Request().URI().QueryString()),
			"error", err,
		)
	}
	return c.Status(ae.Status).JSON(Body{Error: ae.Message, Code: ae.Code})
}
