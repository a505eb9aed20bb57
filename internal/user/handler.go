package user

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
)

type Handler struct {
	service  *Service
	secret   string
	tokenTTL time.Duration
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewHandler(service *Service, secret string, tokenTTL time.Duration) *Handler {
	return &Handler{service: service, secret: secret, tokenTTL: tokenTTL}
}

// RegisterPublicRoutes mounts /auth. Login is only served when tokens can be signed.
func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Post("/auth/register", h.register)
	if h.secret != "" {
		app.Post("/auth/login", h.login)
	}
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(RegisterInput)
	if err := c.BodyParser(payload); err != nil {
		return apperr.InvalidBody(err)
	}

	created, err := h.service.Register(c.UserContext(), *payload)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return apperr.Conflict(CodeEmailExists, "Email already exists")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.InvalidBody(err)
	}

	user, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return apperr.Unauthorized(CodeInvalidCredentials, "Invalid email or password")
		}
		return err
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(h.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.secret))
	if err != nil {
		return apperr.Internal(errors.New("failed to generate token"))
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"token":   signed,
	})
}
