package order

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/user"
	"github.com/wichananm65/campus-market-backend/internal/validation"
)

const (
	CodeProductIDRequired  = "PRODUCT_ID_REQUIRED"
	CodeInvalidProductID   = "INVALID_PRODUCT_ID"
	CodeBuyerIDRequired    = "BUYER_ID_REQUIRED"
	CodeInvalidBuyerID     = "INVALID_BUYER_ID"
	CodeSellerIDRequired   = "SELLER_ID_REQUIRED"
	CodeInvalidSellerID    = "INVALID_SELLER_ID"
	CodeSelfPurchase       = "SELF_PURCHASE"
	CodeSellerMismatch     = "SELLER_MISMATCH"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeProductUnavailable = "PRODUCT_UNAVAILABLE"
)

// Handler delegates order operations to the order service.
type Handler struct {
	service *Service
}

type createOrderRequest struct {
	ProductID validation.Field `json:"productId"`
	BuyerID   validation.Field `json:"buyerId"`
	SellerID  validation.Field `json:"sellerId"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router, auth fiber.Handler) {
	app.Post("/orders", auth, h.createOrder)
	app.Get("/orders/my-orders", auth, h.getMyOrders)
	app.Get("/orders/my-sales", auth, h.getMySales)
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	payload := new(createOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.InvalidBody(err)
	}
	if err := user.BindPrincipal(c, &payload.BuyerID); err != nil {
		return err
	}

	productID, buyerID, sellerID, err := validateCreate(payload)
	if err != nil {
		return err
	}

	ord, err := h.service.Purchase(c.UserContext(), productID, buyerID, sellerID)
	if err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound):
			return apperr.NotFound(CodeProductNotFound, "Product not found")
		case errors.Is(err, ErrSellerMismatch):
			return apperr.Validation(CodeSellerMismatch, "Seller ID does not match the product's seller")
		case errors.Is(err, ErrProductUnavailable):
			return apperr.Conflict(CodeProductUnavailable, "Product is no longer available")
		case errors.Is(err, ErrBuyerNotFound):
			return apperr.Validation(CodeInvalidBuyerID, "Buyer ID does not reference an existing user")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(ord)
}

// validateCreate checks presence of every id before their format, then
// forbids buying from yourself.
func validateCreate(p *createOrderRequest) (productID, buyerID, sellerID int64, err error) {
	switch {
	case !p.ProductID.Present():
		return 0, 0, 0, apperr.Validation(CodeProductIDRequired, "Product ID is required")
	case !p.BuyerID.Present():
		return 0, 0, 0, apperr.Validation(CodeBuyerIDRequired, "Buyer ID is required")
	case !p.SellerID.Present():
		return 0, 0, 0, apperr.Validation(CodeSellerIDRequired, "Seller ID is required")
	}

	var ok bool
	if productID, ok = p.ProductID.Int(); !ok || productID < 1 {
		return 0, 0, 0, apperr.Validation(CodeInvalidProductID, "Product ID must be a valid integer")
	}
	if buyerID, ok = p.BuyerID.Int(); !ok || buyerID < 1 {
		return 0, 0, 0, apperr.Validation(CodeInvalidBuyerID, "Buyer ID must be a valid integer")
	}
	if sellerID, ok = p.SellerID.Int(); !ok || sellerID < 1 {
		return 0, 0, 0, apperr.Validation(CodeInvalidSellerID, "Seller ID must be a valid integer")
	}

	if buyerID == sellerID {
		return 0, 0, 0, apperr.Validation(CodeSelfPurchase, "Buyer and seller cannot be the same user")
	}
	return productID, buyerID, sellerID, nil
}

func (h *Handler) getMyOrders(c *fiber.Ctx) error {
	raw, err := user.BindPrincipalQuery(c, c.Query("buyerId"))
	if err != nil {
		return err
	}
	buyerID, ok := validation.PositiveID(raw)
	if !ok {
		return apperr.Validation(CodeInvalidBuyerID, "Valid buyer ID is required")
	}

	orders, err := h.service.ListByBuyer(c.UserContext(), buyerID)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

func (h *Handler) getMySales(c *fiber.Ctx) error {
	raw, err := user.BindPrincipalQuery(c, c.Query("sellerId"))
	if err != nil {
		return err
	}
	sellerID, ok := validation.PositiveID(raw)
	if !ok {
		return apperr.Validation(CodeInvalidSellerID, "Valid seller ID is required")
	}

	orders, err := h.service.ListBySeller(c.UserContext(), sellerID)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}
