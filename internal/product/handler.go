package product

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/category"
	"github.com/wichananm65/campus-market-backend/internal/user"
	"github.com/wichananm65/campus-market-backend/internal/validation"
)

const (
	CodeInvalidID           = "INVALID_ID"
	CodeSellerIDRequired    = "SELLER_ID_REQUIRED"
	CodeInvalidSellerID     = "INVALID_SELLER_ID"
	CodeNameRequired        = "NAME_REQUIRED"
	CodeDescriptionRequired = "DESCRIPTION_REQUIRED"
	CodeCategoryRequired    = "CATEGORY_REQUIRED"
	CodeInvalidCategory     = "INVALID_CATEGORY"
	CodeImageURLRequired    = "IMAGE_URL_REQUIRED"
	CodePriceRequired       = "PRICE_REQUIRED"
	CodeInvalidPrice        = "INVALID_PRICE"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeNoUpdateFields      = "NO_UPDATE_FIELDS"
	CodeInvalidPagination   = "INVALID_PAGINATION"
	CodeHasOrders           = "PRODUCT_HAS_ORDERS"
	CodeInvalidProduct      = "INVALID_PRODUCT"

	defaultLimit = 20
	maxLimit     = 100
)

type Handler struct {
	service *Service
}

type createRequest struct {
	SellerID    validation.Field `json:"sellerId"`
	Name        validation.Field `json:"name"`
	Description validation.Field `json:"description"`
	Category    validation.Field `json:"category"`
	Price       validation.Field `json:"price"`
	ImageURL    validation.Field `json:"imageUrl"`
}

type updateRequest struct {
	Name        validation.Field `json:"name"`
	Description validation.Field `json:"description"`
	Category    validation.Field `json:"category"`
	Price       validation.Field `json:"price"`
	ImageURL    validation.Field `json:"imageUrl"`
	Status      validation.Field `json:"status"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the catalog. /products/my-products must be registered
// before /products/:id or the latter would swallow it.
func (h *Handler) RegisterRoutes(app fiber.Router, auth fiber.Handler) {
	app.Get("/products", h.getProducts)
	app.Post("/products", auth, h.createProduct)
	app.Get("/products/my-products", auth, h.getMyProducts)
	app.Get("/products/:id", h.getProduct)
	app.Put("/products/:id", auth, h.updateProduct)
	app.Delete("/products/:id", auth, h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	filter, err := parseListFilter(c)
	if err != nil {
		return err
	}

	products, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func parseListFilter(c *fiber.Ctx) (ListFilter, error) {
	filter := ListFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Limit:    defaultLimit,
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || limit < 1 {
			return ListFilter{}, apperr.Validation(CodeInvalidPagination, "limit must be a positive integer")
		}
		filter.Limit = min(limit, maxLimit)
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || offset < 0 {
			return ListFilter{}, apperr.Validation(CodeInvalidPagination, "offset must be a non-negative integer")
		}
		filter.Offset = offset
	}
	return filter, nil
}

func (h *Handler) getMyProducts(c *fiber.Ctx) error {
	raw, err := user.BindPrincipalQuery(c, c.Query("sellerId"))
	if err != nil {
		return err
	}
	sellerID, ok := validation.PositiveID(raw)
	if !ok {
		return apperr.Validation(CodeInvalidSellerID, "Valid seller ID is required")
	}

	products, err := h.service.ListBySeller(c.UserContext(), sellerID)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(p)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	req := new(createRequest)
	if err := c.BodyParser(req); err != nil {
		return apperr.InvalidBody(err)
	}
	if err := user.BindPrincipal(c, &req.SellerID); err != nil {
		return err
	}

	p, err := validateCreate(req)
	if err != nil {
		return err
	}

	created, err := h.service.Create(c.UserContext(), p)
	if err != nil {
		if errors.Is(err, ErrSellerNotFound) {
			return apperr.Validation(CodeInvalidSellerID, "sellerId does not reference an existing user")
		}
		return mapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// validateCreate checks required fields first, then formats, then the
// category enum. The first failure wins.
func validateCreate(req *createRequest) (Product, error) {
	if !req.SellerID.Present() {
		return Product{}, apperr.Validation(CodeSellerIDRequired, "sellerId is required")
	}
	name, err := requiredText(req.Name, CodeNameRequired, "name")
	if err != nil {
		return Product{}, err
	}
	description, err := requiredText(req.Description, CodeDescriptionRequired, "description")
	if err != nil {
		return Product{}, err
	}
	if _, err := requiredText(req.Category, CodeCategoryRequired, "category"); err != nil {
		return Product{}, err
	}
	imageURL, err := requiredText(req.ImageURL, CodeImageURLRequired, "imageUrl")
	if err != nil {
		return Product{}, err
	}
	if !req.Price.Present() {
		return Product{}, apperr.Validation(CodePriceRequired, "price is required")
	}

	sellerID, ok := req.SellerID.Int()
	if !ok || sellerID < 1 {
		return Product{}, apperr.Validation(CodeInvalidSellerID, "sellerId must be a valid integer")
	}
	price, ok := req.Price.Float()
	if !ok || price <= 0 {
		return Product{}, apperr.Validation(CodeInvalidPrice, "price must be a positive number")
	}
	// The enum is matched against the untrimmed value, as on update.
	cat, _ := req.Category.Text()
	if !category.Valid(cat) {
		return Product{}, invalidCategory()
	}

	return Product{
		SellerID:    sellerID,
		Name:        name,
		Description: description,
		Category:    cat,
		Price:       price,
		ImageURL:    imageURL,
	}, nil
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	req := new(updateRequest)
	if err := c.BodyParser(req); err != nil {
		return apperr.InvalidBody(err)
	}
	u, err := validateUpdate(req)
	if err != nil {
		return err
	}

	if err := h.authorizeSeller(c, id); err != nil {
		return err
	}

	updated, err := h.service.Update(c.UserContext(), id, u)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(updated)
}

// validateUpdate checks price, category and status before the text fields.
// Absent and null fields stay nil.
func validateUpdate(req *updateRequest) (Update, error) {
	var u Update

	if req.Price.Present() {
		price, ok := req.Price.Number()
		if !ok || price <= 0 {
			return Update{}, apperr.Validation(CodeInvalidPrice, "Price must be a positive number")
		}
		u.Price = &price
	}
	if req.Category.Present() {
		cat, ok := req.Category.Text()
		if !ok || !category.Valid(cat) {
			return Update{}, invalidCategory()
		}
		u.Category = &cat
	}
	if req.Status.Present() {
		status, ok := req.Status.Text()
		if !ok || !validation.OneOf(status, Statuses) {
			return Update{}, apperr.Validation(CodeInvalidStatus, "Status must be one of: "+strings.Join(Statuses, ", "))
		}
		u.Status = &status
	}

	var err error
	if u.Name, err = optionalText(req.Name, CodeNameRequired, "name"); err != nil {
		return Update{}, err
	}
	if u.Description, err = optionalText(req.Description, CodeDescriptionRequired, "description"); err != nil {
		return Update{}, err
	}
	if u.ImageURL, err = optionalText(req.ImageURL, CodeImageURLRequired, "imageUrl"); err != nil {
		return Update{}, err
	}

	if u.Empty() {
		return Update{}, apperr.Validation(CodeNoUpdateFields, "No fields provided for update")
	}
	return u, nil
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	if err := h.authorizeSeller(c, id); err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
		"id":      id,
	})
}

// authorizeSeller loads the product and, when a principal is present,
// requires it to be the seller. Without a principal it only checks existence.
func (h *Handler) authorizeSeller(c *fiber.Ctx, id int64) error {
	if _, ok := user.PrincipalID(c); !ok {
		return nil
	}
	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return mapError(err)
	}
	return user.RequireOwner(c, p.SellerID)
}

func productID(c *fiber.Ctx) (int64, error) {
	id, ok := validation.PositiveID(c.Params("id"))
	if !ok {
		return 0, apperr.Validation(CodeInvalidID, "Valid product ID is required")
	}
	return id, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound(apperr.CodeNotFound, "Product not found")
	case errors.Is(err, ErrHasOrders):
		return apperr.Conflict(CodeHasOrders, "Product has orders and cannot be deleted")
	case errors.Is(err, ErrConstraint):
		return apperr.Validation(CodeInvalidProduct, "Product data was rejected by the store")
	}
	return err
}

func invalidCategory() error {
	return apperr.Validation(CodeInvalidCategory, "category must be one of: "+strings.Join(category.All, ", "))
}

func requiredText(f validation.Field, code, name string) (string, error) {
	s, ok := f.Text()
	s = strings.TrimSpace(s)
	if !ok || s == "" {
		return "", apperr.Validation(code, name+" is required and cannot be empty")
	}
	return s, nil
}

func optionalText(f validation.Field, code, name string) (*string, error) {
	if !f.Present() {
		return nil, nil
	}
	s, err := requiredText(f, code, name)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
