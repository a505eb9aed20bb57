package product

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/user"
)

const testSecret = "test-secret"

var seedTime = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

func sampleProducts() []Product {
	return []Product{
		{ID: 1, SellerID: 1, Name: "Calculus Textbook", Description: "Early transcendentals, 8th edition", Category: "books", Price: 45, ImageURL: "/img/calc.jpg", Status: StatusAvailable, CreatedAt: seedTime},
		{ID: 2, SellerID: 1, Name: "Desk Lamp", Description: "LED lamp with USB port", Category: "furniture", Price: 15.5, ImageURL: "/img/lamp.jpg", Status: StatusSold, CreatedAt: seedTime},
		{ID: 3, SellerID: 2, Name: "Graphing Calculator", Description: "TI-84, barely used", Category: "electronics", Price: 60, ImageURL: "/img/ti84.jpg", Status: StatusAvailable, CreatedAt: seedTime},
	}
}

func makeAppWithProductHandler(repo Repository) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	NewHandler(NewService(repo, nil, 0)).RegisterRoutes(app, user.NewAuthMiddleware(testSecret, false))
	return app
}

type response struct {
	status int
	body   []byte
}

func do(t *testing.T, app *fiber.App, method, path, body string, headers ...string) response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	b, _ := io.ReadAll(res.Body)
	return response{status: res.StatusCode, body: b}
}

func (r response) errorCode(t *testing.T) string {
	t.Helper()
	var b apperr.Body
	if err := json.Unmarshal(r.body, &b); err != nil {
		t.Fatalf("decode error body %q: %v", r.body, err)
	}
	return b.Code
}

func (r response) products(t *testing.T) []Product {
	t.Helper()
	var out []Product
	if err := json.Unmarshal(r.body, &out); err != nil {
		t.Fatalf("decode product list %q: %v", r.body, err)
	}
	return out
}

func bearer(t *testing.T, userID int64) []string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return []string{"Authorization", "Bearer " + signed}
}

func TestCreateProduct_Success(t *testing.T) {
	app := makeAppWithProductHandler(NewInMemoryRepository(nil))
	res := do(t, app, "POST", "/products", `{"sellerId":"7","name":"  Chair ","description":" Oak ","category":"furniture","price":"25.00","imageUrl":" /img/chair.jpg "}`)
	if res.status != fiber.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", res.status, res.body)
	}

	var p Product
	if err := json.Unmarshal(res.body, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID == 0 || p.SellerID != 7 || p.Name != "Chair" || p.Description != "Oak" || p.ImageURL != "/img/chair.jpg" {
		t.Fatalf("unexpected product %+v", p)
	}
	if p.Price != 25 || p.Status != StatusAvailable || p.CreatedAt.IsZero() {
		t.Fatalf("unexpected defaults %+v", p)
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	app := makeAppWithProductHandler(NewInMemoryRepository(nil))
	valid := map[string]any{
		"sellerId": 1, "name": "n", "description": "d", "category": "books", "price": 10, "imageUrl": "u",
	}
	with := func(key string, v any) string {
		m := map[string]any{}
		for k, val := range valid {
			m[k] = val
		}
		if v == nil {
			delete(m, key)
		} else {
			m[key] = v
		}
		b, _ := json.Marshal(m)
		return string(b)
	}

	cases := []struct {
		name string
		body string
		code string
	}{
		{"missing seller", with("sellerId", nil), CodeSellerIDRequired},
		{"blank name", with("name", "   "), CodeNameRequired},
		{"missing description", with("description", nil), CodeDescriptionRequired},
		{"missing category", with("category", nil), CodeCategoryRequired},
		{"missing image", with("imageUrl", nil), CodeImageURLRequired},
		{"missing price", with("price", nil), CodePriceRequired},
		{"non numeric seller", with("sellerId", "abc"), CodeInvalidSellerID},
		{"fractional seller", with("sellerId", 1.5), CodeInvalidSellerID},
		{"zero price", with("price", 0), CodeInvalidPrice},
		{"negative price", with("price", -3), CodeInvalidPrice},
		{"non numeric price", with("price", "free"), CodeInvalidPrice},
		{"unknown category", with("category", "toys"), CodeInvalidCategory},
		{"category is case sensitive", with("category", "Books"), CodeInvalidCategory},
		{"padded category", with("category", " books "), CodeInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := do(t, app, "POST", "/products", tc.body)
			if res.status != fiber.StatusBadRequest {
				t.Fatalf("expected 400 got %d: %s", res.status, res.body)
			}
			if got := res.errorCode(t); got != tc.code {
				t.Fatalf("expected %s got %s", tc.code, got)
			}
		})
	}

	list := do(t, app, "GET", "/products", "")
	if n := len(list.products(t)); n != 0 {
		t.Fatalf("rejected creates must not store anything, found %d", n)
	}
}

func TestCreateProduct_UnknownSeller(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	repo.SellerExists = func(_ context.Context, id int64) bool { return id == 1 }
	app := makeAppWithProductHandler(repo)

	res := do(t, app, "POST", "/products", `{"sellerId":99,"name":"n","description":"d","category":"books","price":1,"imageUrl":"u"}`)
	if res.status != fiber.StatusBadRequest || res.errorCode(t) != CodeInvalidSellerID {
		t.Fatalf("expected 400 INVALID_SELLER_ID, got %d %s", res.status, res.body)
	}
}

// constraintRepo rejects every write the way a CHECK constraint would.
type constraintRepo struct {
	*InMemoryRepository
}

func (constraintRepo) Create(context.Context, Product) (Product, error) {
	return Product{}, ErrConstraint
}

func (constraintRepo) Update(context.Context, int64, Update) (Product, error) {
	return Product{}, ErrConstraint
}

func TestWrites_ConstraintViolationIs400(t *testing.T) {
	app := makeAppWithProductHandler(constraintRepo{NewInMemoryRepository(sampleProducts())})

	res := do(t, app, "POST", "/products", `{"sellerId":1,"name":"n","description":"d","category":"books","price":1,"imageUrl":"u"}`)
	if res.status != fiber.StatusBadRequest || res.errorCode(t) != CodeInvalidProduct {
		t.Fatalf("create: expected 400 INVALID_PRODUCT, got %d %s", res.status, res.body)
	}
	res = do(t, app, "PUT", "/products/1", `{"price":5}`)
	if res.status != fiber.StatusBadRequest || res.errorCode(t) != CodeInvalidProduct {
		t.Fatalf("update: expected 400 INVALID_PRODUCT, got %d %s", res.status, res.body)
	}
}

func TestCreateProduct_Principal(t *testing.T) {
	app := makeAppWithProductHandler(NewInMemoryRepository(nil))
	body := `{"name":"n","description":"d","category":"books","price":1,"imageUrl":"u"}`

	res := do(t, app, "POST", "/products", body, bearer(t, 4)...)
	if res.status != fiber.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", res.status, res.body)
	}
	var p Product
	_ = json.Unmarshal(res.body, &p)
	if p.SellerID != 4 {
		t.Fatalf("seller should come from the token, got %d", p.SellerID)
	}

	other := do(t, app, "POST", "/products", `{"sellerId":5,"name":"n","description":"d","category":"books","price":1,"imageUrl":"u"}`, bearer(t, 4)...)
	if other.status != fiber.StatusForbidden {
		t.Fatalf("expected 403 when listing for someone else, got %d", other.status)
	}
}

func TestListProducts_Filters(t *testing.T) {
	app := makeAppWithProductHandler(NewInMemoryRepository(sampleProducts()))

	cases := []struct {
		query string
		ids   []int64
	}{
		{"", []int64{1, 2, 3}},
		{"?category=books", []int64{1}},
		{"?status=available", []int64{1, 3}},
		{"?search=CALC", []int64{1, 3}},
		{"?search=usb", []int64{2}},
		{"?search=calc&category=electronics", []int64{3}},
		{"?status=sold&category=books", nil},
		{"?limit=1&offset=1", []int64{2}},
		{"?offset=10", nil},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			res := do(t, app, "GET", "/products"+tc.query, "")
			if res.status != fiber.StatusOK {
				t.Fatalf("expected 200 got %d: %s", res.status, res.body)
			}
			got := res.products(t)
			if len(got) != len(tc.ids) {
				t.Fatalf("expected %v got %+v", tc.ids, got)
			}
			for i, p := range got {
				if p.ID != tc.ids[i] {
					t.Fatalf("expected ids %v got %+v", tc.ids, got)
				}
			}
		})
	}
}

func TestListProducts_LimitClampedTo100(t *testing.T) {
	seed := make([]Product, 0, 150)
	for i := 1; i <= 150; i++ {
		seed = append(seed, Product{ID: int64(i), SellerID: 1, Name: fmt.Sprintf("item %d", i), Description: "d", Category: "books", Price: 1, ImageURL: "u", Status: StatusAvailable})
	}
	app := makeAppWithProductHandler(NewInMemoryRepository(seed))

	if n := len(do(t, app, "GET", "/products?limit=500", "").products(t)); n != 100 {
		t.Fatalf("expected 100 rows, got %d", n)
	}
	if n := len(do(t, app, "GET", "/products", "").products(t)); n != 20 {
		t.Fatalf("expected default page of 20, got %d", n)
	}
}

func TestListProducts_InvalidPagination(t *testing.T) {
	app := makeAppWithProductHandler(NewInMemoryRepository(nil))
	for _, q := range []string{"?limit=abc", "?limit=0", "?limit=-5", "?offset=-1", "?offset=1.5"} {
		res := do(t, app, "GET", "/products"+q, "")
		if res.status != fiber.StatusBadRequest || res.errorCode(t) != CodeInvalidPagination {
			t.Fatalf("%s: expected 400 INVALID_PAGINATION, got %d %s", q, res.status, res.body)
		}
	}
}

func TestGetProduct(t *testing.T) {
	app := makeAppWithProductHandler(NewInMemoryRepository(sampleProducts()))

	res := do(t, app, "GET", "/products/3", "")
	if res.status != fiber.StatusOK || !strings.Contains(string(res.body), "Graphing Calculator") {
		t.Fatalf("unexpected response %d %s", res.status, res.body)
	}

	missing := do(t, app, "GET", "/products/999", "")
	if missing.status != fiber.StatusNotFound || missing.errorCode(t) != apperr.CodeNotFound {
		t.Fatalf("expected 404 NOT_FOUND, got %d %s", missing.status, missing.body)
	}

	for _, id := range []string{"abc", "0", "-1"} {
		bad := do(t, app, "GET", "/products/"+id, "")
		if bad.status != fiber.StatusBadRequest || bad.errorCode(t) != CodeInvalidID {
			t.Fatalf("%s: expected 400 INVALID_ID, got %d %s", id, bad.status, bad.body)
		}
	}
}

func TestMyProducts(t *testing.T) {
	app := makeAppWithProductHandler(NewInMemoryRepository(sampleProducts()))

	res := do(t, app, "GET", "/products/my-products?sellerId=1", "")
	if res.status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.status, res.body)
	}
	got := res.products(t)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("expected both of seller 1's products regardless of status, got %+v", got)
	}

	for _, q := range []string{"", "?sellerId=abc"} {
		bad := do(t, app, "GET", "/products/my-products"+q, "")
		if bad.status != fiber.StatusBadRequest || bad.errorCode(t) != CodeInvalidSellerID {
			t.Fatalf("%q: expected 400 INVALID_SELLER_ID, got %d %s", q, bad.status, bad.body)
		}
	}

	withToken := do(t, app, "GET", "/products/my-products", "", bearer(t, 2)...)
	if got := withToken.products(t); len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected seller from token, got %+v", got)
	}
}

func TestUpdateProduct_PartialLeavesOtherFields(t *testing.T) {
	repo := NewInMemoryRepository(sampleProducts())
	app := makeAppWithProductHandler(repo)

	res := do(t, app, "PUT", "/products/1", `{"price":39.99}`)
	if res.status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.status, res.body)
	}

	got, _ := repo.GetByID(context.Background(), 1)
	want := sampleProducts()[0]
	want.Price = 39.99
	if got != want {
		t.Fatalf("expected only price to change:\nwant %+v\ngot  %+v", want, got)
	}

	res = do(t, app, "PUT", "/products/1", `{"name":"  Calculus ","status":"sold","description":null}`)
	if res.status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.status, res.body)
	}
	got, _ = repo.GetByID(context.Background(), 1)
	if got.Name != "Calculus" || got.Status != StatusSold || got.Description != want.Description {
		t.Fatalf("unexpected product after update %+v", got)
	}
}

func TestUpdateProduct_Validation(t *testing.T) {
	repo := NewInMemoryRepository(sampleProducts())
	app := makeAppWithProductHandler(repo)

	cases := []struct {
		body string
		code string
	}{
		{`{"price":0}`, CodeInvalidPrice},
		{`{"price":-1}`, CodeInvalidPrice},
		{`{"price":"12"}`, CodeInvalidPrice},
		{`{"category":"toys"}`, CodeInvalidCategory},
		{`{"category":" books "}`, CodeInvalidCategory},
		{`{"status":"reserved"}`, CodeInvalidStatus},
		{`{"name":"   "}`, CodeNameRequired},
		{`{}`, CodeNoUpdateFields},
		{`{"unknown":"x"}`, CodeNoUpdateFields},
	}
	for _, tc := range cases {
		res := do(t, app, "PUT", "/products/1", tc.body)
		if res.status != fiber.StatusBadRequest || res.errorCode(t) != tc.code {
			t.Fatalf("%s: expected 400 %s, got %d %s", tc.body, tc.code, res.status, res.body)
		}
	}

	got, _ := repo.GetByID(context.Background(), 1)
	if got != sampleProducts()[0] {
		t.Fatalf("rejected updates must not modify the product: %+v", got)
	}

	missing := do(t, app, "PUT", "/products/999", `{"price":5}`)
	if missing.status != fiber.StatusNotFound || missing.errorCode(t) != apperr.CodeNotFound {
		t.Fatalf("expected 404 NOT_FOUND, got %d %s", missing.status, missing.body)
	}
}

func TestUpdateProduct_OnlySellerWithToken(t *testing.T) {
	app := makeAppWithProductHandler(NewInMemoryRepository(sampleProducts()))

	res := do(t, app, "PUT", "/products/1", `{"price":5}`, bearer(t, 2)...)
	if res.status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for another user, got %d", res.status)
	}
	res = do(t, app, "PUT", "/products/1", `{"price":5}`, bearer(t, 1)...)
	if res.status != fiber.StatusOK {
		t.Fatalf("expected 200 for the seller, got %d", res.status)
	}
}

func TestDeleteProduct_Twice(t *testing.T) {
	app := makeAppWithProductHandler(NewInMemoryRepository(sampleProducts()))

	first := do(t, app, "DELETE", "/products/2", "")
	if first.status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d: %s", first.status, first.body)
	}
	var body struct {
		Message string `json:"message"`
		ID      int64  `json:"id"`
	}
	if err := json.Unmarshal(first.body, &body); err != nil || body.ID != 2 || body.Message == "" {
		t.Fatalf("unexpected delete body %s", first.body)
	}

	second := do(t, app, "DELETE", "/products/2", "")
	if second.status != fiber.StatusNotFound || second.errorCode(t) != apperr.CodeNotFound {
		t.Fatalf("expected 404 NOT_FOUND, got %d %s", second.status, second.body)
	}
}

func TestDeleteProduct_WithOrders(t *testing.T) {
	repo := NewInMemoryRepository(sampleProducts())
	if _, err := repo.Reserve(context.Background(), 1, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	app := makeAppWithProductHandler(repo)

	res := do(t, app, "DELETE", "/products/1", "")
	if res.status != fiber.StatusConflict || res.errorCode(t) != CodeHasOrders {
		t.Fatalf("expected 409 PRODUCT_HAS_ORDERS, got %d %s", res.status, res.body)
	}
}
