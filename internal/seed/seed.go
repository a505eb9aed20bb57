package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/wichananm65/campus-market-backend/internal/category"
	"github.com/wichananm65/campus-market-backend/internal/order"
	"github.com/wichananm65/campus-market-backend/internal/product"
	"github.com/wichananm65/campus-market-backend/internal/user"
)

// Password is shared by every sample account.
const Password = "password123"

var sampleUsers = []user.RegisterInput{
	{Email: "alex.johnson@mit.edu", Name: "Alex Johnson", College: "MIT", Phone: "617-555-0101"},
	{Email: "sarah.chen@stanford.edu", Name: "Sarah Chen", College: "Stanford", Phone: "650-555-0102"},
	{Email: "michael.brown@harvard.edu", Name: "Michael Brown", College: "Harvard", Phone: "617-555-0103"},
	{Email: "emily.davis@berkeley.edu", Name: "Emily Davis", College: "Berkeley", Phone: "510-555-0104"},
	{Email: "james.wilson@nyu.edu", Name: "James Wilson", College: "NYU", Phone: "212-555-0105"},
}

// sampleProducts are keyed by the index of the selling user in sampleUsers.
var sampleProducts = []struct {
	seller  int
	product product.Product
}{
	{0, product.Product{Name: "Introduction to Algorithms", Description: "CLRS 3rd edition, light highlighting", Category: category.Books, Price: 45, ImageURL: "/images/clrs.jpg"}},
	{0, product.Product{Name: "TI-84 Plus Calculator", Description: "Graphing calculator, works perfectly", Category: category.Electronics, Price: 60, ImageURL: "/images/ti84.jpg"}},
	{1, product.Product{Name: "Desk Lamp", Description: "LED desk lamp with USB charging port", Category: category.Furniture, Price: 18.5, ImageURL: "/images/lamp.jpg"}},
	{1, product.Product{Name: "Organic Chemistry", Description: "Klein, 4th edition with solutions manual", Category: category.Books, Price: 55, ImageURL: "/images/ochem.jpg"}},
	{2, product.Product{Name: "Mini Fridge", Description: "3.2 cu ft, fits under a dorm desk", Category: category.Furniture, Price: 80, ImageURL: "/images/fridge.jpg"}},
	{2, product.Product{Name: "Harvard Hoodie", Description: "Crimson, size M, worn twice", Category: category.Clothing, Price: 25, ImageURL: "/images/hoodie.jpg"}},
	{3, product.Product{Name: "Notebook Bundle", Description: "Five college ruled notebooks, unused", Category: category.Stationery, Price: 8, ImageURL: "/images/notebooks.jpg"}},
	{4, product.Product{Name: "Noise Cancelling Headphones", Description: "Over-ear, includes case", Category: category.Electronics, Price: 120, ImageURL: "/images/headphones.jpg"}},
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Products int
	Orders   int
}

// Loader inserts the sample fixtures through the regular services, so the
// usual validation and password hashing apply.
type Loader struct {
	users    *user.Service
	products *product.Service
	orders   *order.Service
}

func NewLoader(users *user.Service, products *product.Service, orders *order.Service) *Loader {
	return &Loader{users: users, products: products, orders: orders}
}

// Run is safe to repeat: existing users are reused, sellers that already have
// listings get no new ones, and the sample order is skipped once its product
// has been sold.
func (l *Loader) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	ids := make([]int64, len(sampleUsers))
	for i, in := range sampleUsers {
		in.Password = Password
		u, err := l.users.Register(ctx, in)
		switch {
		case err == nil:
			sum.Users++
		case errors.Is(err, user.ErrEmailExists):
			if u, err = l.users.GetByEmail(ctx, in.Email); err != nil {
				return sum, fmt.Errorf("seed user %s: %w", in.Email, err)
			}
		default:
			return sum, fmt.Errorf("seed user %s: %w", in.Email, err)
		}
		ids[i] = u.ID
	}

	// the sample order buys the first listing of the first user
	var first product.Product
	listed := make([]bool, len(sampleUsers))
	for i, id := range ids {
		existing, err := l.products.ListBySeller(ctx, id)
		if err != nil {
			return sum, fmt.Errorf("seed products for seller %d: %w", id, err)
		}
		listed[i] = len(existing) > 0
		if i == 0 && listed[i] {
			first = existing[0]
		}
	}

	for _, sp := range sampleProducts {
		if listed[sp.seller] {
			continue
		}
		p := sp.product
		p.SellerID = ids[sp.seller]
		created, err := l.products.Create(ctx, p)
		if err != nil {
			return sum, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		sum.Products++
		if sp.seller == 0 && first.ID == 0 {
			first = created
		}
	}

	if first.ID != 0 {
		_, err := l.orders.Purchase(ctx, first.ID, ids[3], first.SellerID)
		switch {
		case err == nil:
			sum.Orders++
		case errors.Is(err, order.ErrProductUnavailable):
		default:
			return sum, fmt.Errorf("seed order: %w", err)
		}
	}

	log.Infow("sample data loaded", "users", sum.Users, "products", sum.Products, "orders", sum.Orders)
	return sum, nil
}
