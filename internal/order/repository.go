package order

import (
	"context"
	"errors"
	"sync"

	"github.com/wichananm65/campus-market-backend/internal/product"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrSellerMismatch     = errors.New("seller does not own the product")
	ErrProductUnavailable = errors.New("product is no longer available")
	ErrBuyerNotFound      = errors.New("buyer does not exist")
)

// Repository defines persistence operations for orders.
type Repository interface {
	// Purchase stores a pending order and marks the product sold. Either both
	// happen or neither does.
	Purchase(ctx context.Context, ord Order) (Order, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]Order, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]Order, error)
}

// ProductReserver flips an available product to sold for a new order.
// *product.InMemoryRepository implements it.
type ProductReserver interface {
	Reserve(ctx context.Context, id, sellerID int64) (product.Product, error)
}

// InMemoryRepository keeps orders in a slice and reserves products through
// the in-memory product store.
type InMemoryRepository struct {
	mu       sync.RWMutex
	orders   []Order
	nextID   int64
	products ProductReserver

	// BuyerExists, when set, plays the part of the users foreign key.
	BuyerExists func(ctx context.Context, id int64) bool
}

func NewInMemoryRepository(products ProductReserver, seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{
		orders:   make([]Order, 0, len(seed)),
		nextID:   1,
		products: products,
	}

	var maxID int64
	for _, o := range seed {
		r.orders = append(r.orders, o)
		if o.ID > maxID {
			maxID = o.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) Purchase(ctx context.Context, ord Order) (Order, error) {
	if r.BuyerExists != nil && !r.BuyerExists(ctx, ord.BuyerID) {
		return Order{}, ErrBuyerNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.products.Reserve(ctx, ord.ProductID, ord.SellerID); err != nil {
		switch {
		case errors.Is(err, product.ErrNotFound):
			return Order{}, ErrProductNotFound
		case errors.Is(err, product.ErrSellerMismatch):
			return Order{}, ErrSellerMismatch
		case errors.Is(err, product.ErrUnavailable):
			return Order{}, ErrProductUnavailable
		}
		return Order{}, err
	}

	ord.ID = r.nextID
	r.nextID++
	r.orders = append(r.orders, ord)
	return ord, nil
}

func (r *InMemoryRepository) ListByBuyer(_ context.Context, buyerID int64) ([]Order, error) {
	return r.filter(func(o Order) bool { return o.BuyerID == buyerID }), nil
}

func (r *InMemoryRepository) ListBySeller(_ context.Context, sellerID int64) ([]Order, error) {
	return r.filter(func(o Order) bool { return o.SellerID == sellerID }), nil
}

func (r *InMemoryRepository) filter(keep func(Order) bool) []Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
