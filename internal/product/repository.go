package product

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrHasOrders      = errors.New("product is referenced by orders")
	ErrSellerNotFound = errors.New("seller does not exist")
	ErrSellerMismatch = errors.New("product belongs to another seller")
	ErrUnavailable    = errors.New("product is not available")
	ErrConstraint     = errors.New("product violates a table constraint")
)

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]Product, error)
	GetByID(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, id int64, u Update) (Product, error)
	// Delete returns ErrHasOrders while orders still reference the product.
	Delete(ctx context.Context, id int64) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// running without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
	// orders counts the orders placed against each product.
	orders map[int64]int
	nextID int64

	// SellerExists, when set, plays the part of the users foreign key.
	SellerExists func(ctx context.Context, id int64) bool
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Product, 0, len(seed)),
		orders:  map[int64]int{},
		nextID:  1,
	}

	var maxID int64
	for _, p := range seed {
		r.storage = append(r.storage, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) List(_ context.Context, filter ListFilter) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0)
	skipped := 0
	for _, p := range r.storage {
		if !filter.matches(p) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *InMemoryRepository) ListBySeller(_ context.Context, sellerID int64) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range r.storage {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Create(ctx context.Context, p Product) (Product, error) {
	if r.SellerExists != nil && !r.SellerExists(ctx, p.SellerID) {
		return Product{}, ErrSellerNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	r.storage = append(r.storage, p)
	return p, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int64, u Update) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			u.apply(&r.storage[i])
			return r.storage[i], nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			if r.orders[id] > 0 {
				return ErrHasOrders
			}
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Reserve marks an available product as sold on behalf of a new order. The
// checks and the status change happen under one lock, so two buyers cannot
// both reserve the same product.
func (r *InMemoryRepository) Reserve(_ context.Context, id, sellerID int64) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		p := &r.storage[i]
		if p.ID != id {
			continue
		}
		if p.SellerID != sellerID {
			return Product{}, ErrSellerMismatch
		}
		if p.Status != StatusAvailable {
			return Product{}, ErrUnavailable
		}
		p.Status = StatusSold
		r.orders[id]++
		return *p, nil
	}
	return Product{}, ErrNotFound
}
