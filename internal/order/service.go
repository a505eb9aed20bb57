package order

import (
	"context"
	"time"
)

// ProductInvalidator drops cached product state after a purchase.
type ProductInvalidator interface {
	Invalidate(ctx context.Context, id int64)
}

// Service provides business logic for orders.
type Service struct {
	repo     Repository
	products ProductInvalidator
	now      func() time.Time
}

func NewService(r Repository, products ProductInvalidator) *Service {
	return &Service{repo: r, products: products, now: time.Now}
}

// Purchase places a pending order for productID. Buyer and seller must
// already have been validated as distinct positive ids.
func (s *Service) Purchase(ctx context.Context, productID, buyerID, sellerID int64) (Order, error) {
	ord, err := s.repo.Purchase(ctx, Order{
		ProductID: productID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		Status:    StatusPending,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return Order{}, err
	}

	if s.products != nil {
		s.products.Invalidate(ctx, productID)
	}
	return ord, nil
}

func (s *Service) ListByBuyer(ctx context.Context, buyerID int64) ([]Order, error) {
	return s.repo.ListByBuyer(ctx, buyerID)
}

func (s *Service) ListBySeller(ctx context.Context, sellerID int64) ([]Order, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}
