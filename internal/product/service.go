package product

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/wichananm65/campus-market-backend/internal/cache"
)

type Service struct {
	repo     Repository
	cache    cache.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService wires the repository and an optional product cache (nil disables it).
func NewService(repo Repository, c cache.Cache, cacheTTL time.Duration) *Service {
	return &Service{repo: repo, cache: c, cacheTTL: cacheTTL, now: time.Now}
}

func cacheKey(id int64) string {
	return "product:" + strconv.FormatInt(id, 10)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) ListBySeller(ctx context.Context, sellerID int64) ([]Product, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

// GetByID reads through the cache. Cache errors are logged and ignored.
func (s *Service) GetByID(ctx context.Context, id int64) (Product, error) {
	if s.cache != nil {
		var p Product
		err := s.cache.GetJSON(ctx, cacheKey(id), &p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warnw("product cache read failed", "productId", id, "error", err)
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey(id), p, s.cacheTTL); err != nil {
			log.Warnw("product cache write failed", "productId", id, "error", err)
		}
	}
	return p, nil
}

// Create stores a new listing. Listings always start available.
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	p.ID = 0
	p.Status = StatusAvailable
	p.CreatedAt = s.now().UTC()
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int64, u Update) (Product, error) {
	p, err := s.repo.Update(ctx, id, u)
	if err != nil {
		return Product{}, err
	}
	s.Invalidate(ctx, id)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Invalidate(ctx, id)
	return nil
}

// Invalidate drops the cached copy of a product after it changed.
func (s *Service) Invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		log.Warnw("product cache invalidation failed", "productId", id, "error", err)
	}
}
