package product

import (
	"strings"
	"time"
)

const (
	StatusAvailable = "available"
	StatusSold      = "sold"
)

// Statuses lists the values accepted for Product.Status.
var Statuses = []string{StatusAvailable, StatusSold}

// Product maps to the `products` table.
type Product struct {
	ID          int64     `json:"id"`
	SellerID    int64     `json:"sellerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListFilter narrows a catalog query. Empty strings mean "no filter".
type ListFilter struct {
	Category string
	Search   string
	Status   string
	Limit    int
	Offset   int
}

// Update is a partial update; nil fields are left untouched.
type Update struct {
	Name        *string
	Description *string
	Category    *string
	Price       *float64
	ImageURL    *string
	Status      *string
}

func (u Update) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Category == nil &&
		u.Price == nil && u.ImageURL == nil && u.Status == nil
}

func (u Update) apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
}

func (f ListFilter) matches(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}
