package order

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Order records a purchase and maps to the `orders` table.
type Order struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	BuyerID   int64     `json:"buyerId"`
	SellerID  int64     `json:"sellerId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
