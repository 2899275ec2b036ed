package domain

import (
	"time"
)

// Product represents a product in the catalog. Prices are stored in minor
// currency units (cents).
//
// Ratings and Reviews are derived fields: Ratings is the arithmetic mean of
// the ratings of all current reviews (0 when there are none) and Reviews is
// the ordered set of review IDs referencing this product. They are written
// exclusively by the rating aggregator; no other code path may touch them.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	SellerID    string    `json:"seller_id"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	Discount    int       `json:"discount"`
	Sold        int       `json:"sold"`
	Images      []string  `json:"images"`
	Ratings     float64   `json:"ratings"`
	Reviews     []string  `json:"reviews"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
