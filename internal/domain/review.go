package domain

import (
	"time"
)

// Rating bounds for a review.
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a product review submitted by a user. At most one review
// may exist per (product, user) pair; the store enforces this with a unique
// constraint so that concurrent duplicate inserts cannot both succeed.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValidRating checks whether the rating falls in the inclusive [1,5] range.
func IsValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// MeanRating computes the arithmetic mean of the given reviews' ratings.
// Returns 0 for an empty slice.
func MeanRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum int
	for _, rv := range reviews {
		sum += rv.Rating
	}
	return float64(sum) / float64(len(reviews))
}
