package domain

import (
	"strings"
	"time"
)

// User roles.
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
)

// User represents a registered account. Users are referenced by reviews
// (author) and orders (optional purchaser) but never own them.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName returns the trimmed "first last" name used to annotate reviews.
func (u User) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// CustomerSummary is the partial user projection joined onto orders.
type CustomerSummary struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary builds the order-facing projection of this user.
func (u User) Summary() CustomerSummary {
	return CustomerSummary{
		Name:      u.DisplayName(),
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}
