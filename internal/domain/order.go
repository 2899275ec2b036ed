package domain

import (
	"strings"
	"time"
)

// Order status constants. "paid" is reachable as a creation-time status when
// an order is created directly from a verified payment.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusPaid       = "paid"
)

// Payment status constants. Independent of the order status: "paid" is set
// only by the post-payment creation path, never inferred from Status.
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// Order represents a customer order. UserID is optional: orders may be placed
// without an account. Line items and the shipping info are snapshots frozen
// at creation time and are never refreshed from the live product or user.
type Order struct {
	ID             string        `json:"id"`
	UserID         *string       `json:"user_id,omitempty"`
	Status         string        `json:"status"`
	PaymentStatus  string        `json:"payment_status"`
	Items          []OrderItem   `json:"items"`
	ShippingInfo   *ShippingInfo `json:"shipping_info,omitempty"`
	ShippingMethod string        `json:"shipping_method,omitempty"`
	Total          int64         `json:"total"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// OrderItem is a single order line item. Name, Image, and Price are copied
// from the product at order time.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// LineTotal returns price * quantity for this item.
func (i OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// ShippingInfo is the address snapshot embedded in an order.
type ShippingInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
}

// FullName derives a display name by joining the trimmed first and last
// names, dropping whichever is empty.
func (s ShippingInfo) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
}

// CompleteAddress derives a single-line address by joining the non-empty
// segments of [address, city, "state zip", country] with ", ".
func (s ShippingInfo) CompleteAddress() string {
	segments := []string{
		strings.TrimSpace(s.Address),
		strings.TrimSpace(s.City),
		strings.TrimSpace(strings.TrimSpace(s.State) + " " + strings.TrimSpace(s.Zip)),
		strings.TrimSpace(s.Country),
	}
	nonEmpty := segments[:0]
	for _, seg := range segments {
		if seg != "" {
			nonEmpty = append(nonEmpty, seg)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusPaid,
	}
}

// IsValidStatus checks if a status string is a member of the enum. Any
// member is an acceptable target: status updates are not validated against
// the current state.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
