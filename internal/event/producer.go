package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/domain"
	pkgkafka "github.com/Harshwardhan-rawani/ShopEZ/pkg/kafka"
)

// Kafka topics for the storefront's domain events.
var (
	TopicOrderCreated       = pkgkafka.Topic("order", "created")
	TopicOrderStatusChanged = pkgkafka.Topic("order", "status_changed")
	TopicReviewCreated      = pkgkafka.Topic("review", "created")
	TopicReviewUpdated      = pkgkafka.Topic("review", "updated")
	TopicReviewDeleted      = pkgkafka.Topic("review", "deleted")
)

// Aggregate type constants.
const (
	AggregateTypeOrder  = "order"
	AggregateTypeReview = "review"
)

// Source identifier for events originating from this service.
const Source = "shopez-api"

// OrderCreatedData is the payload for an order.created event (full snapshot).
type OrderCreatedData struct {
	ID            string             `json:"id"`
	UserID        *string            `json:"user_id,omitempty"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	Items         []domain.OrderItem `json:"items"`
	Total         int64              `json:"total"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// ReviewEventData is the payload shared by all review events.
type ReviewEventData struct {
	ReviewID  string `json:"review_id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating,omitempty"`
}

// Producer publishes domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		ID:            order.ID,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Items:         order.Items,
		Total:         order.Total,
	}

	return p.publish(ctx, TopicOrderCreated, order.ID, AggregateTypeOrder, data)
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus string) error {
	data := OrderStatusChangedData{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}

	return p.publish(ctx, TopicOrderStatusChanged, orderID, AggregateTypeOrder, data)
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewCreated, review.ID, AggregateTypeReview, reviewData(review))
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewUpdated, review.ID, AggregateTypeReview, reviewData(review))
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, review *domain.Review) error {
	data := reviewData(review)
	data.Rating = 0
	return p.publish(ctx, TopicReviewDeleted, review.ID, AggregateTypeReview, data)
}

func reviewData(review *domain.Review) ReviewEventData {
	return ReviewEventData{
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
