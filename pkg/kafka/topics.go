package kafka

import "fmt"

// TopicPrefix is the namespace shared by every ShopEZ topic.
const TopicPrefix = "shopez"

// Topic builds a fully-qualified topic name from a domain and an action,
// e.g. Topic("order", "created") -> "shopez.order.created".
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
