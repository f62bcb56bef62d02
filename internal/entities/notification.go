package entities

type NotificationTopic string

const (
	TopicPayment       NotificationTopic = "payment"
	TopicMerchantOrder NotificationTopic = "merchant_order"
)

// Notification is a normalized gateway webhook, independent of how it was delivered.
type Notification struct {
	Topic      NotificationTopic
	ResourceID string
	Action     string
	RequestID  string
}
