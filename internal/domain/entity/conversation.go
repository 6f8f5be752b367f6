package entity

import "time"

// ConversationSummary is a derived view, not a stored row. Each summary
// stands for the set of messages a viewer exchanged with one counterparty
// about one product, previewed by the most recent message.
type ConversationSummary struct {
	CounterpartyID   string    `json:"counterparty_id"`
	CounterpartyName string    `json:"counterparty_name,omitempty"`
	ProductID        string    `json:"product_id"`
	ProductTitle     string    `json:"product_title,omitempty"`
	ProductImage     string    `json:"product_image,omitempty"`
	LastMessageID    string    `json:"last_message_id"`
	LastMessage      string    `json:"last_message"`
	LastMessageAt    time.Time `json:"last_message_at"`
	LastSenderID     string    `json:"last_sender_id"`
	UnreadCount      int       `json:"unread_count"`
}
