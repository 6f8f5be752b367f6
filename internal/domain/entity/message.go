package entity

import "time"

// Message is immutable once created. It is never updated or deleted.
type Message struct {
	ID         string    `json:"id" firestore:"id"`
	SenderID   string    `json:"sender_id" firestore:"senderId"`
	ReceiverID string    `json:"receiver_id" firestore:"receiverId"`
	ProductID  string    `json:"product_id" firestore:"productId"`
	Content    string    `json:"content" firestore:"content"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
}

// CounterpartyOf returns the other participant relative to the viewer.
func (m *Message) CounterpartyOf(viewerID string) string {
	if m.SenderID == viewerID {
		return m.ReceiverID
	}
	return m.SenderID
}
