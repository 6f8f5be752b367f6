package repository

import (
	"context"

	"zabibufresh/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error

	// ListByUser returns every message where the user is either the sender
	// or the receiver, in no particular order.
	ListByUser(ctx context.Context, userID string) ([]*entity.Message, error)

	// ListThread returns the full history between two users about a single
	// product, ordered chronologically (oldest first).
	ListThread(ctx context.Context, userA, userB, productID string) ([]*entity.Message, error)
}
