package repository

import (
	"context"
	"log"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"zabibufresh/internal/domain/entity"
	"zabibufresh/internal/domain/repository"
	"zabibufresh/pkg/errors"
)

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.client.Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.SendFailed("Failed to store message", err)
	}

	return nil
}

// ListByUser runs two equality queries (as sender, as receiver) and merges
// them, since Firestore cannot OR across different fields in one query.
func (r *firestoreMessageRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Message, error) {
	sent, err := r.collect(ctx, r.client.Collection("messages").Where("senderId", "==", userID))
	if err != nil {
		log.Printf("Firestore error while fetching sent messages for user %s: %v", userID, err)
		return nil, errors.RemoteFetchFailed("Failed to fetch sent messages", err)
	}

	received, err := r.collect(ctx, r.client.Collection("messages").Where("receiverId", "==", userID))
	if err != nil {
		log.Printf("Firestore error while fetching received messages for user %s: %v", userID, err)
		return nil, errors.RemoteFetchFailed("Failed to fetch received messages", err)
	}

	return append(sent, received...), nil
}

func (r *firestoreMessageRepository) ListThread(ctx context.Context, userA, userB, productID string) ([]*entity.Message, error) {
	outgoing, err := r.collect(ctx, r.client.Collection("messages").
		Where("senderId", "==", userA).
		Where("receiverId", "==", userB).
		Where("productId", "==", productID))
	if err != nil {
		log.Printf("Firestore error while fetching thread %s->%s product %s: %v", userA, userB, productID, err)
		return nil, errors.RemoteFetchFailed("Failed to fetch thread messages", err)
	}

	incoming, err := r.collect(ctx, r.client.Collection("messages").
		Where("senderId", "==", userB).
		Where("receiverId", "==", userA).
		Where("productId", "==", productID))
	if err != nil {
		log.Printf("Firestore error while fetching thread %s->%s product %s: %v", userB, userA, productID, err)
		return nil, errors.RemoteFetchFailed("Failed to fetch thread messages", err)
	}

	messages := append(outgoing, incoming...)

	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	return messages, nil
}

func (r *firestoreMessageRepository) collect(ctx context.Context, query firestore.Query) ([]*entity.Message, error) {
	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, err
		}
		messages = append(messages, &message)
	}

	return messages, nil
}
