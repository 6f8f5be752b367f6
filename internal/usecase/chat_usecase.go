package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"zabibufresh/internal/domain/entity"
	"zabibufresh/internal/domain/repository"
	"zabibufresh/internal/infrastructure/ratelimit"
	ws "zabibufresh/internal/infrastructure/websocket"
	"zabibufresh/pkg/errors"
)

// Maximum message length in code points.
const MaxMessageLength = 500

type ChatUseCase struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	wsManager *ws.Manager,
) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		wsManager:   wsManager,
		rateLimiter: rateLimiter,
	}
}

type SendMessageInput struct {
	ReceiverID string
	ProductID  string
	Content    string
}

type MessageResponse struct {
	*entity.Message
	Sender *entity.User `json:"sender,omitempty"`
}

// ValidateContent applies the client-side checks that must run before any
// remote call: non-empty after trimming, at most MaxMessageLength code
// points.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.ValidationFailed("Message content must not be empty", nil)
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return errors.ValidationFailed("Message content is too long", nil)
	}
	return nil
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*MessageResponse, error) {
	if err := ValidateContent(input.Content); err != nil {
		return nil, err
	}

	if senderID == input.ReceiverID {
		return nil, errors.ValidationFailed("You cannot message yourself", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message")
	if !allowed {
		log.Printf("SendMessage Rate Limited: User %s must wait %v", senderID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	sender, err := uc.userRepo.GetByID(ctx, senderID)
	if err != nil {
		log.Printf("SendMessage Error: Sender %s not found: %v", senderID, err)
		return nil, err
	}

	receiver, err := uc.userRepo.GetByID(ctx, input.ReceiverID)
	if err != nil {
		log.Printf("SendMessage Error: Receiver %s not found: %v", input.ReceiverID, err)
		return nil, err
	}

	if _, err := uc.productRepo.GetByID(ctx, input.ProductID); err != nil {
		log.Printf("SendMessage Error: Product %s not found: %v", input.ProductID, err)
		return nil, err
	}

	message := &entity.Message{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		ProductID:  input.ProductID,
		Content:    input.Content,
		CreatedAt:  time.Now(),
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		log.Printf("SendMessage Error: Failed to store message from %s to %s: %v", senderID, receiver.ID, err)
		return nil, err
	}

	// Push the committed message onto the thread's change feed and notify
	// the receiver's connection for conversation list updates.
	uc.wsManager.PublishMessage(message)

	notification := map[string]interface{}{
		"type":        "new_message",
		"message":     message,
		"sender_name": sender.FullName,
	}
	notificationJSON, _ := json.Marshal(notification)
	uc.wsManager.SendToUser(receiver.ID, notificationJSON)

	return &MessageResponse{
		Message: message,
		Sender:  sender,
	}, nil
}

// ListConversations aggregates the viewer's messages into conversation
// summaries and enriches them with counterparty and product details.
func (uc *ChatUseCase) ListConversations(ctx context.Context, viewerID string) ([]*entity.ConversationSummary, error) {
	if viewerID == "" {
		return nil, errors.Unauthenticated("Authentication required", nil)
	}

	messages, err := uc.messageRepo.ListByUser(ctx, viewerID)
	if err != nil {
		log.Printf("ListConversations Error: Failed to fetch messages for user %s: %v", viewerID, err)
		return nil, err
	}

	summaries := AggregateConversations(viewerID, messages)

	for _, summary := range summaries {
		counterparty, err := uc.userRepo.GetByID(ctx, summary.CounterpartyID)
		if err == nil {
			summary.CounterpartyName = counterparty.FullName
		} else {
			log.Printf("ListConversations Warning: Counterparty %s not found: %v", summary.CounterpartyID, err)
		}

		product, err := uc.productRepo.GetByID(ctx, summary.ProductID)
		if err == nil {
			summary.ProductTitle = product.Title
			summary.ProductImage = product.ImageURL
		} else {
			log.Printf("ListConversations Warning: Product %s not found for conversation: %v", summary.ProductID, err)
		}
	}

	return summaries, nil
}

// GetThreadMessages loads the full chronological history of one thread.
// The product must still exist; loading a thread for a deleted product
// reports not-found rather than silently returning stale history.
func (uc *ChatUseCase) GetThreadMessages(ctx context.Context, viewerID, counterpartyID, productID string) ([]*MessageResponse, error) {
	if viewerID == "" {
		return nil, errors.Unauthenticated("Authentication required", nil)
	}

	if _, err := uc.productRepo.GetByID(ctx, productID); err != nil {
		log.Printf("GetThreadMessages Error: Product %s not found: %v", productID, err)
		return nil, err
	}

	messages, err := uc.messageRepo.ListThread(ctx, viewerID, counterpartyID, productID)
	if err != nil {
		log.Printf("GetThreadMessages Error: Failed to fetch thread for user %s: %v", viewerID, err)
		return nil, err
	}

	senders := make(map[string]*entity.User)
	responses := make([]*MessageResponse, 0, len(messages))

	for _, message := range messages {
		sender, ok := senders[message.SenderID]
		if !ok {
			sender, err = uc.userRepo.GetByID(ctx, message.SenderID)
			if err != nil {
				log.Printf("GetThreadMessages Warning: Sender %s not found for message %s: %v", message.SenderID, message.ID, err)
				sender = nil
			}
			senders[message.SenderID] = sender
		}

		responses = append(responses, &MessageResponse{
			Message: message,
			Sender:  sender,
		})
	}

	return responses, nil
}

// OpenSession starts a live chat session for one thread. The caller owns
// the session and must Close it on every exit path.
func (uc *ChatUseCase) OpenSession(viewerID, counterpartyID, productID string) *ChatSession {
	return newChatSession(uc, viewerID, counterpartyID, productID)
}
