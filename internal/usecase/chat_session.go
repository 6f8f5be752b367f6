package usecase

import (
	"context"
	"log"
	"sync"

	"zabibufresh/internal/domain/entity"
	ws "zabibufresh/internal/infrastructure/websocket"
	"zabibufresh/pkg/errors"
)

type SessionState int

const (
	SessionClosed SessionState = iota
	SessionLoading
	SessionReady
	SessionSending
)

// ChatSession is a live view over one (viewer, counterparty, product)
// thread. It keeps the local message view chronologically ordered: sends
// are appended optimistically without waiting for the feed echo, and feed
// events are appended at the tail in commit order, deduplicated against
// optimistic appends.
//
// Lifecycle: Closed -> Loading -> Ready <-> Sending, and back to Closed
// via Close, which always releases the feed subscription.
type ChatSession struct {
	uc             *ChatUseCase
	viewerID       string
	counterpartyID string
	productID      string

	mu        sync.Mutex
	state     SessionState
	messages  []*entity.Message
	seen      map[string]bool
	sub       *ws.Subscription
	onMessage func(*entity.Message)
}

func newChatSession(uc *ChatUseCase, viewerID, counterpartyID, productID string) *ChatSession {
	return &ChatSession{
		uc:             uc,
		viewerID:       viewerID,
		counterpartyID: counterpartyID,
		productID:      productID,
		state:          SessionClosed,
		seen:           make(map[string]bool),
	}
}

// OnMessage registers a callback invoked for every counterparty message
// the feed appends to the view. Register it before Load; echoes of the
// viewer's own sends never reach it.
func (s *ChatSession) OnMessage(fn func(*entity.Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMessage = fn
}

func (s *ChatSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load fetches the full chronological history for the thread. The first
// call also opens the realtime subscription, so no committed message can
// slip between the fetch and the feed.
func (s *ChatSession) Load(ctx context.Context) ([]*entity.Message, error) {
	s.mu.Lock()
	if s.state == SessionClosed {
		s.sub = s.uc.wsManager.SubscribeThread(s.viewerID, s.counterpartyID, s.productID)
		go s.consume(s.sub)
	}
	s.state = SessionLoading
	s.mu.Unlock()

	var loadErr error
	if _, err := s.uc.productRepo.GetByID(ctx, s.productID); err != nil {
		loadErr = err
	}

	var messages []*entity.Message
	if loadErr == nil {
		messages, loadErr = s.uc.messageRepo.ListThread(ctx, s.viewerID, s.counterpartyID, s.productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionReady

	if loadErr != nil {
		log.Printf("ChatSession Load Error: thread %s/%s product %s: %v", s.viewerID, s.counterpartyID, s.productID, loadErr)
		return nil, loadErr
	}

	s.messages = messages
	s.seen = make(map[string]bool, len(messages))
	for _, message := range messages {
		s.seen[message.ID] = true
	}

	return s.snapshot(), nil
}

// Send validates and submits a message, appending it to the local view
// immediately on success. On failure the local view is left unchanged and
// the session returns to Ready.
func (s *ChatSession) Send(ctx context.Context, content string) (*entity.Message, error) {
	s.mu.Lock()
	if s.state != SessionReady {
		s.mu.Unlock()
		return nil, errors.SendFailed("Chat session is not ready", nil)
	}
	s.state = SessionSending
	s.mu.Unlock()

	resp, err := s.uc.SendMessage(ctx, s.viewerID, SendMessageInput{
		ReceiverID: s.counterpartyID,
		ProductID:  s.productID,
		Content:    content,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionReady

	if err != nil {
		return nil, err
	}

	// Optimistic append, ahead of the realtime echo.
	if !s.seen[resp.Message.ID] {
		s.seen[resp.Message.ID] = true
		s.messages = append(s.messages, resp.Message)
	}

	return resp.Message, nil
}

// Messages returns a snapshot of the ordered local view.
func (s *ChatSession) Messages() []*entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *ChatSession) snapshot() []*entity.Message {
	out := make([]*entity.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *ChatSession) consume(sub *ws.Subscription) {
	for message := range sub.C {
		s.handleRemoteMessage(message)
	}
}

// handleRemoteMessage merges one change-feed event into the local view.
// Events from the viewer are echoes of optimistic appends and are
// suppressed; everything else is appended at the tail, which preserves
// chronological order because the feed delivers in commit order.
func (s *ChatSession) handleRemoteMessage(message *entity.Message) {
	s.mu.Lock()

	if s.state == SessionClosed || message.SenderID == s.viewerID || s.seen[message.ID] {
		s.mu.Unlock()
		return
	}

	s.seen[message.ID] = true
	s.messages = append(s.messages, message)
	notify := s.onMessage
	s.mu.Unlock()

	// The callback runs outside the lock; it may do its own I/O.
	if notify != nil {
		notify(message)
	}
}

// Close tears the session down and releases the subscription. It is
// idempotent and safe to defer on every exit path.
func (s *ChatSession) Close() {
	s.mu.Lock()
	if s.state == SessionClosed {
		s.mu.Unlock()
		return
	}
	s.state = SessionClosed
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}
