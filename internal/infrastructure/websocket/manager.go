package websocket

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"zabibufresh/internal/domain/entity"
)

// Client represents a WebSocket connection client
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// ThreadKey identifies a conversation thread by its unordered participant
// pair and the product it concerns.
type ThreadKey struct {
	pair      string
	productID string
}

func NewThreadKey(userA, userB, productID string) ThreadKey {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return ThreadKey{
		pair:      strings.Join(ids, "|"),
		productID: productID,
	}
}

// Subscription is a handle onto a thread's change feed. Events arrive on C
// in the order they were committed. Unsubscribe is idempotent and must be
// called on every exit path.
type Subscription struct {
	id      string
	key     ThreadKey
	C       chan *entity.Message
	manager *Manager
	once    sync.Once
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.manager.removeSubscription(s)
	})
}

// Manager manages all active WebSocket connections and thread subscriptions
type Manager struct {
	clients       map[string]*Client
	Register      chan *Client
	Unregister    chan *Client
	subscriptions map[ThreadKey]map[string]*Subscription
	mutex         sync.RWMutex
}

// NewManager creates a new WebSocket connection manager
func NewManager() *Manager {
	return &Manager{
		clients:       make(map[string]*Client),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		subscriptions: make(map[ThreadKey]map[string]*Subscription),
	}
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				log.Printf("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if _, ok := m.clients[client.UserID]; ok {
					delete(m.clients, client.UserID)
					close(client.Send)
				}
				m.mutex.Unlock()
				log.Printf("Client unregistered: %s", client.UserID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// SendToUser sends a message to a specific user
func (m *Manager) SendToUser(userID string, message []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if ok {
		select {
		case client.Send <- message:
		default:
			log.Printf("Dropping message for slow client %s", userID)
		}
	}
}

// SubscribeThread opens a change feed for a single conversation thread.
func (m *Manager) SubscribeThread(userA, userB, productID string) *Subscription {
	sub := &Subscription{
		id:      uuid.New().String(),
		key:     NewThreadKey(userA, userB, productID),
		C:       make(chan *entity.Message, 32),
		manager: m,
	}

	m.mutex.Lock()
	if m.subscriptions[sub.key] == nil {
		m.subscriptions[sub.key] = make(map[string]*Subscription)
	}
	m.subscriptions[sub.key][sub.id] = sub
	m.mutex.Unlock()

	return sub
}

func (m *Manager) removeSubscription(sub *Subscription) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if subs, ok := m.subscriptions[sub.key]; ok {
		delete(subs, sub.id)
		if len(subs) == 0 {
			delete(m.subscriptions, sub.key)
		}
	}

	// Closed under the write lock so a concurrent publish, which sends
	// under the read lock, can never hit a closed channel.
	close(sub.C)
}

// PublishMessage delivers a committed message to every subscription on its
// thread, in commit order. Subscribers that cannot keep up lose events
// rather than blocking the publisher. Sends happen under the read lock;
// the sends are non-blocking, and holding the lock excludes the channel
// close in removeSubscription.
func (m *Manager) PublishMessage(message *entity.Message) {
	key := NewThreadKey(message.SenderID, message.ReceiverID, message.ProductID)

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, sub := range m.subscriptions[key] {
		select {
		case sub.C <- message:
		default:
			log.Printf("Dropping feed event for slow subscription on thread %s/%s", key.pair, key.productID)
		}
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		err := c.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
	}
}
