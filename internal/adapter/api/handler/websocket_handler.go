package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"zabibufresh/internal/domain/entity"
	ws "zabibufresh/internal/infrastructure/websocket"
	"zabibufresh/internal/usecase"
	apperrors "zabibufresh/pkg/errors"
)

type WebSocketHandler struct {
	wsManager   *ws.Manager
	userUseCase *usecase.UserUseCase
	chatUseCase *usecase.ChatUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Restrict this in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, userUseCase *usecase.UserUseCase, chatUseCase *usecase.ChatUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:   wsManager,
		userUseCase: userUseCase,
		chatUseCase: chatUseCase,
	}
}

// wsCommand is the client-to-server frame. Type selects the action:
// open_thread, send_message, close_thread.
type wsCommand struct {
	Type           string `json:"type"`
	CounterpartyID string `json:"counterparty_id"`
	ProductID      string `json:"product_id"`
	Content        string `json:"content"`
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return apperrors.Unauthenticated("Authentication required", nil)
	}

	// Resolve the profile before the connection serves any role-gated
	// action over the feed.
	profile := usecase.NewProfileContext()
	if err := h.userUseCase.ResolveProfile(c.Request().Context(), profile, userID); err != nil {
		return apperrors.Unauthenticated("Profile could not be resolved", err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return apperrors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	go client.WritePump()
	go h.readPump(client)

	return nil
}

func threadKey(counterpartyID, productID string) string {
	return counterpartyID + "|" + productID
}

// readPump drives the connection's command loop. Every open thread is
// backed by a live chat session whose feed events are forwarded onto the
// client's send channel; all sessions are closed when the connection drops.
func (h *WebSocketHandler) readPump(client *ws.Client) {
	ctx := context.Background()
	sessions := make(map[string]*usecase.ChatSession)

	defer func() {
		for _, session := range sessions {
			session.Close()
		}
		h.wsManager.Unregister <- client
		client.Conn.Close()
	}()

	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			return
		}

		var cmd wsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.sendEvent(client, map[string]interface{}{
				"type":    "error",
				"message": "Invalid command",
			})
			continue
		}

		switch cmd.Type {
		case "open_thread":
			h.openThread(ctx, client, sessions, cmd)

		case "send_message":
			h.sendToThread(ctx, client, sessions, cmd)

		case "close_thread":
			key := threadKey(cmd.CounterpartyID, cmd.ProductID)
			if session, ok := sessions[key]; ok {
				session.Close()
				delete(sessions, key)
			}

		default:
			h.sendEvent(client, map[string]interface{}{
				"type":    "error",
				"message": "Unknown command type",
			})
		}
	}
}

func (h *WebSocketHandler) openThread(ctx context.Context, client *ws.Client, sessions map[string]*usecase.ChatSession, cmd wsCommand) {
	key := threadKey(cmd.CounterpartyID, cmd.ProductID)

	// Re-opening replaces the previous session for the thread.
	if existing, ok := sessions[key]; ok {
		existing.Close()
		delete(sessions, key)
	}

	session := h.chatUseCase.OpenSession(client.UserID, cmd.CounterpartyID, cmd.ProductID)
	session.OnMessage(func(message *entity.Message) {
		h.sendEvent(client, map[string]interface{}{
			"type":            "thread_message",
			"counterparty_id": cmd.CounterpartyID,
			"product_id":      cmd.ProductID,
			"message":         message,
		})
	})

	history, err := session.Load(ctx)
	if err != nil {
		session.Close()
		log.Printf("HandleWebSocket Error: failed to open thread for user %s: %v", client.UserID, err)
		h.sendEvent(client, errorEvent(err))
		return
	}

	sessions[key] = session
	h.sendEvent(client, map[string]interface{}{
		"type":            "thread_history",
		"counterparty_id": cmd.CounterpartyID,
		"product_id":      cmd.ProductID,
		"messages":        history,
	})
}

func (h *WebSocketHandler) sendToThread(ctx context.Context, client *ws.Client, sessions map[string]*usecase.ChatSession, cmd wsCommand) {
	session, ok := sessions[threadKey(cmd.CounterpartyID, cmd.ProductID)]
	if !ok {
		h.sendEvent(client, map[string]interface{}{
			"type":    "error",
			"message": "Thread is not open",
		})
		return
	}

	message, err := session.Send(ctx, cmd.Content)
	if err != nil {
		h.sendEvent(client, errorEvent(err))
		return
	}

	h.sendEvent(client, map[string]interface{}{
		"type":            "message_sent",
		"counterparty_id": cmd.CounterpartyID,
		"product_id":      cmd.ProductID,
		"message":         message,
	})
}

func (h *WebSocketHandler) sendEvent(client *ws.Client, event map[string]interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("HandleWebSocket Error: failed to marshal event for user %s: %v", client.UserID, err)
		return
	}
	h.wsManager.SendToUser(client.UserID, payload)
}

func errorEvent(err error) map[string]interface{} {
	event := map[string]interface{}{
		"type":    "error",
		"message": "Operation failed",
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		event["code"] = appErr.Code
		event["message"] = appErr.Message
	}

	return event
}
