package handler

import (
	"github.com/labstack/echo/v4"

	"zabibufresh/internal/usecase"
	"zabibufresh/pkg/errors"
	"zabibufresh/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	ProductID  string `json:"product_id" validate:"required"`
	Content    string `json:"content" validate:"required,max=500"`
}

// SendMessage submits a message to the counterparty about a product
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ReceiverID: req.ReceiverID,
		ProductID:  req.ProductID,
		Content:    req.Content,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// ListConversations returns the viewer's conversation summaries, newest first
func (h *ChatHandler) ListConversations(c echo.Context) error {
	userID := c.Get("uid").(string)

	conversations, err := h.chatUseCase.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversations)
}

// GetThreadMessages returns the chronological history of one thread
func (h *ChatHandler) GetThreadMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	counterpartyID := c.Param("counterpartyId")
	productID := c.Param("productId")

	messages, err := h.chatUseCase.GetThreadMessages(c.Request().Context(), userID, counterpartyID, productID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}
