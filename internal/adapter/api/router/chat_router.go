package router

import (
	"zabibufresh/internal/adapter/api/handler"
	"zabibufresh/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupChatRouter sets up all chat-related routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.GET("", chatHandler.ListConversations)
	chatGroup.POST("/messages", chatHandler.SendMessage)
	chatGroup.GET("/:counterpartyId/products/:productId/messages", chatHandler.GetThreadMessages)
}
