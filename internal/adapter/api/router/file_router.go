package router

import (
	"zabibufresh/internal/adapter/api/handler"
	"zabibufresh/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupFileRouter sets up upload routes
func SetupFileRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	fileHandler := handler.GetFileHandler()

	uploadGroup := e.Group("/v1/uploads")
	uploadGroup.Use(authMiddleware.Authenticate)

	uploadGroup.POST("/product-image", fileHandler.UploadProductImage, roleMiddleware.SellerOnly)
}
