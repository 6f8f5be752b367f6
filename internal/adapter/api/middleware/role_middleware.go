package middleware

import (
	"net/http"

	"zabibufresh/internal/domain/repository"

	"github.com/labstack/echo/v4"
)

type RoleMiddleware struct {
	userRepo repository.UserRepository
}

func NewRoleMiddleware(userRepo repository.UserRepository) *RoleMiddleware {
	return &RoleMiddleware{
		userRepo: userRepo,
	}
}

// SellerOnly gates routes that only grape sellers may use. The profile is
// always resolved before the check, so an unresolved role never passes.
func (m *RoleMiddleware) SellerOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {

		uid, ok := c.Get("uid").(string)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}

		user, err := m.userRepo.GetByID(c.Request().Context(), uid)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify seller role")
		}

		if !user.IsSeller() {
			return echo.NewHTTPError(http.StatusForbidden, "Seller role required")
		}

		return next(c)
	}
}
