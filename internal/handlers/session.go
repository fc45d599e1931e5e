package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"congregate/internal/common"
	"congregate/internal/identity"
)

// resolveSession loads the authenticated user's identity record and wraps it
// in the explicit session handle the service layer expects.
func resolveSession(c echo.Context, provider identity.Provider) (identity.Session, error) {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return identity.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := provider.GetUser(ctx, userID)
	if err != nil {
		return identity.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	return identity.NewSession(user), nil
}
