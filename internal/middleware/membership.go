package middleware

import (
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"congregate/internal/common"
	"congregate/internal/models"
	"congregate/internal/repositories"
)

// MembershipMiddleware gates organization-scoped routes: the authenticated
// user must hold an active membership in the :orgID organization. Membership
// existence is the sole gate for organization data access.
type MembershipMiddleware struct {
	membershipRepo repositories.MembershipRepository
}

func NewMembershipMiddleware(membershipRepo repositories.MembershipRepository) *MembershipMiddleware {
	return &MembershipMiddleware{membershipRepo: membershipRepo}
}

func (m *MembershipMiddleware) RequireMember() echo.MiddlewareFunc {
	return m.require(func(membership *models.OrganizationMembership) bool {
		return membership.Status == models.MembershipActive
	})
}

func (m *MembershipMiddleware) RequireAdmin() echo.MiddlewareFunc {
	return m.require(func(membership *models.OrganizationMembership) bool {
		return membership.Status == models.MembershipActive &&
			(membership.Role == models.RoleOwner || membership.Role == models.RoleAdmin)
	})
}

func (m *MembershipMiddleware) require(allowed func(*models.OrganizationMembership) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			userID, ok := common.GetUserIDFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			orgID, err := common.ValidateUUID(c.Param("orgID"), "orgID")
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}

			membership, err := m.membershipRepo.Find(ctx, orgID, userID)
			if err != nil {
				if err == pgx.ErrNoRows {
					return echo.NewHTTPError(http.StatusForbidden, "Not a member of organization")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check membership")
			}
			if !allowed(membership) {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient role")
			}

			c.Set("membership", membership)
			return next(c)
		}
	}
}
