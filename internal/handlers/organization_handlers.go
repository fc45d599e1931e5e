package handlers

import (
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"congregate/internal/common"
	"congregate/internal/identity"
	"congregate/internal/services"
)

// OrganizationHandlers handles organization-related HTTP requests
type OrganizationHandlers struct {
	orgService services.OrganizationService
	provider   identity.Provider
}

func NewOrganizationHandlers(orgService services.OrganizationService, provider identity.Provider) *OrganizationHandlers {
	return &OrganizationHandlers{
		orgService: orgService,
		provider:   provider,
	}
}

// Create creates an organization and makes the caller its owner. This is
// the org-setup path of onboarding.
func (h *OrganizationHandlers) Create(c echo.Context) error {
	session, err := resolveSession(c, h.provider)
	if err != nil {
		return err
	}

	var req services.CreateOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	org, err := h.orgService.Create(c.Request().Context(), session, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, org)
}

func (h *OrganizationHandlers) Get(c echo.Context) error {
	orgID, err := common.ValidateUUID(c.Param("orgID"), "orgID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	org, err := h.orgService.GetByID(c.Request().Context(), orgID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "Organization not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get organization")
	}

	return c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandlers) Update(c echo.Context) error {
	orgID, err := common.ValidateUUID(c.Param("orgID"), "orgID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.UpdateOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.ID = orgID

	if err := h.orgService.Update(c.Request().Context(), &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Organization updated successfully"})
}

// List returns the organizations the caller is an active member of.
func (h *OrganizationHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	orgs, err := h.orgService.ListForUser(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list organizations")
	}

	return c.JSON(http.StatusOK, orgs)
}

func (h *OrganizationHandlers) ListMembers(c echo.Context) error {
	orgID, err := common.ValidateUUID(c.Param("orgID"), "orgID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	members, err := h.orgService.ListMembers(c.Request().Context(), orgID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list members")
	}

	return c.JSON(http.StatusOK, members)
}
