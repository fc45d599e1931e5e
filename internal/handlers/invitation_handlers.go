package handlers

import (
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"congregate/internal/common"
	"congregate/internal/identity"
	"congregate/internal/services"
)

// InvitationHandlers handles organization invitation HTTP requests
type InvitationHandlers struct {
	invitationSvc services.InvitationService
	provider      identity.Provider
}

func NewInvitationHandlers(invitationSvc services.InvitationService, provider identity.Provider) *InvitationHandlers {
	return &InvitationHandlers{
		invitationSvc: invitationSvc,
		provider:      provider,
	}
}

// Create issues a pending invitation for an email address.
func (h *InvitationHandlers) Create(c echo.Context) error {
	session, err := resolveSession(c, h.provider)
	if err != nil {
		return err
	}

	orgID, err := common.ValidateUUID(c.Param("orgID"), "orgID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.CreateInviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.OrganizationID = orgID

	invite, err := h.invitationSvc.Create(c.Request().Context(), session, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, invite)
}

func (h *InvitationHandlers) ListPending(c echo.Context) error {
	orgID, err := common.ValidateUUID(c.Param("orgID"), "orgID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	invites, err := h.invitationSvc.ListPending(c.Request().Context(), orgID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list invitations")
	}

	return c.JSON(http.StatusOK, invites)
}

func (h *InvitationHandlers) Revoke(c echo.Context) error {
	inviteID, err := common.ValidateUUID(c.Param("inviteID"), "inviteID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.invitationSvc.Revoke(c.Request().Context(), inviteID); err != nil {
		if err == pgx.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "Invitation not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Invitation revoked successfully"})
}
