package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"congregate/internal/identity"
	"congregate/internal/services"
)

// OnboardingHandlers is the thin HTTP adapter over the onboarding state
// machine. The service returns pure decisions; only this layer maps them to
// navigation targets.
type OnboardingHandlers struct {
	onboardingService services.OnboardingService
	provider          identity.Provider
}

func NewOnboardingHandlers(onboardingService services.OnboardingService, provider identity.Provider) *OnboardingHandlers {
	return &OnboardingHandlers{
		onboardingService: onboardingService,
		provider:          provider,
	}
}

// NavigationResponse tells the client where to go next.
type NavigationResponse struct {
	Decision      services.Decision `json:"decision"`
	Redirect      string            `json:"redirect"`
	ErrorCode     string            `json:"error_code,omitempty"`
	AlreadyMember bool              `json:"already_member,omitempty"`
}

func navigationTarget(decision services.Decision) string {
	switch decision {
	case services.DecisionProfileRequired:
		return "/onboarding/profile"
	case services.DecisionOrgSetupRequired:
		return "/onboarding/organization"
	case services.DecisionDashboardRedirect, services.DecisionComplete:
		return "/dashboard"
	default:
		return "/onboarding/processing"
	}
}

func errorCode(err error) string {
	var obErr *services.OnboardingError
	if errors.As(err, &obErr) {
		return obErr.Code
	}
	return ""
}

// Next reconciles the session against the onboarding state machine and
// returns the navigation target. Fatal lookup failures still produce a
// navigable response: the client lands on the processing screen and retries.
func (h *OnboardingHandlers) Next(c echo.Context) error {
	session, err := resolveSession(c, h.provider)
	if err != nil {
		return err
	}

	decision, err := h.onboardingService.Reconcile(c.Request().Context(), session)
	response := NavigationResponse{Decision: decision, Redirect: navigationTarget(decision)}
	if err != nil {
		log.Printf("Onboarding reconcile for user %s: %v", session.UserID.String(), err)
		response.ErrorCode = errorCode(err)
	}

	return c.JSON(http.StatusOK, response)
}

// CompleteProfile handles the profile step submission.
func (h *OnboardingHandlers) CompleteProfile(c echo.Context) error {
	session, err := resolveSession(c, h.provider)
	if err != nil {
		return err
	}

	var req services.CompleteProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	decision, err := h.onboardingService.CompleteProfile(c.Request().Context(), session, &req)
	response := NavigationResponse{Decision: decision, Redirect: navigationTarget(decision)}
	if err != nil {
		response.ErrorCode = errorCode(err)
		switch response.ErrorCode {
		case services.CodePasswordMismatch, services.CodePasswordTooShort, services.CodeNameRequired:
			return c.JSON(http.StatusBadRequest, response)
		}
		log.Printf("Profile completion for user %s: %v", session.UserID.String(), err)
		return c.JSON(http.StatusInternalServerError, response)
	}

	return c.JSON(http.StatusOK, response)
}

// AcceptInvitation triggers invitation acceptance outside the automatic
// reconcile path, e.g. from an invite landing page.
func (h *OnboardingHandlers) AcceptInvitation(c echo.Context) error {
	session, err := resolveSession(c, h.provider)
	if err != nil {
		return err
	}

	result, err := h.onboardingService.AcceptInvitation(c.Request().Context(), session)
	if err != nil {
		log.Printf("Invitation acceptance for user %s: %v", session.UserID.String(), err)
		response := NavigationResponse{
			Decision:  services.DecisionProcessing,
			Redirect:  navigationTarget(services.DecisionProcessing),
			ErrorCode: errorCode(err),
		}
		return c.JSON(http.StatusInternalServerError, response)
	}

	return c.JSON(http.StatusOK, NavigationResponse{
		Decision:      result.Decision,
		Redirect:      navigationTarget(result.Decision),
		AlreadyMember: result.AlreadyMember,
	})
}
