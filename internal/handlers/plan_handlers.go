package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"congregate/internal/common"
	"congregate/internal/models"
	"congregate/internal/services"
)

// PlanHandlers handles service plan HTTP requests
type PlanHandlers struct {
	planService services.PlanService
}

func NewPlanHandlers(planService services.PlanService) *PlanHandlers {
	return &PlanHandlers{planService: planService}
}

func (h *PlanHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	orgID, err := common.ValidateUUID(c.Param("orgID"), "orgID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.CreatePlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.OrganizationID = orgID
	req.CreatedBy = userID

	plan, err := h.planService.Create(ctx, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandlers) Get(c echo.Context) error {
	orgID, planID, err := orgScopedIDs(c, "planID")
	if err != nil {
		return err
	}

	plan, err := h.planService.GetByID(c.Request().Context(), orgID, planID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get plan")
	}

	return c.JSON(http.StatusOK, plan)
}

func (h *PlanHandlers) Update(c echo.Context) error {
	orgID, planID, err := orgScopedIDs(c, "planID")
	if err != nil {
		return err
	}

	var req services.UpdatePlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.OrganizationID = orgID
	req.ID = planID

	if err := h.planService.Update(c.Request().Context(), &req); err != nil {
		if err == pgx.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Plan updated successfully"})
}

func (h *PlanHandlers) Delete(c echo.Context) error {
	orgID, planID, err := orgScopedIDs(c, "planID")
	if err != nil {
		return err
	}

	if err := h.planService.Delete(c.Request().Context(), orgID, planID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete plan")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Plan deleted successfully"})
}

// List returns plans inside a date window, defaulting to the recent past
// through the next quarter.
func (h *PlanHandlers) List(c echo.Context) error {
	orgID, err := common.ValidateUUID(c.Param("orgID"), "orgID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var from, to time.Time
	if fromStr := c.QueryParam("from"); fromStr != "" {
		if from, err = common.ValidateDateFormat(fromStr, "from"); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if toStr := c.QueryParam("to"); toStr != "" {
		if to, err = common.ValidateDateFormat(toStr, "to"); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	plans, err := h.planService.ListByOrganization(c.Request().Context(), orgID, from, to, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, plans)
}

// SetItemsRequest carries the full replacement item list for a plan.
type SetItemsRequest struct {
	Items []*models.PlanItem `json:"items" validate:"required"`
}

// SetItems replaces a plan's item list wholesale; positions follow the
// submitted order.
func (h *PlanHandlers) SetItems(c echo.Context) error {
	orgID, planID, err := orgScopedIDs(c, "planID")
	if err != nil {
		return err
	}

	var req SetItemsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.planService.SetItems(c.Request().Context(), orgID, planID, req.Items); err != nil {
		if err == pgx.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Plan items updated successfully"})
}

func (h *PlanHandlers) GetItems(c echo.Context) error {
	orgID, planID, err := orgScopedIDs(c, "planID")
	if err != nil {
		return err
	}

	items, err := h.planService.GetItems(c.Request().Context(), orgID, planID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get plan items")
	}

	return c.JSON(http.StatusOK, items)
}
