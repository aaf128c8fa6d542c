package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/toodoo/core/internal/application/services"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

// activityWindow bounds the recent-activity listing.
const (
	activityWindow = 7 * 24 * time.Hour
	activityLimit  = 15
)

// DashboardHandler handles dashboard, activity and notification requests
type DashboardHandler struct {
	dashboardService    *services.DashboardService
	activityService     *services.ActivityService
	notificationService *services.NotificationService
	logger              *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService, activityService *services.ActivityService, notificationService *services.NotificationService, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService:    dashboardService,
		activityService:     activityService,
		notificationService: notificationService,
		logger:              logger,
	}
}

// GetDashboard handles the aggregate counts endpoint
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	actor := getUserIDFromContext(c)

	dashboard, err := h.dashboardService.GetDashboard(c.Request().Context(), actor, time.Now())
	if err != nil {
		h.logger.Error("Get dashboard failed", "error", err, "user_id", actor)
		return mapDomainError(err, "Failed to compute dashboard")
	}

	return c.JSON(http.StatusOK, dashboard)
}

// GetActivity handles the recent activity listing, newest first
func (h *DashboardHandler) GetActivity(c echo.Context) error {
	actor := getUserIDFromContext(c)

	limit := activityLimit
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		limit = n
	}

	since := time.Now().Add(-activityWindow)
	entries, err := h.activityService.RecentActivity(c.Request().Context(), actor, since, limit)
	if err != nil {
		h.logger.Error("Get activity failed", "error", err, "user_id", actor)
		return mapDomainError(err, "Failed to list activity")
	}

	return c.JSON(http.StatusOK, entries)
}

// ListNotifications handles the notification listing, newest first
func (h *DashboardHandler) ListNotifications(c echo.Context) error {
	actor := getUserIDFromContext(c)

	unreadOnly := c.QueryParam("unread") == "true"

	notifications, err := h.notificationService.ListNotifications(c.Request().Context(), actor, unreadOnly)
	if err != nil {
		h.logger.Error("List notifications failed", "error", err, "user_id", actor)
		return mapDomainError(err, "Failed to list notifications")
	}

	return c.JSON(http.StatusOK, notifications)
}

// MarkNotificationsRead handles acknowledging all unread notifications
func (h *DashboardHandler) MarkNotificationsRead(c echo.Context) error {
	actor := getUserIDFromContext(c)

	if err := h.notificationService.MarkAllRead(c.Request().Context(), actor); err != nil {
		h.logger.Error("Mark notifications read failed", "error", err, "user_id", actor)
		return mapDomainError(err, "Failed to mark notifications read")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Notifications marked read"})
}
