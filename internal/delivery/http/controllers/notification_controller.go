package controllers

import (
	"log/slog"
	"net/http"

	"eventcircle/internal/delivery/http/helpers"
	"eventcircle/internal/domain"
)

// NotificationsSuccessResponse is the success response envelope for GET /notifications (200).
type NotificationsSuccessResponse struct {
	Data  *domain.Notifications `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type NotificationController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewNotificationController(logger *slog.Logger, svc domain.EventService) *NotificationController {
	return &NotificationController{
		Logger:  logger,
		Service: svc,
	}
}

// ListNotifications godoc
// @Summary Get the viewer's notifications
// @Description Returns pending join requests on events the viewer hosts and unread invitations addressed to the viewer, with counts.
// @Tags notifications
// @Produce json
// @Param X-Viewer-Token header string false "Viewer scope token"
// @Success 200 {object} controllers.NotificationsSuccessResponse "data contains counts and pending items"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	n, err := c.Service.Notifications(r.Context(), viewer.ID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, n)
}
