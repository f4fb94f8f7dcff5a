package controllers

import (
	"log/slog"
	"net/http"

	"eventcircle/internal/delivery/http/helpers"
	"eventcircle/internal/delivery/http/middleware"
	"eventcircle/internal/domain"
)

// SwitchViewerRequest is the request body for PUT /viewer.
type SwitchViewerRequest struct {
	UserID int64 `json:"user_id"`
}

// Validate implements helpers.Validator.
func (s SwitchViewerRequest) Validate() []string {
	if s.UserID <= 0 {
		return []string{"user_id is required"}
	}
	return nil
}

// ViewerSuccessResponse is the success response envelope for GET and PUT /viewer (200).
type ViewerSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type ViewerController struct {
	Logger  *slog.Logger
	Service domain.ViewerService
}

func NewViewerController(logger *slog.Logger, svc domain.ViewerService) *ViewerController {
	return &ViewerController{
		Logger:  logger,
		Service: svc,
	}
}

// GetViewer godoc
// @Summary Get the current viewer
// @Description Returns the user this client is acting as. A new client is assigned a random demo user.
// @Tags viewer
// @Produce json
// @Param X-Viewer-Token header string false "Viewer scope token"
// @Success 200 {object} controllers.ViewerSuccessResponse "data contains the viewer"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /viewer [get]
func (c *ViewerController) GetViewer(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, viewer)
}

// SwitchViewer godoc
// @Summary Switch the current viewer
// @Description Persists another user as the viewer for this client's scope.
// @Tags viewer
// @Accept json
// @Produce json
// @Param X-Viewer-Token header string false "Viewer scope token"
// @Param body body controllers.SwitchViewerRequest true "User to act as"
// @Success 200 {object} controllers.ViewerSuccessResponse "data contains the new viewer"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /viewer [put]
func (c *ViewerController) SwitchViewer(w http.ResponseWriter, r *http.Request) {
	var req SwitchViewerRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	scope, ok := middleware.ViewerScopeFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "viewer not resolved")
		return
	}
	viewer, err := c.Service.Switch(r.Context(), scope, req.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, viewer)
}

// requireViewer reads the viewer resolved by middleware.ResolveViewer.
func requireViewer(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	viewer, ok := middleware.ViewerFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "viewer not resolved")
		return nil, false
	}
	return viewer, true
}
