package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"eventcircle/internal/delivery/http/helpers"
	"eventcircle/internal/domain"
)

// InviteUserRequest is the request body for POST /events/{eventID}/invitations.
type InviteUserRequest struct {
	UserID int64 `json:"user_id"`
}

// Validate implements helpers.Validator.
func (i InviteUserRequest) Validate() []string {
	if i.UserID <= 0 {
		return []string{"user_id is required"}
	}
	return nil
}

// MembershipController handles invitations and join requests.
type MembershipController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewMembershipController(logger *slog.Logger, svc domain.EventService) *MembershipController {
	return &MembershipController{
		Logger:  logger,
		Service: svc,
	}
}

// ListInvitableUsers godoc
// @Summary List users the host can invite
// @Description Returns users who are neither the host nor already invited. Only the host can list.
// @Tags membership
// @Produce json
// @Param X-Viewer-Token header string false "Viewer scope token"
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.ListUsersSuccessResponse "data contains the users"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/invitable [get]
func (c *MembershipController) ListInvitableUsers(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	users, err := c.Service.InvitableUsersAsHost(r.Context(), eventID, viewer.ID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// InviteUser godoc
// @Summary Invite a user
// @Description Adds the user to the invitees with an unread invitation and drops any pending request from them. Inviting an existing invitee is a no-op. Only the host can invite.
// @Tags membership
// @Accept json
// @Produce json
// @Param X-Viewer-Token header string false "Viewer scope token"
// @Param eventID path int true "Event ID"
// @Param body body controllers.InviteUserRequest true "User to invite"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /events/{eventID}/invitations [post]
func (c *MembershipController) InviteUser(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req InviteUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	event, err := c.Service.InviteUserAsHost(r.Context(), eventID, viewer.ID, req.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventView(event, viewer.ID))
}

// MarkInviteRead godoc
// @Summary Mark the viewer's invitation as read
// @Description Clears the viewer's unread invitation for the event. Idempotent.
// @Tags membership
// @Produce json
// @Param X-Viewer-Token header string false "Viewer scope token"
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /events/{eventID}/invitations/read [post]
func (c *MembershipController) MarkInviteRead(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	event, err := c.Service.MarkInviteRead(r.Context(), eventID, viewer.ID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventView(event, viewer.ID))
}

// RequestToJoin godoc
// @Summary Request to join an event
// @Description Adds the viewer to the event's pending requests. Idempotent: returns 201 when a new request is created, 200 when one is already pending. Hosts and attendees get 409.
// @Tags membership
// @Produce json
// @Param X-Viewer-Token header string false "Viewer scope token"
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse "Already requested"
// @Success 201 {object} controllers.EventSuccessResponse "New request created"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /events/{eventID}/requests [post]
func (c *MembershipController) RequestToJoin(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	event, created, err := c.Service.RequestToJoin(r.Context(), eventID, viewer.ID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if created {
		helpers.WriteJSONSuccess(w, http.StatusCreated, newEventView(event, viewer.ID))
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventView(event, viewer.ID))
}

// AcceptRequest godoc
// @Summary Accept a join request
// @Description Moves the requester into the invitees with an unread invitation. Accepting a request that is not pending is a no-op. Only the host can accept.
// @Tags membership
// @Produce json
// @Param X-Viewer-Token header string false "Viewer scope token"
// @Param eventID path int true "Event ID"
// @Param userID path int true "Requester user ID"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /events/{eventID}/requests/{userID}/accept [post]
func (c *MembershipController) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	c.resolveRequest(w, r, c.Service.AcceptRequestAsHost)
}

// DeclineRequest godoc
// @Summary Decline a join request
// @Description Removes the pending request. Declining a request that is not pending is a no-op. Only the host can decline.
// @Tags membership
// @Produce json
// @Param X-Viewer-Token header string false "Viewer scope token"
// @Param eventID path int true "Event ID"
// @Param userID path int true "Requester user ID"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /events/{eventID}/requests/{userID}/decline [post]
func (c *MembershipController) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	c.resolveRequest(w, r, c.Service.DeclineRequestAsHost)
}

type hostAction func(ctx context.Context, eventID, actorID, userID int64) (*domain.Event, error)

func (c *MembershipController) resolveRequest(w http.ResponseWriter, r *http.Request, act hostAction) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := helpers.PathID(w, r, "userID")
	if !ok {
		return
	}
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	event, err := act(r.Context(), eventID, viewer.ID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventView(event, viewer.ID))
}
