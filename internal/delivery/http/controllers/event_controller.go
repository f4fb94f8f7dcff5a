package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"eventcircle/internal/delivery/http/helpers"
	"eventcircle/internal/domain"
)

// CreateEventRequest is the request body for POST /events. The viewer becomes the host.
type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
}

func (c CreateEventRequest) fields() domain.EventFields {
	return domain.EventFields{
		Title:       c.Title,
		Description: c.Description,
		Date:        c.Date,
		Time:        c.Time,
		Location:    c.Location,
		Category:    c.Category,
		ImageURL:    c.ImageURL,
	}
}

// Validate implements helpers.Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var verr *domain.ValidationError
	if err := c.fields().Validate(); errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

// EventView is an event as seen by the current viewer.
type EventView struct {
	*domain.Event
	Relationship domain.Relationship `json:"relationship"`
	Actions      []domain.Action     `json:"actions"`
	UnreadInvite bool                `json:"unread_invite"`
}

func newEventView(e *domain.Event, viewerID int64) EventView {
	return EventView{
		Event:        e,
		Relationship: domain.RelationshipOf(e, viewerID),
		Actions:      domain.AvailableActions(e, viewerID),
		UnreadInvite: domain.HasUnreadInvite(e, viewerID),
	}
}

// EventSuccessResponse is the success response envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  EventView         `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  []EventView       `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID} (200).
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /events/{eventID} (200).
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary List events
// @Description Lists events in creation order. search matches title, description and location case-insensitively; category "all" or empty matches every category; mine=true keeps events the viewer hosts or attends.
// @Tags events
// @Produce json
// @Param X-Viewer-Token header string false "Viewer scope token"
// @Param search query string false "Free-text search"
// @Param category query string false "Category or all"
// @Param mine query bool false "Only events the viewer hosts or attends"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains the events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := domain.EventFilter{Search: q.Get("search"), Category: q.Get("category")}
	if !strings.EqualFold(strings.TrimSpace(filter.Category), "all") {
		if _, ok := domain.ParseCategory(filter.Category); !ok {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown category")
			return
		}
	}
	if s := q.Get("mine"); s != "" {
		mine, err := strconv.ParseBool(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "mine must be a boolean")
			return
		}
		if mine {
			filter.ParticipantID = viewer.ID
		}
	}

	events, err := c.Service.SearchEvents(r.Context(), filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, newEventView(e, viewer.ID))
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event hosted by the viewer with empty invitee, request and unread lists.
// @Tags events
// @Accept json
// @Produce json
// @Param X-Viewer-Token header string false "Viewer scope token"
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), req.fields(), viewer.ID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, newEventView(event, viewer.ID))
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event with the viewer's relationship to it and the actions available to the viewer.
// @Tags events
// @Produce json
// @Param X-Viewer-Token header string false "Viewer scope token"
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventView(event, viewer.ID))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and its membership lists. Only the host can delete.
// @Tags events
// @Produce json
// @Param X-Viewer-Token header string false "Viewer scope token"
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.DeleteEventSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEventAsHost(r.Context(), eventID, viewer.ID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}
