package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcircle/internal/delivery/http/helpers"
	"eventcircle/internal/domain"
)

var testTime = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

// eventJSON mirrors the fields of EventView the tests assert on.
type eventJSON struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	HostID       int64         `json:"host_id"`
	Requests     []domain.User `json:"requests"`
	Relationship string        `json:"relationship"`
	Actions      []string      `json:"actions"`
	UnreadInvite bool          `json:"unread_invite"`
}

func TestEventController_ListEvents(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		fakeErr    error
		wantStatus int
		wantCode   string
		wantFilter domain.EventFilter
	}{
		{"no filter", "", nil, http.StatusOK, "", domain.EventFilter{}},
		{"search and category", "?search=tech&category=Professional", nil, http.StatusOK, "",
			domain.EventFilter{Search: "tech", Category: "Professional"}},
		{"category all", "?category=ALL", nil, http.StatusOK, "", domain.EventFilter{Category: "ALL"}},
		{"mine", "?mine=true", nil, http.StatusOK, "", domain.EventFilter{ParticipantID: jane.ID}},
		{"unknown category", "?category=party", nil, http.StatusBadRequest, helpers.ErrCodeBadRequest, domain.EventFilter{}},
		{"bad mine", "?mine=maybe", nil, http.StatusBadRequest, helpers.ErrCodeBadRequest, domain.EventFilter{}},
		{"store unavailable", "", domain.MarkTransient(errors.New("timeout")), http.StatusServiceUnavailable, helpers.ErrCodeUnavailable, domain.EventFilter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{events: []*domain.Event{hostedBy(john)}, err: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake)
			req := asViewer(httptest.NewRequest(http.MethodGet, "/events"+tt.query, nil), jane)
			rr := httptest.NewRecorder()

			ctrl.ListEvents(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			envelope := decodeEnvelope(t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
				return
			}
			assert.Equal(t, tt.wantFilter, fake.lastFilt)
			views := decodeData[[]eventJSON](t, envelope)
			require.Len(t, views, 1)
			assert.Equal(t, "stranger", views[0].Relationship)
			assert.Equal(t, []string{"REQUEST_TO_JOIN"}, views[0].Actions)
		})
	}
}

func TestEventController_CreateEvent(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:       "success",
			body:       `{"title":"Tech Meetup","description":"d","date":"2024-09-12","time":"19:00","location":"Tech Hub","category":"professional"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:           "bad request invalid json",
			body:           `{invalid`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid",
		},
		{
			name:           "missing fields",
			body:           `{"title":"Tech Meetup"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "description is required",
		},
		{
			name:           "unknown category",
			body:           `{"title":"t","description":"d","date":"2024-09-12","time":"19:00","location":"l","category":"party"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "not supported",
		},
		{
			name:           "unknown field rejected",
			body:           `{"title":"t","host_id":7}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "unknown field",
		},
		{
			name:           "service error",
			body:           `{"title":"t","description":"d","date":"2024-09-12","time":"19:00","location":"l"}`,
			fakeErr:        errors.New("db error"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{events: []*domain.Event{hostedBy(jane)}, err: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req = asViewer(req, jane)
			rr := httptest.NewRecorder()

			ctrl.CreateEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusCreated {
				view := decodeData[eventJSON](t, envelope)
				assert.Equal(t, "host", view.Relationship)
				assert.Equal(t, jane.ID, fake.lastActor, "viewer becomes host")
				assert.Equal(t, "professional", fake.lastField.Category)
				return
			}
			require.NotNil(t, envelope.Error, "error response must have error set")
			assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
		})
	}
}

func TestEventController_GetEvent(t *testing.T) {
	tests := []struct {
		name       string
		eventID    string
		viewer     domain.User
		fakeErr    error
		wantStatus int
		wantCode   string
		wantRel    string
		wantAction string
	}{
		{"host view", "3", john, nil, http.StatusOK, "", "host", "MANAGE_AS_HOST"},
		{"requester view", "3", bob, nil, http.StatusOK, "", "requester", "VIEW_AS_REQUESTER"},
		{"attendee view", "3", jane, nil, http.StatusOK, "", "attendee", "VIEW_AS_ATTENDEE"},
		{"invalid id", "abc", john, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest, "", ""},
		{"not found", "9", john, domain.ErrNotFound, http.StatusNotFound, helpers.ErrCodeNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := hostedBy(john)
			_, err := e.AddInvitee(jane)
			require.NoError(t, err)
			_, err = e.AddRequest(bob)
			require.NoError(t, err)
			fake := &fakeEventService{events: []*domain.Event{e}, err: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "/events/"+tt.eventID, nil)
			req.SetPathValue("eventID", tt.eventID)
			req = asViewer(req, tt.viewer)
			rr := httptest.NewRecorder()

			ctrl.GetEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			envelope := decodeEnvelope(t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
				return
			}
			view := decodeData[eventJSON](t, envelope)
			assert.Equal(t, int64(3), view.ID)
			assert.Equal(t, tt.wantRel, view.Relationship)
			assert.Equal(t, []string{tt.wantAction}, view.Actions)
			assert.Equal(t, tt.viewer.ID == jane.ID, view.UnreadInvite)
		})
	}
}

func TestEventController_DeleteEvent(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
		wantCode   string
	}{
		{"host deletes", nil, http.StatusOK, ""},
		{"not host", domain.ErrForbidden, http.StatusForbidden, helpers.ErrCodeForbidden},
		{"not found", domain.ErrNotFound, http.StatusNotFound, helpers.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{err: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake)
			req := httptest.NewRequest(http.MethodDelete, "/events/3", nil)
			req.SetPathValue("eventID", "3")
			req = asViewer(req, jane)
			rr := httptest.NewRecorder()

			ctrl.DeleteEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, "DeleteEventAsHost", fake.lastCall)
			assert.Equal(t, int64(3), fake.lastEvent)
			assert.Equal(t, jane.ID, fake.lastActor)
			envelope := decodeEnvelope(t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
				return
			}
			assert.Equal(t, DeleteEventResponse{Status: "deleted"}, decodeData[DeleteEventResponse](t, envelope))
		})
	}
}

func TestEventController_MissingViewer(t *testing.T) {
	ctrl := NewEventController(testLogger, &fakeEventService{})
	rr := httptest.NewRecorder()
	ctrl.ListEvents(rr, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
