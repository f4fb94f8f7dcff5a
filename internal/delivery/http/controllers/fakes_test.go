package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventcircle/internal/delivery/http/helpers"
	"eventcircle/internal/delivery/http/middleware"
	"eventcircle/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	john = domain.NewUser(1, "John Doe", "john@example.com")
	jane = domain.NewUser(2, "Jane Doe", "jane@example.com")
	bob  = domain.NewUser(3, "Bob Smith", "bob@example.com")
)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	events    []*domain.Event
	users     []domain.User
	err       error
	created   bool
	notifs    *domain.Notifications
	lastCall  string
	lastEvent int64
	lastActor int64
	lastUser  int64
	lastFilt  domain.EventFilter
	lastField domain.EventFields
}

func (f *fakeEventService) record(call string, eventID, actorID, userID int64) {
	f.lastCall, f.lastEvent, f.lastActor, f.lastUser = call, eventID, actorID, userID
}

func (f *fakeEventService) event() *domain.Event {
	if len(f.events) == 0 {
		return nil
	}
	return f.events[0]
}

func (f *fakeEventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	return f.events, f.err
}

func (f *fakeEventService) SearchEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	f.lastFilt = filter
	return f.events, f.err
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	f.record("GetEvent", eventID, 0, 0)
	if f.err != nil {
		return nil, f.err
	}
	return f.event(), nil
}

func (f *fakeEventService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return f.users, f.err
}

func (f *fakeEventService) InvitableUsers(ctx context.Context, eventID int64) ([]domain.User, error) {
	return f.users, f.err
}

func (f *fakeEventService) CreateEvent(ctx context.Context, fields domain.EventFields, hostID int64) (*domain.Event, error) {
	f.record("CreateEvent", 0, hostID, 0)
	f.lastField = fields
	if f.err != nil {
		return nil, f.err
	}
	return f.event(), nil
}

func (f *fakeEventService) InviteUser(ctx context.Context, eventID, userID int64) (*domain.Event, error) {
	f.record("InviteUser", eventID, 0, userID)
	return f.event(), f.err
}

func (f *fakeEventService) MarkInviteRead(ctx context.Context, eventID, userID int64) (*domain.Event, error) {
	f.record("MarkInviteRead", eventID, 0, userID)
	if f.err != nil {
		return nil, f.err
	}
	return f.event(), nil
}

func (f *fakeEventService) RequestToJoin(ctx context.Context, eventID, userID int64) (*domain.Event, bool, error) {
	f.record("RequestToJoin", eventID, 0, userID)
	if f.err != nil {
		return nil, false, f.err
	}
	return f.event(), f.created, nil
}

func (f *fakeEventService) AcceptRequest(ctx context.Context, eventID, userID int64) (*domain.Event, error) {
	f.record("AcceptRequest", eventID, 0, userID)
	return f.event(), f.err
}

func (f *fakeEventService) DeclineRequest(ctx context.Context, eventID, userID int64) (*domain.Event, error) {
	f.record("DeclineRequest", eventID, 0, userID)
	return f.event(), f.err
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID int64) error {
	f.record("DeleteEvent", eventID, 0, 0)
	return f.err
}

func (f *fakeEventService) InvitableUsersAsHost(ctx context.Context, eventID, actorID int64) ([]domain.User, error) {
	f.record("InvitableUsersAsHost", eventID, actorID, 0)
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

func (f *fakeEventService) InviteUserAsHost(ctx context.Context, eventID, actorID, userID int64) (*domain.Event, error) {
	f.record("InviteUserAsHost", eventID, actorID, userID)
	if f.err != nil {
		return nil, f.err
	}
	return f.event(), nil
}

func (f *fakeEventService) AcceptRequestAsHost(ctx context.Context, eventID, actorID, userID int64) (*domain.Event, error) {
	f.record("AcceptRequestAsHost", eventID, actorID, userID)
	if f.err != nil {
		return nil, f.err
	}
	return f.event(), nil
}

func (f *fakeEventService) DeclineRequestAsHost(ctx context.Context, eventID, actorID, userID int64) (*domain.Event, error) {
	f.record("DeclineRequestAsHost", eventID, actorID, userID)
	if f.err != nil {
		return nil, f.err
	}
	return f.event(), nil
}

func (f *fakeEventService) DeleteEventAsHost(ctx context.Context, eventID, actorID int64) error {
	f.record("DeleteEventAsHost", eventID, actorID, 0)
	return f.err
}

func (f *fakeEventService) Notifications(ctx context.Context, viewerID int64) (*domain.Notifications, error) {
	f.record("Notifications", 0, viewerID, 0)
	if f.err != nil {
		return nil, f.err
	}
	return f.notifs, nil
}

// fakeViewerService implements domain.ViewerService for handler tests.
type fakeViewerService struct {
	switched  *domain.User
	err       error
	lastScope string
	lastUser  int64
}

func (f *fakeViewerService) Current(ctx context.Context, scope string) (*domain.User, error) {
	return f.switched, f.err
}

func (f *fakeViewerService) Switch(ctx context.Context, scope string, userID int64) (*domain.User, error) {
	f.lastScope, f.lastUser = scope, userID
	if f.err != nil {
		return nil, f.err
	}
	return f.switched, nil
}

func hostedBy(host domain.User) *domain.Event {
	e := domain.NewEvent(domain.EventFields{
		Title: "Tech Meetup", Description: "d", Date: "2024-09-12", Time: "19:00", Location: "Tech Hub",
	}, host.ID, testTime)
	e.ID = 3
	return e
}

// asViewer attaches a resolved viewer to req, as middleware.ResolveViewer does.
func asViewer(req *http.Request, u domain.User) *http.Request {
	return req.WithContext(middleware.SetViewer(req.Context(), "scope-1", &u))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	return envelope
}

func decodeData[T any](t *testing.T, envelope helpers.APIResponse) T {
	t.Helper()
	require.Nil(t, envelope.Error, "success response must have error nil")
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
