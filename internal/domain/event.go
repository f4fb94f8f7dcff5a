package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Category classifies an event. The zero value means no category.
type Category string

const (
	CategorySocial       Category = "social"
	CategoryProfessional Category = "professional"
	CategoryEducational  Category = "educational"
	CategorySports       Category = "sports"
	CategoryCultural     Category = "cultural"
	CategoryFormal       Category = "formal"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategorySocial,
	CategoryProfessional,
	CategoryEducational,
	CategorySports,
	CategoryCultural,
	CategoryFormal,
}

// ParseCategory normalizes s and reports whether it names a known category.
// An empty string is a valid "no category".
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", true
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Event is a gathering hosted by one user.
// swagger:model Event
type Event struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Location      string    `json:"location"`
	Category      Category  `json:"category,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	HostID        int64     `json:"host_id"`
	Invitees      []User    `json:"invitees"`
	Requests      []User    `json:"requests"`
	UnreadInvites []User    `json:"unread_invites"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventFields are the host-supplied fields of a new event.
type EventFields struct {
	Title       string
	Description string
	Date        string
	Time        string
	Location    string
	Category    string
	ImageURL    string
}

// Validate returns a *ValidationError naming every missing required field and
// an unknown category, or nil.
func (f EventFields) Validate() error {
	var errs []string
	required := []struct {
		name, value string
	}{
		{"title", f.Title},
		{"description", f.Description},
		{"date", f.Date},
		{"time", f.Time},
		{"location", f.Location},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, r.name+" is required")
		}
	}
	if _, ok := ParseCategory(f.Category); !ok {
		errs = append(errs, fmt.Sprintf("category %q is not supported", f.Category))
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// NewEvent builds an event with empty membership lists. ID is set by the repository on create.
func NewEvent(f EventFields, hostID int64, createdAt time.Time) *Event {
	cat, _ := ParseCategory(f.Category)
	return &Event{
		Title:         strings.TrimSpace(f.Title),
		Description:   strings.TrimSpace(f.Description),
		Date:          strings.TrimSpace(f.Date),
		Time:          strings.TrimSpace(f.Time),
		Location:      strings.TrimSpace(f.Location),
		Category:      cat,
		ImageURL:      strings.TrimSpace(f.ImageURL),
		HostID:        hostID,
		Invitees:      []User{},
		Requests:      []User{},
		UnreadInvites: []User{},
		CreatedAt:     createdAt,
	}
}

// Clone returns a deep copy so a mutation never touches a record other readers hold.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.Invitees = append(make([]User, 0, len(e.Invitees)), e.Invitees...)
	c.Requests = append(make([]User, 0, len(e.Requests)), e.Requests...)
	c.UnreadInvites = append(make([]User, 0, len(e.UnreadInvites)), e.UnreadInvites...)
	return &c
}

// EventFilter narrows an event listing. Empty fields match everything.
type EventFilter struct {
	// Search is matched case-insensitively against title, description and location.
	Search string
	// Category "all" or "" matches any category.
	Category string
	// ParticipantID, when non-zero, keeps only events the user hosts or attends.
	ParticipantID int64
}

// Matches reports whether e passes the filter.
func (f EventFilter) Matches(e *Event) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(e.Title), q) &&
			!strings.Contains(strings.ToLower(e.Description), q) &&
			!strings.Contains(strings.ToLower(e.Location), q) {
			return false
		}
	}
	if c := strings.ToLower(strings.TrimSpace(f.Category)); c != "" && c != "all" {
		if string(e.Category) != c {
			return false
		}
	}
	if f.ParticipantID != 0 && !IsHost(e, f.ParticipantID) && !IsInvited(e, f.ParticipantID) {
		return false
	}
	return true
}

// Transition mutates a private copy of an event and reports whether it changed anything.
type Transition func(e *Event) (changed bool, err error)

// EventRepository defines the interface for event storage.
// Update loads the event, applies fn to a copy and persists the copy only when
// fn reports a change; it returns the resulting event either way.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	Update(ctx context.Context, id int64, fn Transition) (*Event, bool, error)
	Delete(ctx context.Context, id int64) error
}

// EventService defines the event store operations, membership transitions and reads.
type EventService interface {
	ListEvents(ctx context.Context) ([]*Event, error)
	SearchEvents(ctx context.Context, filter EventFilter) ([]*Event, error)
	GetEvent(ctx context.Context, eventID int64) (*Event, error)
	ListUsers(ctx context.Context) ([]User, error)
	InvitableUsers(ctx context.Context, eventID int64) ([]User, error)

	CreateEvent(ctx context.Context, fields EventFields, hostID int64) (*Event, error)
	InviteUser(ctx context.Context, eventID, userID int64) (*Event, error)
	MarkInviteRead(ctx context.Context, eventID, userID int64) (*Event, error)
	// RequestToJoin returns (event, created, err): created is false when the request already existed.
	RequestToJoin(ctx context.Context, eventID, userID int64) (*Event, bool, error)
	AcceptRequest(ctx context.Context, eventID, userID int64) (*Event, error)
	DeclineRequest(ctx context.Context, eventID, userID int64) (*Event, error)
	DeleteEvent(ctx context.Context, eventID int64) error

	// Host-only variants return ErrForbidden when actorID does not host the event.
	InvitableUsersAsHost(ctx context.Context, eventID, actorID int64) ([]User, error)
	InviteUserAsHost(ctx context.Context, eventID, actorID, userID int64) (*Event, error)
	AcceptRequestAsHost(ctx context.Context, eventID, actorID, userID int64) (*Event, error)
	DeclineRequestAsHost(ctx context.Context, eventID, actorID, userID int64) (*Event, error)
	DeleteEventAsHost(ctx context.Context, eventID, actorID int64) error

	Notifications(ctx context.Context, viewerID int64) (*Notifications, error)
}
