package domain

import "fmt"

// Relationship is a user's standing with respect to one event.
type Relationship string

const (
	RelationshipStranger  Relationship = "stranger"
	RelationshipRequester Relationship = "requester"
	RelationshipAttendee  Relationship = "attendee"
	RelationshipHost      Relationship = "host"
)

// Action is something the presentation layer may offer a viewer for an event.
type Action string

const (
	ActionRequestToJoin   Action = "REQUEST_TO_JOIN"
	ActionViewAsAttendee  Action = "VIEW_AS_ATTENDEE"
	ActionViewAsRequester Action = "VIEW_AS_REQUESTER"
	ActionManageAsHost    Action = "MANAGE_AS_HOST"
)

func IsHost(e *Event, userID int64) bool {
	return e.HostID == userID
}

func IsInvited(e *Event, userID int64) bool {
	return indexOf(e.Invitees, userID) >= 0
}

func HasRequested(e *Event, userID int64) bool {
	return indexOf(e.Requests, userID) >= 0
}

// HasUnreadInvite reports whether userID has not yet acknowledged their invitation.
func HasUnreadInvite(e *Event, userID int64) bool {
	return indexOf(e.UnreadInvites, userID) >= 0
}

// RelationshipOf resolves the single primary relationship, by priority
// host > attendee > requester > stranger.
func RelationshipOf(e *Event, userID int64) Relationship {
	switch {
	case IsHost(e, userID):
		return RelationshipHost
	case IsInvited(e, userID):
		return RelationshipAttendee
	case HasRequested(e, userID):
		return RelationshipRequester
	default:
		return RelationshipStranger
	}
}

// AvailableActions returns the actions valid for userID on e. Exactly one primary action is returned.
func AvailableActions(e *Event, userID int64) []Action {
	switch RelationshipOf(e, userID) {
	case RelationshipHost:
		return []Action{ActionManageAsHost}
	case RelationshipAttendee:
		return []Action{ActionViewAsAttendee}
	case RelationshipRequester:
		return []Action{ActionViewAsRequester}
	default:
		return []Action{ActionRequestToJoin}
	}
}

// InvitableUsers filters users down to those who are neither the host nor already invited.
func InvitableUsers(e *Event, users []User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if IsHost(e, u.ID) || IsInvited(e, u.ID) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// AddInvitee confirms u as an attendee with an unread invitation.
// A pending request from u is dropped since a user is never both requester and invitee.
func (e *Event) AddInvitee(u User) (bool, error) {
	if IsHost(e, u.ID) {
		return false, fmt.Errorf("invite host %d: %w", u.ID, ErrInvalidState)
	}
	if IsInvited(e, u.ID) {
		return false, nil
	}
	e.Requests = without(e.Requests, u.ID)
	e.Invitees = append(e.Invitees, u)
	if !HasUnreadInvite(e, u.ID) {
		e.UnreadInvites = append(e.UnreadInvites, u)
	}
	return true, nil
}

// MarkInviteRead acknowledges userID's invitation. Membership is unaffected.
func (e *Event) MarkInviteRead(userID int64) bool {
	if !HasUnreadInvite(e, userID) {
		return false
	}
	e.UnreadInvites = without(e.UnreadInvites, userID)
	return true
}

// AddRequest records u's ask to join. Hosts and invitees cannot request.
func (e *Event) AddRequest(u User) (bool, error) {
	if IsHost(e, u.ID) {
		return false, fmt.Errorf("host %d requesting own event: %w", u.ID, ErrInvalidState)
	}
	if IsInvited(e, u.ID) {
		return false, fmt.Errorf("user %d already attending: %w", u.ID, ErrInvalidState)
	}
	if HasRequested(e, u.ID) {
		return false, nil
	}
	e.Requests = append(e.Requests, u)
	return true, nil
}

// AcceptRequest moves a pending requester into the invitees with an unread invitation.
// It is a no-op unless userID has requested and is not yet invited.
func (e *Event) AcceptRequest(userID int64) bool {
	i := indexOf(e.Requests, userID)
	if i < 0 || IsInvited(e, userID) {
		return false
	}
	u := e.Requests[i]
	e.Requests = without(e.Requests, userID)
	e.Invitees = append(e.Invitees, u)
	if !HasUnreadInvite(e, userID) {
		e.UnreadInvites = append(e.UnreadInvites, u)
	}
	return true
}

// RemoveRequest drops userID's pending request, if any.
func (e *Event) RemoveRequest(userID int64) bool {
	if !HasRequested(e, userID) {
		return false
	}
	e.Requests = without(e.Requests, userID)
	return true
}

func indexOf(users []User, id int64) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// without returns a fresh slice; the input is never modified.
func without(users []User, id int64) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}
