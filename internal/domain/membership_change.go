package domain

import (
	"context"
	"time"
)

// ChangeType names a membership transition published on the change feed.
type ChangeType string

const (
	ChangeEventCreated    ChangeType = "event.created"
	ChangeEventDeleted    ChangeType = "event.deleted"
	ChangeMemberInvited   ChangeType = "member.invited"
	ChangeInviteRead      ChangeType = "invite.read"
	ChangeRequestCreated  ChangeType = "request.created"
	ChangeRequestAccepted ChangeType = "request.accepted"
	ChangeRequestDeclined ChangeType = "request.declined"
)

// MembershipChange is one applied transition. UserID is zero for event-level changes.
// swagger:model MembershipChange
type MembershipChange struct {
	Type    ChangeType `json:"type"`
	EventID int64      `json:"event_id"`
	UserID  int64      `json:"user_id,omitempty"`
	At      time.Time  `json:"at"`
}

// MembershipPublisher broadcasts applied changes to other interested processes.
type MembershipPublisher interface {
	Publish(ctx context.Context, change MembershipChange) error
}
