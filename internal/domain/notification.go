package domain

// NotificationCounts is the unread badge for one viewer.
// swagger:model NotificationCounts
type NotificationCounts struct {
	Requests int `json:"requests"`
	Invites  int `json:"invites"`
	Total    int `json:"total"`
}

// Notifications is the viewer's notification panel.
// swagger:model Notifications
type Notifications struct {
	Counts NotificationCounts `json:"counts"`
	// PendingInvites are events where the viewer has not acknowledged an invitation.
	PendingInvites []*Event `json:"pending_invites"`
	// PendingRequests are events the viewer hosts that have join requests waiting.
	PendingRequests []*Event `json:"pending_requests"`
}

// CountNotifications folds the event list into unread counts for viewerID.
// Requests counts pending requests on hosted events; Invites counts the viewer's unread invitations.
func CountNotifications(events []*Event, viewerID int64) NotificationCounts {
	var c NotificationCounts
	for _, e := range events {
		if e.HostID == viewerID {
			c.Requests += len(e.Requests)
		}
		for _, u := range e.UnreadInvites {
			if u.ID == viewerID {
				c.Invites++
			}
		}
	}
	c.Total = c.Requests + c.Invites
	return c
}

// CollectNotifications returns the counts together with the events behind them.
func CollectNotifications(events []*Event, viewerID int64) *Notifications {
	n := &Notifications{
		Counts:          CountNotifications(events, viewerID),
		PendingInvites:  []*Event{},
		PendingRequests: []*Event{},
	}
	for _, e := range events {
		if HasUnreadInvite(e, viewerID) {
			n.PendingInvites = append(n.PendingInvites, e)
		}
		if e.HostID == viewerID && len(e.Requests) > 0 {
			n.PendingRequests = append(n.PendingRequests, e)
		}
	}
	return n
}
