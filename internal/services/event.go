package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"eventcircle/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	publisher      domain.MembershipPublisher
	logger         *slog.Logger
	contextTimeout time.Duration
	retry          RetryPolicy
	inflight       singleflight.Group
	now            func() time.Time
}

func NewEventService(eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	publisher domain.MembershipPublisher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		publisher:      publisher,
		logger:         logger,
		contextTimeout: timeout,
		retry:          DefaultRetryPolicy,
		now:            time.Now,
	}
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, failure("list events", err)
	}
	return events, nil
}

func (s *eventService) SearchEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	events, err := s.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, failure(fmt.Sprintf("get event %d", eventID), err)
	}
	return event, nil
}

func (s *eventService) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, failure("list users", err)
	}
	return users, nil
}

func (s *eventService) InvitableUsers(ctx context.Context, eventID int64) ([]domain.User, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return domain.InvitableUsers(event, users), nil
}

func (s *eventService) CreateEvent(ctx context.Context, fields domain.EventFields, hostID int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.lookupUser(ctx, hostID); err != nil {
		return nil, err
	}

	event := domain.NewEvent(fields, hostID, s.now())
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, failure("create event", err)
	}
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "host_id", hostID)
	s.publish(ctx, domain.ChangeEventCreated, event.ID, 0)
	return event, nil
}

func (s *eventService) InviteUser(ctx context.Context, eventID, userID int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	invitee, err := s.lookupUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	event, _, err := s.mutate(ctx, "invite", eventID, userID,
		func(e *domain.Event) (bool, error) { return e.AddInvitee(*invitee) },
		func(ctx context.Context, e *domain.Event) {
			s.logger.InfoContext(ctx, "user invited", "event_id", eventID, "user_id", userID)
			s.publish(ctx, domain.ChangeMemberInvited, eventID, userID)
			s.sendInvitation(ctx, e, invitee)
		})
	return event, err
}

func (s *eventService) MarkInviteRead(ctx context.Context, eventID, userID int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, _, err := s.mutate(ctx, "mark-read", eventID, userID,
		func(e *domain.Event) (bool, error) { return e.MarkInviteRead(userID), nil },
		func(ctx context.Context, e *domain.Event) {
			s.publish(ctx, domain.ChangeInviteRead, eventID, userID)
		})
	return event, err
}

func (s *eventService) RequestToJoin(ctx context.Context, eventID, userID int64) (*domain.Event, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	requester, err := s.lookupUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return s.mutate(ctx, "request", eventID, userID,
		func(e *domain.Event) (bool, error) { return e.AddRequest(*requester) },
		func(ctx context.Context, e *domain.Event) {
			s.logger.InfoContext(ctx, "join requested", "event_id", eventID, "user_id", userID)
			s.publish(ctx, domain.ChangeRequestCreated, eventID, userID)
		})
}

func (s *eventService) AcceptRequest(ctx context.Context, eventID, userID int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, _, err := s.mutate(ctx, "accept", eventID, userID,
		func(e *domain.Event) (bool, error) { return e.AcceptRequest(userID), nil },
		func(ctx context.Context, e *domain.Event) {
			s.logger.InfoContext(ctx, "request accepted", "event_id", eventID, "user_id", userID)
			s.publish(ctx, domain.ChangeRequestAccepted, eventID, userID)
			s.sendAccepted(ctx, e, userID)
		})
	return event, err
}

func (s *eventService) DeclineRequest(ctx context.Context, eventID, userID int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, _, err := s.mutate(ctx, "decline", eventID, userID,
		func(e *domain.Event) (bool, error) { return e.RemoveRequest(userID), nil },
		func(ctx context.Context, e *domain.Event) {
			s.logger.InfoContext(ctx, "request declined", "event_id", eventID, "user_id", userID)
			s.publish(ctx, domain.ChangeRequestDeclined, eventID, userID)
		})
	return event, err
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return failure(fmt.Sprintf("delete event %d", eventID), err)
	}
	s.logger.InfoContext(ctx, "event deleted", "event_id", eventID)
	s.publish(ctx, domain.ChangeEventDeleted, eventID, 0)
	return nil
}

func (s *eventService) InvitableUsersAsHost(ctx context.Context, eventID, actorID int64) ([]domain.User, error) {
	if err := s.authorizeHost(ctx, eventID, actorID); err != nil {
		return nil, err
	}
	return s.InvitableUsers(ctx, eventID)
}

func (s *eventService) InviteUserAsHost(ctx context.Context, eventID, actorID, userID int64) (*domain.Event, error) {
	if err := s.authorizeHost(ctx, eventID, actorID); err != nil {
		return nil, err
	}
	return s.InviteUser(ctx, eventID, userID)
}

func (s *eventService) AcceptRequestAsHost(ctx context.Context, eventID, actorID, userID int64) (*domain.Event, error) {
	if err := s.authorizeHost(ctx, eventID, actorID); err != nil {
		return nil, err
	}
	return s.AcceptRequest(ctx, eventID, userID)
}

func (s *eventService) DeclineRequestAsHost(ctx context.Context, eventID, actorID, userID int64) (*domain.Event, error) {
	if err := s.authorizeHost(ctx, eventID, actorID); err != nil {
		return nil, err
	}
	return s.DeclineRequest(ctx, eventID, userID)
}

func (s *eventService) DeleteEventAsHost(ctx context.Context, eventID, actorID int64) error {
	if err := s.authorizeHost(ctx, eventID, actorID); err != nil {
		return err
	}
	return s.DeleteEvent(ctx, eventID)
}

func (s *eventService) Notifications(ctx context.Context, viewerID int64) (*domain.Notifications, error) {
	events, err := s.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	return domain.CollectNotifications(events, viewerID), nil
}

type mutation struct {
	event   *domain.Event
	changed bool
}

// mutate applies fn to eventID through the repository, retrying transient
// failures. Identical in-flight calls share one execution, which runs detached
// from any single caller's cancellation. Only the caller that executed the
// change reports changed, and after runs once per applied change.
func (s *eventService) mutate(ctx context.Context, action string, eventID, userID int64,
	fn domain.Transition, after func(ctx context.Context, e *domain.Event),
) (*domain.Event, bool, error) {
	key := fmt.Sprintf("%s:%d:%d", action, eventID, userID)
	executed := false
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		executed = true
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.contextTimeout)
		defer cancel()

		var m mutation
		err := Retry(ctx, s.retry, func(ctx context.Context) error {
			e, changed, err := s.eventRepo.Update(ctx, eventID, fn)
			if err != nil {
				return err
			}
			m = mutation{event: e, changed: changed}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if m.changed {
			after(ctx, m.event)
		}
		return m, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, false, failure(fmt.Sprintf("%s on event %d", action, eventID), ctx.Err())
	}
	if res.Err != nil {
		return nil, false, failure(fmt.Sprintf("%s on event %d", action, eventID), res.Err)
	}
	m := res.Val.(mutation)
	if !executed {
		s.logger.DebugContext(ctx, "duplicate submission coalesced", "action", action, "event_id", eventID, "user_id", userID)
		return m.event.Clone(), false, nil
	}
	if res.Shared {
		return m.event.Clone(), m.changed, nil
	}
	return m.event, m.changed, nil
}

func (s *eventService) authorizeHost(ctx context.Context, eventID, actorID int64) error {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if !domain.IsHost(event, actorID) {
		return fmt.Errorf("user %d is not the host of event %d: %w", actorID, eventID, domain.ErrForbidden)
	}
	return nil
}

func (s *eventService) lookupUser(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, failure(fmt.Sprintf("get user %d", userID), err)
	}
	return u, nil
}

func (s *eventService) publish(ctx context.Context, t domain.ChangeType, eventID, userID int64) {
	change := domain.MembershipChange{Type: t, EventID: eventID, UserID: userID, At: s.now()}
	if err := s.publisher.Publish(ctx, change); err != nil {
		s.logger.WarnContext(ctx, "publish membership change failed", "type", t, "event_id", eventID, "err", err)
	}
}

func (s *eventService) hostName(ctx context.Context, e *domain.Event) string {
	host, err := s.userRepo.GetByID(ctx, e.HostID)
	if err != nil || host == nil || host.Name == "" {
		return "The host"
	}
	return host.Name
}

func (s *eventService) sendInvitation(ctx context.Context, e *domain.Event, invitee *domain.User) {
	data := &domain.EventInvitationEmailData{
		Email:       invitee.Email,
		InviteeName: invitee.Name,
		HostName:    s.hostName(ctx, e),
		EventTitle:  e.Title,
		EventDate:   e.Date,
		EventTime:   e.Time,
		Location:    e.Location,
	}
	if err := s.emailService.SendEventInvitation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "invitation email failed", "event_id", e.ID, "user_id", invitee.ID, "err", err)
	}
}

func (s *eventService) sendAccepted(ctx context.Context, e *domain.Event, userID int64) {
	var requester *domain.User
	for _, u := range e.Invitees {
		if u.ID == userID {
			u := u
			requester = &u
			break
		}
	}
	if requester == nil {
		return
	}
	data := &domain.RequestAcceptedEmailData{
		Email:         requester.Email,
		RequesterName: requester.Name,
		HostName:      s.hostName(ctx, e),
		EventTitle:    e.Title,
		EventDate:     e.Date,
		EventTime:     e.Time,
		Location:      e.Location,
	}
	if err := s.emailService.SendRequestAccepted(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "acceptance email failed", "event_id", e.ID, "user_id", userID, "err", err)
	}
}

// failure keeps domain sentinels matchable and folds deadlines into ErrTransient.
func failure(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrTransient):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, domain.MarkTransient(err))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
