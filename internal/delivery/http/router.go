package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventcircle/internal/delivery/http/controllers"
)

// Controllers groups the handlers served by the router.
type Controllers struct {
	Events        *controllers.EventController
	Membership    *controllers.MembershipController
	Users         *controllers.UserController
	Viewer        *controllers.ViewerController
	Notifications *controllers.NotificationController
}

// NewRouter initializes the HTTP router with all application routes.
// withViewer resolves the acting user for routes that need one.
func NewRouter(c Controllers, withViewer func(http.HandlerFunc) http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()

	// Users and viewer
	mux.HandleFunc("GET /users", c.Users.ListUsers)
	mux.HandleFunc("GET /viewer", withViewer(c.Viewer.GetViewer))
	mux.HandleFunc("PUT /viewer", withViewer(c.Viewer.SwitchViewer))
	mux.HandleFunc("GET /notifications", withViewer(c.Notifications.ListNotifications))

	// Events
	mux.HandleFunc("GET /events", withViewer(c.Events.ListEvents))
	mux.HandleFunc("POST /events", withViewer(c.Events.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", withViewer(c.Events.GetEvent))
	mux.HandleFunc("DELETE /events/{eventID}", withViewer(c.Events.DeleteEvent))

	// Membership
	mux.HandleFunc("GET /events/{eventID}/invitable", withViewer(c.Membership.ListInvitableUsers))
	mux.HandleFunc("POST /events/{eventID}/invitations", withViewer(c.Membership.InviteUser))
	mux.HandleFunc("POST /events/{eventID}/invitations/read", withViewer(c.Membership.MarkInviteRead))
	mux.HandleFunc("POST /events/{eventID}/requests", withViewer(c.Membership.RequestToJoin))
	mux.HandleFunc("POST /events/{eventID}/requests/{userID}/accept", withViewer(c.Membership.AcceptRequest))
	mux.HandleFunc("POST /events/{eventID}/requests/{userID}/decline", withViewer(c.Membership.DeclineRequest))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
