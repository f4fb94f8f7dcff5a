package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventInvitationEmailData holds data for the "you were invited" email.
type EventInvitationEmailData struct {
	Email       string
	InviteeName string
	HostName    string
	EventTitle  string
	EventDate   string
	EventTime   string
	Location    string
}

// RequestAcceptedEmailData holds data for the "your request was accepted" email.
type RequestAcceptedEmailData struct {
	Email         string
	RequesterName string
	HostName      string
	EventTitle    string
	EventDate     string
	EventTime     string
	Location      string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendEventInvitation(ctx context.Context, data *EventInvitationEmailData) error
	SendRequestAccepted(ctx context.Context, data *RequestAcceptedEmailData) error
}
