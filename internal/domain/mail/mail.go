// Package mail defines the outbound email port.
package mail

//go:generate mockgen -source=mail.go -destination=mocks/mock_mail.go -package=mocks

import "context"

type Template string

const (
	TemplateVerifyEmail          Template = "verify_email"
	TemplatePasswordReset        Template = "password_reset"
	TemplatePasswordResetSuccess Template = "password_reset_success"
	TemplatePasswordChanged      Template = "password_changed"
)

type Message struct {
	From     string
	To       string
	Subject  string
	Template Template
	Data     map[string]any
}

// Sender delivers a message. Implementations own retry and queueing.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
