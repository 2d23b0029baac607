// Package event defines domain events and the port used to publish them.
package event

//go:generate mockgen -source=event.go -destination=mocks/mock_event.go -package=mocks

import (
	"context"
	"time"
)

type Type string

const (
	UserRegistered      Type = "user.registered"
	UserEmailVerified   Type = "user.email_verified"
	UserPasswordChanged Type = "user.password_changed"
	UserPasswordReset   Type = "user.password_reset"
	UserDeleted         Type = "user.deleted"
	WishlistCreated     Type = "wishlist.created"
	WishlistDeleted     Type = "wishlist.deleted"
)

type Event struct {
	Type       Type      `json:"type"`
	UserID     int64     `json:"user_id"`
	Subject    string    `json:"subject,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}
