// Package queue publishes auth activity events to the message broker for
// downstream consumers (notification, analytics). Publishing is best
// effort: a broker outage is logged and never fails the request that
// produced the event.
package queue

import "time"

// Queue the auth events are published to. Durable; consumers declare it
// with the same properties.
const AuthEventsQueue = "auth.events"

// Event types.
const (
	EventUserRegistered = "auth.user.registered"
	EventUserLoggedIn   = "auth.user.logged_in"
)

// AuthEvent is the JSON payload delivered to the broker.
type AuthEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}
