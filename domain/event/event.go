//go:generate go run go.uber.org/mock/mockgen -source=event.go -destination=../../mocks/mock_event.go -package=mocks
package event

import (
	"context"
	"encoding/json"
)

// Name is the wire name of an outbound event.
type Name string

const (
	MessageName      Name = "message"
	UsersChangedName Name = "usersChanged"
	AuthErrorName    Name = "auth_error"
)

type PresenceState string

const (
	Join  PresenceState = "join"
	Leave PresenceState = "leave"
)

// Event is anything the relay pushes to a connected client.
type Event interface {
	Name() Name
}

// Message is a routed direct message, as delivered to the recipient.
type Message struct {
	ID        string
	From      string
	Body      string
	Time      json.RawMessage
	Recipient string
}

func (Message) Name() Name { return MessageName }

// UsersChanged announces that a subject joined or left its organization channel.
type UsersChanged struct {
	SubjectID string
	State     PresenceState
}

func (UsersChanged) Name() Name { return UsersChangedName }

// AuthError tells the client to discard its session, re-authenticate and reconnect.
type AuthError struct{}

func (AuthError) Name() Name { return AuthErrorName }

// Sink is the outbound half of a transport connection.
// Consume must not block past ctx; Close is idempotent.
type Sink interface {
	Consume(ctx context.Context, e Event) error
	Close() error
}
