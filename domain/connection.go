package domain

import (
	"org-relay/domain/event"

	"github.com/google/uuid"
)

type ConnectionID string

func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

func (id ConnectionID) String() string {
	return string(id)
}

// Connection is one live, authenticated transport session.
// It is owned by the relay from handshake to disconnect.
type Connection struct {
	ID                        ConnectionID
	Identity                  Identity
	JoinedOrganizationChannel bool
	Sink                      event.Sink
}

func NewConnection(identity Identity, sink event.Sink) *Connection {
	return &Connection{
		ID:                        NewConnectionID(),
		Identity:                  identity,
		JoinedOrganizationChannel: identity.HasOrganization(),
		Sink:                      sink,
	}
}
