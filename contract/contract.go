//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"org-relay/domain"
	"org-relay/domain/event"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// TokenVerifier resolves an opaque bearer token against the identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.VerifiedToken, error)
}

type IGate interface {
	Authenticate(ctx context.Context, authorization string) (domain.Identity, error)
	StillValid(identity domain.Identity) bool
}

type IRegistry interface {
	Register(conn *domain.Connection) error
	Replace(conn *domain.Connection) (*domain.Connection, error)
	Unregister(id domain.ConnectionID) (*domain.Connection, bool)
	FindBySubject(subjectID string) (*domain.Connection, bool)
	Contains(id domain.ConnectionID) bool
	ListByOrganization(organizationID string) []*domain.Connection
	SnapshotAll() []*domain.Connection
	Count() int
}

type IBroadcaster interface {
	Announce(ctx context.Context, organizationID, subjectID string, state event.PresenceState)
}

type IRouter interface {
	Route(ctx context.Context, source *domain.Connection, msg domain.Message) domain.Outcome
}

type IRelay interface {
	Open(ctx context.Context, authorization string, sink event.Sink) (*domain.Connection, error)
	Deliver(ctx context.Context, conn *domain.Connection, inbound domain.InboundMessage) domain.Outcome
	Close(ctx context.Context, conn *domain.Connection)
	Online() []*domain.Connection
	Count() int
}

type IMembershipDirectory interface {
	ListMembers(ctx context.Context, organizationID string) ([]domain.Member, error)
}
