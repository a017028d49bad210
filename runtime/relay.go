package runtime

import (
	"context"
	"log/slog"
	"org-relay/contract"
	"org-relay/domain"
	"org-relay/domain/event"
	"org-relay/errors"
)

// Relay is the composition root of the relay core.
// It owns the registry and drives every connection through
// Connecting -> Active -> Closed, or Connecting -> Rejected.
type Relay struct {
	gate        contract.IGate
	registry    contract.IRegistry
	broadcaster contract.IBroadcaster
	router      contract.IRouter
	log         *slog.Logger
}

func NewRelay(log *slog.Logger, gate contract.IGate, registry contract.IRegistry,
	broadcaster contract.IBroadcaster, router contract.IRouter) *Relay {
	return &Relay{
		gate:        gate,
		registry:    registry,
		broadcaster: broadcaster,
		router:      router,
		log:         log,
	}
}

// New wires a relay around a fresh registry.
func New(log *slog.Logger, gate contract.IGate) *Relay {
	registry := NewRegistry()
	return NewRelay(log, gate, registry,
		NewBroadcaster(log, registry),
		NewRouter(log, registry))
}

// Open authenticates a new connection and admits it.
// On authentication failure the client gets auth_error, the sink is closed
// and the connection never reaches the registry.
// A subject that is already connected is superseded: its previous connection
// leaves and is closed before the new one joins.
func (r *Relay) Open(ctx context.Context, authorization string, sink event.Sink) (*domain.Connection, error) {
	identity, err := r.gate.Authenticate(ctx, authorization)
	if err != nil {
		r.reject(ctx, sink, err)
		return nil, err
	}

	conn := domain.NewConnection(identity, sink)
	previous, err := r.registry.Replace(conn)
	if err != nil {
		r.log.Error("Refusing connection registration",
			"connection_id", conn.ID,
			"subject_id", identity.SubjectID,
			"error", err)
		_ = sink.Close()
		return nil, err
	}

	if previous != nil {
		r.log.Info("Subject reconnected, closing previous connection",
			"subject_id", identity.SubjectID,
			"connection_id", previous.ID)
		r.broadcaster.Announce(ctx, previous.Identity.OrganizationID, previous.Identity.SubjectID, event.Leave)
		_ = previous.Sink.Close()
	}

	r.log.Info("Connection established",
		"connection_id", conn.ID,
		"subject_id", identity.SubjectID,
		"org_id", identity.OrganizationID)
	r.broadcaster.Announce(ctx, identity.OrganizationID, identity.SubjectID, event.Join)
	return conn, nil
}

// Deliver routes one inbound message of an active connection.
// Every failure is silent to the sender except an expired identity,
// which ends the connection with auth_error.
func (r *Relay) Deliver(ctx context.Context, conn *domain.Connection, inbound domain.InboundMessage) domain.Outcome {
	if !r.registry.Contains(conn.ID) {
		r.log.Warn("Message from a connection that is not registered", "connection_id", conn.ID)
		return domain.Dropped(domain.NotRegistered)
	}

	if !r.gate.StillValid(conn.Identity) {
		r.log.Info("Connection no longer authenticated",
			"connection_id", conn.ID,
			"subject_id", conn.Identity.SubjectID)
		r.Close(ctx, conn)
		r.reject(ctx, conn.Sink, errors.ErrExpiredToken)
		return domain.Dropped(domain.Unauthenticated)
	}

	if err := domain.ValidateInbound(inbound); err != nil {
		r.log.Debug("Malformed message dropped",
			"connection_id", conn.ID,
			"error", err)
		return domain.Dropped(domain.Malformed)
	}

	return r.router.Route(ctx, conn, inbound.ToMessage())
}

// Close ends an active connection. Transports may report a disconnect more than once;
// only the call that actually removes the connection announces leave.
func (r *Relay) Close(ctx context.Context, conn *domain.Connection) {
	removed, ok := r.registry.Unregister(conn.ID)
	if !ok {
		return
	}
	r.log.Info("Connection closed",
		"connection_id", removed.ID,
		"subject_id", removed.Identity.SubjectID)
	r.broadcaster.Announce(ctx, removed.Identity.OrganizationID, removed.Identity.SubjectID, event.Leave)
}

// Online lists every live connection at the time of the call.
func (r *Relay) Online() []*domain.Connection {
	return r.registry.SnapshotAll()
}

func (r *Relay) Count() int {
	return r.registry.Count()
}

func (r *Relay) reject(ctx context.Context, sink event.Sink, cause error) {
	if err := sink.Consume(ctx, event.AuthError{}); err != nil {
		r.log.Debug("Failed to emit auth_error", "error", err)
	}
	if err := sink.Close(); err != nil {
		r.log.Debug("Failed to close rejected connection", "error", err)
	}
	r.log.Info("Connection rejected", "reason", cause)
}
