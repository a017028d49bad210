package runtime

import (
	"org-relay/domain"
	"org-relay/errors"
	"sync"

	"github.com/samber/lo"
)

type Set map[domain.ConnectionID]struct{}

// Registry is the in-memory set of live authenticated connections.
// Every mutation and lookup goes through a single RWMutex;
// read methods return copies so callers never iterate shared state.
type Registry struct {
	mu         sync.RWMutex
	sessions   map[domain.ConnectionID]*domain.Connection // connection -> session
	subjects   map[string]domain.ConnectionID             // latest connection of a subject
	orgMembers map[string]Set                             // organization -> connections
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:   make(map[domain.ConnectionID]*domain.Connection),
		subjects:   make(map[string]domain.ConnectionID),
		orgMembers: make(map[string]Set),
	}
}

// Register adds a connection under its subject and, when it has one, its organization.
// A later connection of the same subject takes over subject lookups.
func (r *Registry) Register(conn *domain.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.register(conn)
}

// Replace registers conn and, under the same lock, removes the connection its subject
// had until now. The removed connection is returned so its leave can be announced.
func (r *Registry) Replace(conn *domain.Connection) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[conn.ID]; exists {
		return nil, errors.ErrDuplicateRegistration
	}

	var previous *domain.Connection
	if id, ok := r.subjects[conn.Identity.SubjectID]; ok {
		previous, _ = r.unregister(id)
	}
	return previous, r.register(conn)
}

func (r *Registry) register(conn *domain.Connection) error {
	if _, exists := r.sessions[conn.ID]; exists {
		return errors.ErrDuplicateRegistration
	}

	r.sessions[conn.ID] = conn
	r.subjects[conn.Identity.SubjectID] = conn.ID

	if org := conn.Identity.OrganizationID; org != "" {
		if _, ok := r.orgMembers[org]; !ok {
			r.orgMembers[org] = make(Set)
		}
		r.orgMembers[org][conn.ID] = struct{}{}
	}
	return nil
}

// Unregister removes a connection from every index.
// It is a no-op when the connection is already gone; the bool tells whether anything was removed.
func (r *Registry) Unregister(id domain.ConnectionID) (*domain.Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.unregister(id)
}

func (r *Registry) unregister(id domain.ConnectionID) (*domain.Connection, bool) {
	conn, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	delete(r.sessions, id)

	// Only forget the subject if it still points at this connection
	if current, ok := r.subjects[conn.Identity.SubjectID]; ok && current == id {
		delete(r.subjects, conn.Identity.SubjectID)
	}

	org := conn.Identity.OrganizationID
	if members, ok := r.orgMembers[org]; ok {
		delete(members, id)

		// If no one is left in the organization, remove the entry entirely
		if len(members) == 0 {
			delete(r.orgMembers, org)
		}
	}
	return conn, true
}

func (r *Registry) FindBySubject(subjectID string) (*domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.subjects[subjectID]
	if !ok {
		return nil, false
	}
	conn, ok := r.sessions[id]
	return conn, ok
}

// Contains reports whether the connection is currently registered.
func (r *Registry) Contains(id domain.ConnectionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sessions[id]
	return ok
}

// ListByOrganization returns the connections of an organization at the time of the call.
func (r *Registry) ListByOrganization(organizationID string) []*domain.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.orgMembers[organizationID]
	if !ok {
		return nil
	}
	connections := make([]*domain.Connection, 0, len(members))
	for id := range members {
		if conn, exists := r.sessions[id]; exists {
			connections = append(connections, conn)
		}
	}
	return connections
}

// SnapshotAll copies every live connection. It scans the whole registry,
// which membership sizes keep cheap; callers answering "who is online" use it.
func (r *Registry) SnapshotAll() []*domain.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Values(r.sessions)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
