package runtime

import (
	"fmt"
	"org-relay/domain"
	"org-relay/errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newConnection(subjectID, orgID string) *domain.Connection {
	return domain.NewConnection(domain.Identity{SubjectID: subjectID, OrganizationID: orgID}, newRecordingSink())
}

func TestRegistry_Register_One_Organization_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newConnection("u1", "org1")

	// Given no connection is registered
	req.Zero(registry.Count())
	req.Empty(registry.SnapshotAll())

	// When a connection registers
	req.NoError(registry.Register(conn))

	// Then it can be found by subject and by organization
	found, ok := registry.FindBySubject("u1")
	req.True(ok)
	req.Equal(conn, found)
	req.Equal([]*domain.Connection{conn}, registry.ListByOrganization("org1"))
	req.True(registry.Contains(conn.ID))
	req.Equal(1, registry.Count())
	req.True(conn.JoinedOrganizationChannel)
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newConnection("u1", "org1")
	req.NoError(registry.Register(conn))

	// When the same connection registers twice
	err := registry.Register(conn)

	// Then the second registration is refused and the registry is untouched
	req.ErrorIs(err, errors.ErrDuplicateRegistration)
	req.Equal(1, registry.Count())
	req.Len(registry.ListByOrganization("org1"), 1)
}

func TestRegistry_Register_Personal_Account(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newConnection("u1", "")

	req.NoError(registry.Register(conn))

	// Then the connection is online but belongs to no organization channel
	_, ok := registry.FindBySubject("u1")
	req.True(ok)
	req.False(conn.JoinedOrganizationChannel)
	req.Empty(registry.ListByOrganization(""))
	req.Len(registry.SnapshotAll(), 1)
}

func TestRegistry_ListByOrganization_Keeps_Organizations_Apart(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	u1, u2, u3 := newConnection("u1", "org1"), newConnection("u2", "org1"), newConnection("u3", "org2")
	for _, conn := range []*domain.Connection{u1, u2, u3} {
		req.NoError(registry.Register(conn))
	}

	req.ElementsMatch([]*domain.Connection{u1, u2}, registry.ListByOrganization("org1"))
	req.ElementsMatch([]*domain.Connection{u3}, registry.ListByOrganization("org2"))
	for _, conn := range registry.ListByOrganization("org1") {
		req.Equal("org1", conn.Identity.OrganizationID)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	u1, u2 := newConnection("u1", "org1"), newConnection("u2", "org1")
	req.NoError(registry.Register(u1))
	req.NoError(registry.Register(u2))

	// When a connection unregisters
	removed, ok := registry.Unregister(u1.ID)

	// Then only the other connection is left
	req.True(ok)
	req.Equal(u1, removed)
	req.Equal([]*domain.Connection{u2}, registry.ListByOrganization("org1"))
	_, ok = registry.FindBySubject("u1")
	req.False(ok)
	req.False(registry.Contains(u1.ID))
}

func TestRegistry_Unregister_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newConnection("u1", "org1")
	req.NoError(registry.Register(conn))

	_, first := registry.Unregister(conn.ID)
	_, second := registry.Unregister(conn.ID)

	// Then the second call reports nothing removed and the organization is gone
	req.True(first)
	req.False(second)
	req.Zero(registry.Count())
	req.Nil(registry.ListByOrganization("org1"))
	req.Empty(registry.orgMembers)
}

func TestRegistry_Later_Connection_Takes_Over_Subject(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first, second := newConnection("u1", "org1"), newConnection("u1", "org1")
	req.NoError(registry.Register(first))
	req.NoError(registry.Register(second))

	found, _ := registry.FindBySubject("u1")
	req.Equal(second, found)

	// When the older connection leaves, the newer one is still found
	registry.Unregister(first.ID)
	found, ok := registry.FindBySubject("u1")
	req.True(ok)
	req.Equal(second, found)
}

func TestRegistry_SnapshotAll_Is_A_Copy(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newConnection("u1", "org1")
	req.NoError(registry.Register(conn))

	snapshot := registry.SnapshotAll()
	registry.Unregister(conn.ID)
	req.NoError(registry.Register(newConnection("u2", "org1")))

	// Then the snapshot still reflects the past
	req.Equal([]*domain.Connection{conn}, snapshot)
}

func TestRegistry_Concurrent_Register_Unregister(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := newConnection(fmt.Sprintf("u%d", i), fmt.Sprintf("org%d", i%3))
			if err := registry.Register(conn); err != nil {
				t.Error(err)
			}
			_ = registry.SnapshotAll()
			_ = registry.ListByOrganization(conn.Identity.OrganizationID)
			if i%2 == 0 {
				registry.Unregister(conn.ID)
			}
		}(i)
	}
	wg.Wait()

	req.Equal(25, registry.Count())
	total := 0
	for i := 0; i < 3; i++ {
		total += len(registry.ListByOrganization(fmt.Sprintf("org%d", i)))
	}
	req.Equal(25, total)
}

func TestRegistry_Replace(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first, second := newConnection("u1", "org1"), newConnection("u1", "org1")

	// Given u1 has no connection yet
	previous, err := registry.Replace(first)
	req.NoError(err)
	req.Nil(previous)

	// When u1 connects again
	previous, err = registry.Replace(second)

	// Then the first connection is handed back and gone from every index
	req.NoError(err)
	req.Equal(first, previous)
	req.False(registry.Contains(first.ID))
	req.Equal([]*domain.Connection{second}, registry.ListByOrganization("org1"))
	found, ok := registry.FindBySubject("u1")
	req.True(ok)
	req.Equal(second, found)

	// And replacing with an already registered connection is refused untouched
	previous, err = registry.Replace(second)
	req.ErrorIs(err, errors.ErrDuplicateRegistration)
	req.Nil(previous)
	req.Equal(1, registry.Count())
}

func TestRegistry_Concurrent_Replace_Keeps_One_Connection_Per_Subject(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := registry.Replace(newConnection("u1", "org1")); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	req.Equal(1, registry.Count())
	req.Len(registry.ListByOrganization("org1"), 1)
}
