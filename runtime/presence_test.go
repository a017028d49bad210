package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"org-relay/domain"
	"org-relay/domain/event"
	"org-relay/mocks"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBroadcaster_Announce(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx := context.Background()

	t.Run("should notify every member of the organization including the subject", func(t *testing.T) {
		req := require.New(t)
		registry := NewRegistry()
		u1, u2, u3 := newConnection("u1", "org1"), newConnection("u2", "org1"), newConnection("u3", "org2")
		for _, conn := range []*domain.Connection{u1, u2, u3} {
			req.NoError(registry.Register(conn))
		}
		broadcaster := NewBroadcaster(log, registry)

		broadcaster.Announce(ctx, "org1", "u1", event.Join)

		expected := []event.UsersChanged{{SubjectID: "u1", State: event.Join}}
		req.Equal(expected, u1.Sink.(*recordingSink).Presence())
		req.Equal(expected, u2.Sink.(*recordingSink).Presence())
		req.Empty(u3.Sink.(*recordingSink).Events())
	})

	t.Run("should do nothing for a personal account", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		registry := mocks.NewMockIRegistry(ctrl)
		broadcaster := NewBroadcaster(log, registry)

		// The registry is never consulted
		registry.EXPECT().ListByOrganization(gomock.Any()).Times(0)

		broadcaster.Announce(ctx, "", "u1", event.Join)
	})

	t.Run("should keep going when one member cannot be reached", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		registry := mocks.NewMockIRegistry(ctrl)
		broken := mocks.NewMockSink(ctrl)
		healthy := newRecordingSink()
		broadcaster := NewBroadcaster(log, registry)

		registry.EXPECT().ListByOrganization("org1").Return([]*domain.Connection{
			domain.NewConnection(domain.Identity{SubjectID: "u2", OrganizationID: "org1"}, broken),
			domain.NewConnection(domain.Identity{SubjectID: "u3", OrganizationID: "org1"}, healthy),
		}).Times(1)
		broken.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(fmt.Errorf("broken pipe")).Times(1)

		broadcaster.Announce(ctx, "org1", "u1", event.Leave)

		req.Equal([]event.UsersChanged{{SubjectID: "u1", State: event.Leave}}, healthy.Presence())
	})
}
