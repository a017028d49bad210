package runtime

import (
	"context"
	"log/slog"
	"org-relay/contract"
	"org-relay/domain/event"
)

// Broadcaster announces join and leave to every connection of an organization.
type Broadcaster struct {
	registry contract.IRegistry
	log      *slog.Logger
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

// Announce sends usersChanged(subjectID, state) to all members of organizationID,
// the subject's own connections included; filtering self events is the client's job.
// Personal accounts have no organization channel, so an empty organizationID is a no-op.
func (b *Broadcaster) Announce(ctx context.Context, organizationID, subjectID string, state event.PresenceState) {
	if organizationID == "" {
		return
	}

	evt := event.UsersChanged{SubjectID: subjectID, State: state}
	for _, conn := range b.registry.ListByOrganization(organizationID) {
		if err := conn.Sink.Consume(ctx, evt); err != nil {
			b.log.Warn("Failed to deliver presence event",
				"connection_id", conn.ID,
				"org_id", organizationID,
				"subject_id", subjectID,
				"state", state,
				"error", err)
		}
	}
}
