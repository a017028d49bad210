package runtime

import (
	"context"
	"log/slog"
	"org-relay/contract"
	"org-relay/domain"
)

// Router forwards one addressed message from its source connection to the recipient's connection.
type Router struct {
	registry contract.IRegistry
	log      *slog.Logger
}

func NewRouter(log *slog.Logger, registry contract.IRegistry) *Router {
	return &Router{registry: registry, log: log}
}

// Route delivers msg to msg.Recipient when all of the following hold, checked in order:
//  1. msg.From is the authenticated subject of source,
//  2. the recipient is connected,
//  3. both connections belong to the same organization.
//
// Otherwise the message is dropped. Drops are never reported to the sender.
// Delivery is fire-and-forget: a failed write on the destination is logged
// and the outcome stays Delivered.
func (r *Router) Route(ctx context.Context, source *domain.Connection, msg domain.Message) domain.Outcome {
	if msg.From != source.Identity.SubjectID {
		return r.drop(source, msg, domain.SenderMismatch)
	}

	destination, ok := r.registry.FindBySubject(msg.Recipient)
	if !ok {
		return r.drop(source, msg, domain.RecipientOffline)
	}

	// Two personal accounts share the empty organization
	if destination.Identity.OrganizationID != source.Identity.OrganizationID {
		return r.drop(source, msg, domain.CrossOrg)
	}

	if err := destination.Sink.Consume(ctx, msg.Outbound()); err != nil {
		r.log.Error("failed to push message to recipient",
			"message_id", msg.ID,
			"connection_id", destination.ID,
			"subject_id", destination.Identity.SubjectID,
			"error", err)
	}
	return domain.Delivered()
}

func (r *Router) drop(source *domain.Connection, msg domain.Message, reason domain.DropReason) domain.Outcome {
	r.log.Debug("Message dropped",
		"message_id", msg.ID,
		"connection_id", source.ID,
		"subject_id", source.Identity.SubjectID,
		"reason", reason)
	return domain.Dropped(reason)
}
