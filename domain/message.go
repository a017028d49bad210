// Package domain contains core concepts of the relay.
// This file defines direct messages and routing outcomes.
// Messages are transient: the relay never stores them.
package domain

import (
	"encoding/json"

	"org-relay/domain/event"
)

// Message is a client-supplied direct message.
// ID is opaque and never checked for uniqueness; Time is passed through verbatim.
type Message struct {
	ID        string          `json:"id" validate:"required"`
	From      string          `json:"from" validate:"required"`
	Body      string          `json:"body"`
	Time      json.RawMessage `json:"time,omitempty"`
	Recipient string          `json:"recipient,omitempty"`
}

// InboundMessage is the payload of an inbound "message" event.
// User is the recipient subject id.
type InboundMessage struct {
	User    string  `json:"user" validate:"required"`
	Content Message `json:"content"`
}

// ToMessage addresses the content to User.
func (m InboundMessage) ToMessage() Message {
	msg := m.Content
	msg.Recipient = m.User
	return msg
}

func (m Message) Outbound() event.Message {
	return event.Message{
		ID:        m.ID,
		From:      m.From,
		Body:      m.Body,
		Time:      m.Time,
		Recipient: m.Recipient,
	}
}

type DropReason string

const (
	SenderMismatch   DropReason = "sender_mismatch"
	RecipientOffline DropReason = "recipient_offline"
	CrossOrg         DropReason = "cross_org"
	Malformed        DropReason = "malformed"
	NotRegistered    DropReason = "not_registered"
	Unauthenticated  DropReason = "unauthenticated"
)

// Outcome is the result of routing one message.
// Drops are expected results, never errors, and are invisible to the sender.
type Outcome struct {
	Delivered bool
	Reason    DropReason
}

func Delivered() Outcome {
	return Outcome{Delivered: true}
}

func Dropped(reason DropReason) Outcome {
	return Outcome{Reason: reason}
}
