package ws

import (
	"encoding/json"
	"fmt"

	"org-relay/domain/event"
)

// Envelope is the JSON frame exchanged with clients: {"event": "...", "data": ...}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// messagePayload is the outbound "message" data.
type messagePayload struct {
	ID        string          `json:"id"`
	From      string          `json:"from"`
	Body      string          `json:"body"`
	Time      json.RawMessage `json:"time,omitempty"`
	Recipient string          `json:"recipient"`
}

// Encode turns an outbound event into a text frame.
// usersChanged carries its two arguments as an array: ["<subject>", "join"|"leave"].
func Encode(e event.Event) ([]byte, error) {
	var data any
	switch evt := e.(type) {
	case event.Message:
		data = messagePayload{
			ID:        evt.ID,
			From:      evt.From,
			Body:      evt.Body,
			Time:      evt.Time,
			Recipient: evt.Recipient,
		}
	case event.UsersChanged:
		data = []string{evt.SubjectID, string(evt.State)}
	case event.AuthError:
		return json.Marshal(Envelope{Event: string(evt.Name())})
	default:
		return nil, fmt.Errorf("unsupported event %T", e)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: string(e.Name()), Data: raw})
}
