package ws

import (
	"context"
	"testing"

	"org-relay/domain/event"
	"org-relay/errors"

	"github.com/stretchr/testify/require"
)

func TestSink_Consume(t *testing.T) {
	ctx := context.Background()

	t.Run("should queue frames in order", func(t *testing.T) {
		req := require.New(t)
		sink := NewSink(2)

		req.NoError(sink.Consume(ctx, event.UsersChanged{SubjectID: "u1", State: event.Join}))
		req.NoError(sink.Consume(ctx, event.UsersChanged{SubjectID: "u1", State: event.Leave}))

		req.Contains(string(<-sink.send), "join")
		req.Contains(string(<-sink.send), "leave")
	})

	t.Run("should report a full buffer without blocking", func(t *testing.T) {
		req := require.New(t)
		sink := NewSink(1)

		req.NoError(sink.Consume(ctx, event.AuthError{}))
		err := sink.Consume(ctx, event.AuthError{})

		req.ErrorIs(err, errors.ErrSinkFull)
	})

	t.Run("should refuse frames once closed", func(t *testing.T) {
		req := require.New(t)
		sink := NewSink(4)

		req.NoError(sink.Close())
		req.NoError(sink.Close())
		err := sink.Consume(ctx, event.AuthError{})

		req.ErrorIs(err, errors.ErrSinkClosed)
		select {
		case <-sink.Done():
		default:
			req.Fail("sink should be done")
		}
	})
}
