package workers

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"org-relay/contract"
	"time"
)

// ServerWorker serves HTTP until its context ends, then shuts down gracefully.
// Hijacked WebSocket connections are not tracked by http.Server, so shutdown
// also closes the sink of every registered connection.
type ServerWorker struct {
	log             *slog.Logger
	addr            string
	handler         http.Handler
	relay           contract.IRelay
	shutdownTimeout time.Duration
	listen          func(network, addr string) (net.Listener, error)
}

func NewServerWorker(log *slog.Logger, addr string, handler http.Handler,
	relay contract.IRelay, shutdownTimeout time.Duration) *ServerWorker {
	return &ServerWorker{
		log:             log,
		addr:            addr,
		handler:         handler,
		relay:           relay,
		shutdownTimeout: shutdownTimeout,
		listen:          net.Listen,
	}
}

func (w *ServerWorker) Run(ctx context.Context) error {
	listener, err := w.listen("tcp", w.addr)
	if err != nil {
		return err
	}
	return w.serve(ctx, listener)
}

func (w *ServerWorker) serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           w.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		w.log.Info("Relay server listening", "addr", listener.Addr().String())
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
	defer cancel()

	w.log.Info("Shutting down relay server", "connections", w.relay.Count())
	if err := srv.Shutdown(shutdownCtx); err != nil {
		w.log.Warn("Graceful shutdown incomplete", "error", err)
		_ = srv.Close()
	}
	w.closeConnections()
	return nil
}

// closeConnections ends every registered session. Each WebSocket pump then
// unregisters its own connection.
func (w *ServerWorker) closeConnections() {
	for _, conn := range w.relay.Online() {
		_ = conn.Sink.Close()
	}
}
