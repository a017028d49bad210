package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"org-relay/auth"
	"org-relay/internal"
	"org-relay/membership"
	"org-relay/runtime"
	"org-relay/runtime/workers"
	"org-relay/transport/httpapi"
	"org-relay/transport/ws"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes reported to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a shutdown signal.
// Returning instead of exiting lets the deferred cleanups run.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	directory, err := membership.LoadFile(config.MembershipFile)
	if err != nil {
		return exitConfig, fmt.Errorf("membership loading failed: %w", err)
	}

	// 2. Authentication
	verifier := auth.NewJWTVerifier([]byte(config.JWTSecret), config.JWTIssuer, config.AuthorizedPartyList())
	var gateOptions []auth.GateOption
	if config.RevalidateOnMessage {
		gateOptions = append(gateOptions, auth.WithValidityCheck(auth.UntilExpiry))
	}
	gate := auth.NewGate(log, verifier, config.AuthTimeout, gateOptions...)

	// 3. Relay & transports
	relay := runtime.New(log, gate)
	wsHandler := ws.NewHandler(log, relay, ws.Options{
		BufferSize:     config.ConnectionBufferSize,
		MaxMessageSize: config.MaxMessageSize,
		WriteTimeout:   config.WriteTimeout,
		PongTimeout:    config.PongTimeout,
		AllowedOrigins: config.AllowedOriginList(),
	})
	router := httpapi.NewServer(log, relay, gate, directory, wsHandler).Router()

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervised workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewServerWorker(log, config.Address(), router, relay, config.ShutdownTimeout),
		workers.NewHealthWorker(log, relay, config.MetricInterval),
	)

	log.Info("Starting relay",
		"address", config.Address(),
		"revalidate_on_message", config.RevalidateOnMessage,
		"allowed_origins", config.AllowedOriginList())
	sup.Run(ctx)

	log.Info("Relay stopped cleanly")
	return exitOK, nil
}
