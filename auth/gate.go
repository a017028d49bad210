package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"org-relay/contract"
	"org-relay/domain"
	"org-relay/errors"
)

const bearerScheme = "bearer"

// ValidityCheck decides whether an already authenticated identity may keep using its connection.
type ValidityCheck func(identity domain.Identity, now time.Time) bool

// AlwaysValid trusts the handshake for the whole life of the connection.
func AlwaysValid(domain.Identity, time.Time) bool { return true }

// UntilExpiry invalidates the connection once its token has expired.
func UntilExpiry(identity domain.Identity, now time.Time) bool {
	return !identity.Expired(now)
}

// Gate authenticates a connection attempt once, before it is admitted.
type Gate struct {
	verifier   contract.TokenVerifier
	timeout    time.Duration
	stillValid ValidityCheck
	now        func() time.Time
	log        *slog.Logger
}

type GateOption func(*Gate)

func WithValidityCheck(check ValidityCheck) GateOption {
	return func(g *Gate) { g.stillValid = check }
}

func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

func NewGate(log *slog.Logger, verifier contract.TokenVerifier, timeout time.Duration, opts ...GateOption) *Gate {
	g := &Gate{
		verifier:   verifier,
		timeout:    timeout,
		stillValid: AlwaysValid,
		now:        time.Now,
		log:        log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate extracts the bearer token from an Authorization header value and verifies it.
// It returns errors.ErrMissingToken or errors.ErrInvalidToken; verifier details are only logged.
func (g *Gate) Authenticate(ctx context.Context, authorization string) (domain.Identity, error) {
	token, ok := ExtractBearer(authorization)
	if !ok {
		g.log.Debug("Connection rejected: missing or malformed authorization header")
		return domain.Identity{}, errors.ErrMissingToken
	}

	verified, err := g.verify(ctx, token)
	if err != nil {
		g.log.Warn("Connection rejected: token verification failed", "error", err)
		return domain.Identity{}, errors.ErrInvalidToken
	}
	if verified.SubjectID == "" {
		g.log.Warn("Connection rejected: verified token has no subject")
		return domain.Identity{}, errors.ErrInvalidToken
	}

	return domain.NewIdentity(verified), nil
}

// StillValid is the per-message revalidation hook. It defaults to AlwaysValid.
func (g *Gate) StillValid(identity domain.Identity) bool {
	return g.stillValid(identity, g.now())
}

// verify bounds the verifier call with the gate timeout.
// A verifier that ignores its context is abandoned once the deadline passes.
func (g *Gate) verify(ctx context.Context, token string) (domain.VerifiedToken, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	type result struct {
		token domain.VerifiedToken
		err   error
	}
	done := make(chan result, 1)
	go func() {
		t, err := g.verifier.Verify(ctx, token)
		done <- result{token: t, err: err}
	}()

	select {
	case r := <-done:
		return r.token, r.err
	case <-ctx.Done():
		return domain.VerifiedToken{}, ctx.Err()
	}
}

// ExtractBearer returns the token of a "Bearer <token>" header value.
// The scheme is case-insensitive.
func ExtractBearer(authorization string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authorization), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
