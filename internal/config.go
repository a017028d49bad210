package internal

import (
	"fmt"
	"strings"
	"time"

	"org-relay/errors"

	"github.com/samber/lo"
)

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	JWTIssuer            string        `env:"JWT_ISSUER"`
	AuthorizedParties    string        `env:"AUTHORIZED_PARTIES"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS"`
	AuthTimeout          time.Duration `env:"AUTH_TIMEOUT,default=5s"`
	RevalidateOnMessage  bool          `env:"REVALIDATE_ON_MESSAGE,default=false"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	MaxMessageSize       int64         `env:"MAX_MESSAGE_SIZE,default=65536"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	PongTimeout          time.Duration `env:"PONG_TIMEOUT,default=60s"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	MembershipFile       string        `env:"MEMBERSHIP_FILE"`
}

// Validate checks what the env tags cannot express.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.JWTSecret) == "":
		return fmt.Errorf("%w: JWT_SECRET must not be blank", errors.ErrInvalidConfig)
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: PORT out of range, got %d", errors.ErrInvalidConfig, c.Port)
	case c.ConnectionBufferSize <= 0:
		return fmt.Errorf("%w: CONNECTION_BUFFER_SIZE must be positive, got %d", errors.ErrInvalidConfig, c.ConnectionBufferSize)
	case c.MaxMessageSize <= 0:
		return fmt.Errorf("%w: MAX_MESSAGE_SIZE must be positive, got %d", errors.ErrInvalidConfig, c.MaxMessageSize)
	case c.AuthTimeout <= 0:
		return fmt.Errorf("%w: AUTH_TIMEOUT must be positive", errors.ErrInvalidConfig)
	case c.PongTimeout <= 0 || c.WriteTimeout <= 0:
		return fmt.Errorf("%w: PONG_TIMEOUT and WRITE_TIMEOUT must be positive", errors.ErrInvalidConfig)
	case c.MetricInterval <= 0:
		return fmt.Errorf("%w: METRIC_INTERVAL must be positive", errors.ErrInvalidConfig)
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) AuthorizedPartyList() []string {
	return SplitList(c.AuthorizedParties)
}

func (c Config) AllowedOriginList() []string {
	return SplitList(c.AllowedOrigins)
}

// SplitList parses a comma separated variable, ignoring blanks.
func SplitList(value string) []string {
	return lo.FilterMap(strings.Split(value, ","), func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	})
}
