package internal

import (
	"testing"
	"time"

	"org-relay/errors"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Host:                 "localhost",
		Port:                 8080,
		JWTSecret:            "secret",
		AuthTimeout:          time.Second,
		ConnectionBufferSize: 16,
		MaxMessageSize:       1024,
		WriteTimeout:         time.Second,
		PongTimeout:          time.Second,
		MetricInterval:       time.Second,
	}
}

func TestConfig_Defaults_From_Environment(t *testing.T) {
	req := require.New(t)

	// Given only the secret is set
	var config Config
	err := env.Unmarshal(env.EnvSet{"JWT_SECRET": "secret", "ALLOWED_ORIGINS": "https://a.test, ,https://b.test"}, &config)
	req.NoError(err)

	// Then every other setting falls back to its default
	req.NoError(config.Validate())
	req.Equal("0.0.0.0:8080", config.Address())
	req.Equal(64, config.ConnectionBufferSize)
	req.Equal(5*time.Second, config.AuthTimeout)
	req.False(config.RevalidateOnMessage)
	req.Equal([]string{"https://a.test", "https://b.test"}, config.AllowedOriginList())
	req.Empty(config.AuthorizedPartyList())
}

func TestConfig_Secret_Is_Required(t *testing.T) {
	req := require.New(t)

	var config Config
	err := env.Unmarshal(env.EnvSet{}, &config)

	req.Error(err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"blank secret", func(c *Config) { c.JWTSecret = "  " }},
		{"port out of range", func(c *Config) { c.Port = 70000 }},
		{"no buffer", func(c *Config) { c.ConnectionBufferSize = 0 }},
		{"no message size", func(c *Config) { c.MaxMessageSize = 0 }},
		{"no auth timeout", func(c *Config) { c.AuthTimeout = 0 }},
		{"no pong timeout", func(c *Config) { c.PongTimeout = 0 }},
		{"no metric interval", func(c *Config) { c.MetricInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(&config)

			err := config.Validate()

			require.ErrorIs(t, err, errors.ErrInvalidConfig)
		})
	}
}

func TestSplitList(t *testing.T) {
	req := require.New(t)
	req.Empty(SplitList(""))
	req.Equal([]string{"a", "b"}, SplitList(" a ,b,"))
}
