package config

import (
	"encoding/base64"
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
)

// ChannelSettings are the policy knobs applied to every channel the
// controller creates. They come from the environment with defaults
// matching the original deployment.
type ChannelSettings struct {
	MaxObjects  int           `env:"DECOTREE_MAX_OBJECTS,default=30"`
	MaxCCU      int           `env:"DECOTREE_MAX_CCU,default=10"`
	LockTimeout time.Duration `env:"DECOTREE_LOCK_TIMEOUT,default=1s"`
	Cooldown    time.Duration `env:"DECOTREE_COOLDOWN,default=0s"`
}

type Config struct {
	ServerAddr     string
	SigningKey     []byte
	AllowedOrigins []string
	Channel        ChannelSettings
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

func NewConfig(serverAddr, base64Secret string, allowedOrigins []string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}

	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	var settings ChannelSettings
	if _, err := env.UnmarshalFromEnviron(&settings); err != nil {
		return nil, fmt.Errorf("load channel settings: %w", err)
	}

	if settings.MaxObjects <= 0 {
		return nil, fmt.Errorf("max objects must be positive, got %d", settings.MaxObjects)
	}
	if settings.MaxCCU <= 0 {
		return nil, fmt.Errorf("max ccu must be positive, got %d", settings.MaxCCU)
	}
	if settings.LockTimeout <= 0 {
		return nil, fmt.Errorf("lock timeout must be positive, got %s", settings.LockTimeout)
	}
	if settings.Cooldown < 0 {
		return nil, fmt.Errorf("cooldown cannot be negative, got %s", settings.Cooldown)
	}

	return &Config{
		ServerAddr:     serverAddr,
		SigningKey:     signingKey,
		AllowedOrigins: allowedOrigins,
		Channel:        settings,
	}, nil
}
