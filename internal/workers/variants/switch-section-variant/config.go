// internal/workers/variants/switch-section-variant/config.go
package switchsectionvariant

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
