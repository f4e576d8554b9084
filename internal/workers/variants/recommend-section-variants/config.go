// internal/workers/variants/recommend-section-variants/config.go
package recommendsectionvariants

import "time"

type Config struct {
	Timeout           time.Duration
	BatchAlternatives int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           10 * time.Second,
		BatchAlternatives: 2,
	}
}
