// internal/workers/archetype/resolve-archetypes/config.go
package resolvearchetypes

import (
	"time"

	"archetype-resolver/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// IncludeConstructions returns the full resolved archetypes by default,
	// not only the summary rows.
	IncludeConstructions bool
}

func LoadConfig(cfg *config.Config) *Config {
	out := &Config{Timeout: 30 * time.Second}
	if cfg == nil {
		return out
	}
	if w := config.GetWorkerConfig(cfg, TaskType); w.Timeout > 0 {
		out.Timeout = config.GetDuration(w.Timeout)
	}
	return out
}
