// internal/config/normalize.go
package config

import (
	"strings"

	"github.com/tamzrod/gpu-panel/internal/status"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Bus.Transport = strings.ToLower(cfg.Bus.Transport)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	// Panel name:
	// - ASCII already validated
	// - Truncate to the status block name capacity
	if len(cfg.Panel.Name) > status.DeviceNameMaxChars {
		cfg.Panel.Name = cfg.Panel.Name[:status.DeviceNameMaxChars]
	}
}
