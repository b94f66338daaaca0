// File: facade/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Channel configuration: defaults, JSON loading and validation.

package facade

import (
	"fmt"
	"os"

	"github.com/sugawarayuuta/sonnet"

	"github.com/momentics/hioload-devchan/api"
)

// Wait primitive selectors.
const (
	WaitPortable = "portable" // in-process counter + wake channel
	WaitEventfd  = "eventfd"  // Linux eventfd, shareable with a peer process
)

const maxSlots = 1 << 29

// Config holds parameters immutable per channel pair.
type Config struct {
	Name          string `json:"name"`           // Metrics prefix and log label
	Slots         int    `json:"slots"`          // Ring capacity in slots; usable capacity is Slots-1
	Wait          string `json:"wait"`           // WaitPortable or WaitEventfd
	Shared        bool   `json:"shared"`         // Place storage in a shared mapping
	Segment       string `json:"segment"`        // Named segment for Shared; empty means anonymous
	SpoolLimit    int    `json:"spool_limit"`    // Producer backlog; 0 drops on overflow
	ConsumerCPU   int    `json:"consumer_cpu"`   // CPU for the consumer loop, -1 leaves it unpinned
	EnableMetrics bool   `json:"enable_metrics"` // Publish counters through Control
	EnableDebug   bool   `json:"enable_debug"`   // Register debug probes
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		Name:          "devchan",
		Slots:         256,
		Wait:          WaitPortable,
		ConsumerCPU:   -1,
		EnableMetrics: true,
	}
}

// LoadConfig reads a JSON file over the defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes JSON over the defaults and validates the result.
// Keys absent from data keep their default values.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := sonnet.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: decode config: %v", api.ErrInvalidArgument, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields against what the channel layer accepts.
func (c *Config) Validate() error {
	switch {
	case c.Name == "":
		return fmt.Errorf("%w: empty channel name", api.ErrInvalidArgument)
	case c.Slots < 2 || c.Slots > maxSlots:
		return fmt.Errorf("%w: slots %d outside [2, %d]", api.ErrInvalidArgument, c.Slots, maxSlots)
	case c.Wait != WaitPortable && c.Wait != WaitEventfd:
		return fmt.Errorf("%w: unknown wait primitive %q", api.ErrInvalidArgument, c.Wait)
	case c.Segment != "" && !c.Shared:
		return fmt.Errorf("%w: segment %q requires shared storage", api.ErrInvalidArgument, c.Segment)
	case c.SpoolLimit < 0:
		return fmt.Errorf("%w: negative spool limit", api.ErrInvalidArgument)
	case c.ConsumerCPU < -1:
		return fmt.Errorf("%w: consumer cpu %d", api.ErrInvalidArgument, c.ConsumerCPU)
	}
	return nil
}

// Map flattens the config for control.ConfigStore.
func (c *Config) Map() map[string]any {
	p := c.Name + "."
	return map[string]any{
		p + "slots":          c.Slots,
		p + "wait":           c.Wait,
		p + "shared":         c.Shared,
		p + "segment":        c.Segment,
		p + "spool_limit":    c.SpoolLimit,
		p + "consumer_cpu":   c.ConsumerCPU,
		p + "enable_metrics": c.EnableMetrics,
		p + "enable_debug":   c.EnableDebug,
	}
}

// JSON encodes the config.
func (c *Config) JSON() ([]byte, error) {
	return sonnet.Marshal(c)
}
