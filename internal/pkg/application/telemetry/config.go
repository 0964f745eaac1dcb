package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/diwise/iot-bin-telemetry/internal/pkg/application/anomaly"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/application/replay"
	yaml "gopkg.in/yaml.v2"
)

type Config struct {
	Anomaly anomaly.Policy `yaml:"anomaly"`

	// ActiveWindow is how recently a device must have reported to count as active.
	ActiveWindow time.Duration `yaml:"activeWindow"`
	// FullThreshold is the fill level, in percent, above which a bin is full.
	FullThreshold float64 `yaml:"fullThreshold"`
	// HistoryHours is the number of hourly buckets in the full bin history.
	HistoryHours int           `yaml:"historyHours"`
	ReplayMaxAge time.Duration `yaml:"replayMaxAge"`
}

func DefaultConfig() Config {
	return Config{
		Anomaly:       anomaly.DefaultPolicy(),
		ActiveWindow:  5 * time.Minute,
		FullThreshold: 80,
		HistoryHours:  6,
		ReplayMaxAge:  replay.DefaultMaxAge,
	}
}

type policyFile struct {
	Policy *Config `yaml:"policy"`
}

// LoadConfiguration reads the policy section of a yaml configuration file.
// Values missing from the file keep their defaults.
func LoadConfiguration(data io.Reader) (Config, error) {
	cfg := DefaultConfig()

	buf, err := io.ReadAll(data)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(buf, &policyFile{Policy: &cfg}); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.ActiveWindow <= 0 {
		return fmt.Errorf("activeWindow must be positive, got %s", c.ActiveWindow)
	}
	// hour keys are two digit wall clock hours and would collide past a day
	if c.HistoryHours < 1 || c.HistoryHours > 24 {
		return fmt.Errorf("historyHours must be between 1 and 24, got %d", c.HistoryHours)
	}
	return nil
}
