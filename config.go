package corridor

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvironmentConfig describes the sets and transitions of a corridor and how
// fast the run moves through them.
type EnvironmentConfig struct {
	AssetRoot     string            `yaml:"assetRoot"`
	LampIntensity float32           `yaml:"lampIntensity"`
	Sets          []SegmentTemplate `yaml:"sets"`
	Transitions   []string          `yaml:"transitions"`
	Run           RunConfig         `yaml:"run"`
}

type RunConfig struct {
	Speed        float32 `yaml:"speed"`
	Acceleration float32 `yaml:"acceleration"`
	MaxSpeed     float32 `yaml:"maxSpeed"`
}

func LoadEnvironmentConfig(path string) (*EnvironmentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading environment config")
	}
	cfg, err := ParseEnvironmentConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "environment config %s", path)
	}
	return cfg, nil
}

func ParseEnvironmentConfig(data []byte) (*EnvironmentConfig, error) {
	cfg := &EnvironmentConfig{LampIntensity: DefaultLampIntensity}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "decoding")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *EnvironmentConfig) Validate() error {
	if len(cfg.Sets) < 2 {
		return errors.Wrapf(ErrTooFewSets, "got %d", len(cfg.Sets))
	}
	if len(cfg.Transitions) == 0 {
		return ErrNoTransitions
	}

	opener := false
	for i, set := range cfg.Sets {
		if set.Length <= 0 {
			return errors.Errorf("set %d (%s): length must be positive", i, set.Name)
		}
		if set.Transition != nil && (*set.Transition < 0 || *set.Transition >= len(cfg.Transitions)) {
			return errors.Errorf("set %d (%s): transition %d out of range", i, set.Name, *set.Transition)
		}
		if !set.NotInitial {
			opener = true
		}
	}
	if !opener {
		return ErrNoInitialSet
	}

	if cfg.Run.Speed < 0 {
		return errors.New("run speed must not be negative")
	}
	if cfg.Run.MaxSpeed > 0 && cfg.Run.MaxSpeed < cfg.Run.Speed {
		return errors.New("run max speed is below the starting speed")
	}
	return nil
}
