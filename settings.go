package corridor

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

type GraphicsPreset int

const (
	GraphicsLow GraphicsPreset = iota
	GraphicsMedium
	GraphicsHigh
)

var graphicsPresetNames = map[GraphicsPreset]string{
	GraphicsLow:    "low",
	GraphicsMedium: "medium",
	GraphicsHigh:   "high",
}

func (p GraphicsPreset) String() string {
	if name, ok := graphicsPresetNames[p]; ok {
		return name
	}
	return "unknown"
}

func ParseGraphicsPreset(s string) (GraphicsPreset, error) {
	for p, name := range graphicsPresetNames {
		if name == s {
			return p, nil
		}
	}
	return GraphicsHigh, errors.Errorf("unknown graphics preset %q", s)
}

func (p GraphicsPreset) MarshalYAML() (any, error) {
	return p.String(), nil
}

func (p *GraphicsPreset) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseGraphicsPreset(value.Value)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Settings are the player options the environment reacts to.
type Settings struct {
	GraphicsPreset GraphicsPreset `yaml:"graphicsPreset"`
	RushMode       bool           `yaml:"rushMode"`
}

func DefaultSettings() Settings {
	return Settings{GraphicsPreset: GraphicsHigh}
}

const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// SettingsStore holds the current settings and persists them through gdata.
// A nil gdata manager keeps settings in memory only. Every change bumps the
// version so frame systems can notice it by polling.
type SettingsStore struct {
	mu       sync.Mutex
	data     *gdata.Manager
	log      Logger
	settings Settings
	version  uint64
}

// NewSettingsStore loads saved settings, falling back to defaults when
// nothing is saved or the saved data is unreadable.
func NewSettingsStore(data *gdata.Manager, log Logger) *SettingsStore {
	store := &SettingsStore{
		data:     data,
		log:      log,
		settings: DefaultSettings(),
	}
	if err := store.Load(); err != nil {
		log.Warnf("failed to load settings: %v (using defaults)", err)
	}
	return store
}

func (s *SettingsStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil || !s.data.ObjectPropExists(settingsObject, settingsProperty) {
		s.replace(DefaultSettings())
		return nil
	}

	raw, err := s.data.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		s.replace(DefaultSettings())
		return errors.Wrap(err, "loading settings")
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		s.replace(DefaultSettings())
		return errors.Wrap(err, "decoding settings")
	}

	s.replace(loaded)
	s.log.Debugf("settings loaded: %+v", loaded)
	return nil
}

func (s *SettingsStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil
	}

	raw, err := yaml.Marshal(s.settings)
	if err != nil {
		return errors.Wrap(err, "encoding settings")
	}
	if err := s.data.SaveObjectProp(settingsObject, settingsProperty, raw); err != nil {
		return errors.Wrap(err, "saving settings")
	}
	return nil
}

// Get returns the current settings with their version.
func (s *SettingsStore) Get() (Settings, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, s.version
}

func (s *SettingsStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *SettingsStore) SetGraphicsPreset(preset GraphicsPreset) {
	s.Update(func(settings *Settings) { settings.GraphicsPreset = preset })
}

func (s *SettingsStore) SetRushMode(enabled bool) {
	s.Update(func(settings *Settings) { settings.RushMode = enabled })
}

// Update applies fn to the settings. The version only moves when fn changed
// something.
func (s *SettingsStore) Update(fn func(*Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	fn(&next)
	if next != s.settings {
		s.replace(next)
	}
}

func (s *SettingsStore) replace(settings Settings) {
	s.settings = settings
	s.version++
}
