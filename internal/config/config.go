package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"tagcomplete/internal/domain"
	"tagcomplete/internal/eventbus"
)

// Config represents the application configuration
type Config struct {
	Version  int             `toml:"version"`
	Engine   EngineSettings  `toml:"engine"`
	UI       UISettings      `toml:"ui"`
	Triggers []TriggerConfig `toml:"triggers"`
}

// EngineSettings tunes the autocomplete engine
type EngineSettings struct {
	LookupTimeout      string `toml:"lookup_timeout"`
	MaxSuggestions     int    `toml:"max_suggestions"`
	PruneRemovedBlocks bool   `toml:"prune_removed_blocks"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ListWidth int  `toml:"list_width"`
	ShowHelp  bool `toml:"show_help"`
}

// TriggerConfig describes one trigger and where its suggestions come from
type TriggerConfig struct {
	Prefix     string        `toml:"prefix"`
	Type       string        `toml:"type"`
	Mutability string        `toml:"mutability"`
	Format     string        `toml:"format,omitempty"`
	Source     SourceConfig  `toml:"source"`
	Style      StyleSettings `toml:"style"`
}

// SourceConfig selects a suggestion source
type SourceConfig struct {
	Kind  string   `toml:"kind"`
	Match string   `toml:"match,omitempty"`
	Items []string `toml:"items,omitempty"`
	DSN   string   `toml:"dsn,omitempty"`
	Query string   `toml:"query,omitempty"`
}

// StyleSettings is how committed annotations of a trigger look
type StyleSettings struct {
	Foreground string `toml:"foreground,omitempty"`
	Background string `toml:"background,omitempty"`
	Bold       bool   `toml:"bold"`
	Underline  bool   `toml:"underline"`
}

// Source kinds
const (
	SourceStatic = "static"
	SourceSQLite = "sqlite"
)

// DefaultFormat renders a suggestion as prefix followed by its label
const DefaultFormat = "{prefix}{label}"

// Timeout returns the lookup timeout; zero disables it
func (c *Config) Timeout() (time.Duration, error) {
	s := strings.TrimSpace(c.Engine.LookupTimeout)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("engine.lookup_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("engine.lookup_timeout: negative duration %s", s)
	}
	return d, nil
}

// Validate checks the parts of the configuration the engine depends on
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Timeout(); err != nil {
		errs = append(errs, err)
	}
	if c.Engine.MaxSuggestions < 0 {
		errs = append(errs, fmt.Errorf("engine.max_suggestions: must not be negative"))
	}
	for i, t := range c.Triggers {
		if _, err := domain.ParseMutability(t.Mutability); err != nil {
			errs = append(errs, fmt.Errorf("triggers[%d]: %w", i, err))
		}
		switch t.Source.Kind {
		case SourceStatic, "":
		case SourceSQLite:
			if t.Source.DSN == "" {
				errs = append(errs, fmt.Errorf("triggers[%d].source: sqlite source needs a dsn", i))
			}
		default:
			errs = append(errs, fmt.Errorf("triggers[%d].source: unknown kind %q", i, t.Source.Kind))
		}
	}
	return errors.Join(errs...)
}

// FormatLabel expands a trigger format template
func (t TriggerConfig) FormatLabel(label string) string {
	format := t.Format
	if format == "" {
		format = DefaultFormat
	}
	return strings.NewReplacer("{prefix}", t.Prefix, "{label}", label).Replace(format)
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service backed by the user config directory
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	return &configService{
		filePath: filepath.Join(configDir, "tagcomplete", "tagcomplete.toml"),
	}
}

// NewConfigServiceAt creates a config service for a specific file
func NewConfigServiceAt(path string, bus eventbus.EventBus) ConfigService {
	return &configService{filePath: path, bus: bus}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	cs := NewConfigService().(*configService)
	cs.bus = bus
	return cs
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration file, falling back to defaults when it does not exist
func (cs *configService) Load() (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		cfg, err = cs.LoadFromPath(cs.filePath)
		if err != nil {
			return nil, err
		}
	}

	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigLoadedEvent{
			Path:     cs.filePath,
			Triggers: len(cfg.Triggers),
		})
	}
	return cfg, nil
}

// Save saves the configuration to the service's file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}

	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Missing keys keep their default values
	cfg := DefaultConfig()
	cfg.Triggers = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration: people mentions and hashtags
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Engine: EngineSettings{
			LookupTimeout:      "3s",
			MaxSuggestions:     8,
			PruneRemovedBlocks: true,
		},
		UI: UISettings{
			ListWidth: 32,
			ShowHelp:  true,
		},
		Triggers: []TriggerConfig{
			{
				Prefix:     "@",
				Type:       "MENTION",
				Mutability: domain.Segmented.String(),
				Format:     DefaultFormat,
				Source: SourceConfig{
					Kind:  SourceStatic,
					Match: "contains",
					Items: []string{"Bruce Wayne", "Jay Garrick", "Allan Scott", "Oliver Queen", "Princess Diana", "Peter Parker"},
				},
				Style: StyleSettings{Foreground: "39", Bold: true},
			},
			{
				Prefix:     "#",
				Type:       "HASHTAG",
				Mutability: domain.Immutable.String(),
				Format:     DefaultFormat,
				Source: SourceConfig{
					Kind:  SourceStatic,
					Match: "prefix",
					Items: []string{"react", "draft-js", "component"},
				},
				Style: StyleSettings{Foreground: "205", Underline: true},
			},
		},
	}
}
