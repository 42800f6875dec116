package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/nsshell/internal/util"
	"github.com/brettbedarf/nsshell/namespace"
	"gopkg.in/yaml.v3"
)

// CLI verbosity levels accepted by [ConfigOverride.LogLvl]. Values outside
// the range are clamped.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl         = util.InfoLevel
	DefaultPrompt         = " $ "
	DefaultRootName       = namespace.DefaultRootName
	DefaultPrefixDispatch = false
	DefaultEcho           = true
	DefaultFsName         = "nsshell"
	DefaultMountName      = "nsshell"
)

// Config contains runtime configuration values for a shell session.
type Config struct {
	MountOptions
	LogLvl   util.LogLevel // Internal log level (Default info)
	Prompt   string        // Prompt written before every line (Default " $ ")
	RootName string        // Name of the root directory, at most 10 bytes (Default "root")
	// PrefixDispatch matches a command token against the first N bytes of each known
	// command instead of requiring full equality, so "cur_dirXX" runs cur_dir. (Default false)
	PrefixDispatch bool
	Echo           bool // Whether typed characters are echoed to the sink (Default true)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is CLI verbosity between 1 (error) and 5 (trace), not a [util.LogLevel]
	LogLvl         *int    `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	Prompt         *string `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	RootName       *string `yaml:"root_name,omitempty" json:"root_name,omitempty"`
	PrefixDispatch *bool   `yaml:"prefix_dispatch,omitempty" json:"prefix_dispatch,omitempty"`
	Echo           *bool   `yaml:"echo,omitempty" json:"echo,omitempty"`
	FsName         *string `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	MountName      *string `yaml:"mount_name,omitempty" json:"mount_name,omitempty"`
	MountDebug     *bool   `yaml:"mount_debug,omitempty" json:"mount_debug,omitempty"`
}

// NewConfig creates a Config from defaults with any non-nil override values applied.
func NewConfig(override *ConfigOverride) *Config {
	cfg := newDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

func newDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultMountName,
		},
		LogLvl:         DefaultLogLvl,
		Prompt:         DefaultPrompt,
		RootName:       DefaultRootName,
		PrefixDispatch: DefaultPrefixDispatch,
		Echo:           DefaultEcho,
	}
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
// A root name that is empty or longer than the name capacity is ignored.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = VerboseToLogLevel(*override.LogLvl)
	}
	if override.Prompt != nil {
		c.Prompt = *override.Prompt
	}
	if override.RootName != nil {
		if _, err := namespace.ParseName(*override.RootName); err == nil {
			c.RootName = *override.RootName
		}
	}
	if override.PrefixDispatch != nil {
		c.PrefixDispatch = *override.PrefixDispatch
	}
	if override.Echo != nil {
		c.Echo = *override.Echo
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.MountName != nil {
		c.Name = *override.MountName
	}
	if override.MountDebug != nil {
		c.Debug = *override.MountDebug
	}
}

// VerboseToLogLevel converts CLI verbosity 1 (error) .. 5 (trace) into a log level.
func VerboseToLogLevel(verbose int) util.LogLevel {
	verbose = util.Clamp(verbose, ErrorVerbose, TraceVerbose)
	lvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return lvls[verbose-1]
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
