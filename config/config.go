// Package config loads task configuration files.
//
// A configuration file is a YAML document with one section per agent;
// each section holds the settings that agent runs with. Load reads the
// file and applies "section.key=value" overrides on top, so a single
// file can drive many runs with small variations. Callers pick the
// section they want with Agent and decode it into their own settings
// struct with Decode.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrBadOverride reports an override that is not a key=value assignment.
var ErrBadOverride = errors.New("malformed override")

// ErrUnknownAgent reports a section name the configuration does not define.
var ErrUnknownAgent = errors.New("unknown agent")

// Section holds the settings of one agent section.
type Section map[string]any

// Config holds every section of a configuration file, keyed by agent name.
type Config map[string]Section

// Load reads the YAML configuration at path and applies overrides on
// top. Each override is a dotted "section.key=value" assignment whose
// value is read as a YAML literal, so "seed=123" stores an int and
// "temperature=[0.8, 0.8]" a list; values that do not parse stay
// strings. Keys no override names keep their file values.
func Load(path string, overrides ...string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	for _, override := range overrides {
		key, raw, ok := strings.Cut(override, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadOverride, override)
		}
		v.Set(key, coerce(raw))
	}

	settings := v.AllSettings()
	cfg := make(Config, len(settings))
	for name, value := range settings {
		section, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("config %s: section %q is not a mapping", path, name)
		}
		cfg[name] = Section(section)
	}
	return cfg, nil
}

// coerce interprets raw as a YAML literal so numbers, booleans, and
// lists keep their natural types. The empty string and values that fail
// to parse come back verbatim.
func coerce(raw string) any {
	if raw == "" {
		return raw
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}

// Agents returns the section names in sorted order.
func (c Config) Agents() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Agent returns the named section. The error for a missing section
// lists the sections the file does define.
func (c Config) Agent(name string) (Section, error) {
	section, ok := c[name]
	if !ok {
		return nil, fmt.Errorf("%w %q, available: %s", ErrUnknownAgent, name, strings.Join(c.Agents(), ", "))
	}
	return section, nil
}

// Decode unmarshals the section into a settings struct using
// mapstructure field tags.
func (s Section) Decode(out any) error {
	if err := mapstructure.Decode(map[string]any(s), out); err != nil {
		return fmt.Errorf("decode section: %w", err)
	}
	return nil
}
