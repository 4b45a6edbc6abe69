// Package config loads SDK configuration from yaml files with environment
// variable overrides, merged in priority order.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Source is one configuration origin. Higher priority wins on merge.
type Source interface {
	// Name identifies the source in error messages.
	Name() string

	// Priority orders the merge, low to high.
	Priority() int

	// Load returns the source contents as a nested map.
	Load() (map[string]interface{}, error)
}

// Loader merges its sources into one viper instance.
type Loader struct {
	sources     []Source
	v           *viper.Viper
	loadedFiles []string
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{
		sources: make([]Source, 0),
		v:       viper.New(),
	}
}

// AddSource registers a source.
func (l *Loader) AddSource(source Source) {
	l.sources = append(l.sources, source)
}

// Load merges all sources, low priority first.
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	l.v = viper.New()
	l.loadedFiles = l.loadedFiles[:0]
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("config: loading source %s: %w", source.Name(), err)
		}
		if fs, ok := source.(*FileSource); ok {
			l.loadedFiles = append(l.loadedFiles, fs.path)
		}
		if err := l.v.MergeConfigMap(data); err != nil {
			return fmt.Errorf("config: merging source %s: %w", source.Name(), err)
		}
	}
	return nil
}

// Unmarshal decodes the merged configuration into a struct.
func (l *Loader) Unmarshal(v interface{}) error {
	return l.v.Unmarshal(v)
}

// UnmarshalKey decodes one section into a struct.
func (l *Loader) UnmarshalKey(key string, v interface{}) error {
	return l.v.UnmarshalKey(key, v)
}

// Get returns a raw configuration value.
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// GetString returns a string value.
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// GetInt returns an int value.
func (l *Loader) GetInt(key string) int {
	return l.v.GetInt(key)
}

// GetBool returns a bool value.
func (l *Loader) GetBool(key string) bool {
	return l.v.GetBool(key)
}

// IsSet reports whether the key exists in the merged configuration.
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// AllSettings returns the merged configuration tree.
func (l *Loader) AllSettings() map[string]interface{} {
	return l.v.AllSettings()
}

// GetLoadedFiles lists the files that contributed to the merge.
func (l *Loader) GetLoadedFiles() []string {
	return l.loadedFiles
}

// GetViper exposes the underlying viper instance.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// Reload re-runs the merge from scratch.
func (l *Loader) Reload() error {
	return l.Load()
}

// splitEnvKey converts SCRIBE_API_BASE_URL into api.base_url.
// Single underscores separate sections only on the first split level;
// the remainder keeps underscores as word separators.
func splitEnvKey(key string) string {
	parts := strings.SplitN(strings.ToLower(key), "_", 2)
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + "." + parts[1]
}
