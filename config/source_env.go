package config

import (
	"os"
	"strings"
)

// EnvSource maps prefixed environment variables onto configuration keys.
// SCRIBE_API_BASE_URL becomes api.base_url.
type EnvSource struct {
	prefix   string
	priority int
}

// NewEnvSource creates an env source for one prefix (without trailing underscore).
func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{prefix: strings.ToUpper(prefix), priority: priority}
}

// Name implements Source.
func (s *EnvSource) Name() string {
	return "env(" + s.prefix + ")"
}

// Priority implements Source.
func (s *EnvSource) Priority() int {
	return s.priority
}

// Load implements Source.
func (s *EnvSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})
	prefix := s.prefix + "_"

	for _, kv := range os.Environ() {
		eq := strings.Index(kv, "=")
		if eq < 0 {
			continue
		}
		key, value := kv[:eq], kv[eq+1:]
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		setNested(result, splitEnvKey(strings.TrimPrefix(key, prefix)), value)
	}
	return result, nil
}

// setNested inserts value under a dot-separated key path.
func setNested(m map[string]interface{}, key string, value interface{}) {
	parts := strings.Split(key, ".")
	current := m
	for i, part := range parts {
		if i == len(parts)-1 {
			current[part] = value
			return
		}
		next, ok := current[part].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			current[part] = next
		}
		current = next
	}
}
