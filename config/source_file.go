package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// FileSource loads one yaml file. Missing optional files load as empty.
type FileSource struct {
	path     string
	priority int
	optional bool
}

// NewFileSource creates a required file source.
func NewFileSource(path string, priority int) *FileSource {
	return &FileSource{path: path, priority: priority}
}

// NewOptionalFileSource creates a file source that tolerates a missing file.
func NewOptionalFileSource(path string, priority int) *FileSource {
	return &FileSource{path: path, priority: priority, optional: true}
}

// Name implements Source.
func (s *FileSource) Name() string {
	return fmt.Sprintf("file(%s)", s.path)
}

// Priority implements Source.
func (s *FileSource) Priority() int {
	return s.priority
}

// Load implements Source.
func (s *FileSource) Load() (map[string]interface{}, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) && s.optional {
			return map[string]interface{}{}, nil
		}
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v.AllSettings(), nil
}
