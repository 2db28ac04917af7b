package editor

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// Config holds the editor preferences. The defaults are embedded; a user can
// override them in $UserConfigDir/chartedit/preferences.yml.
type Config struct {
	KeyAmount     int
	OD            float64
	HP            float64
	SnapDivisors  []int
	RecoveryFile  string
	AlertDuration time.Duration

	// YmlError is the error reading the user preferences, if they exist but
	// could not be parsed.
	YmlError error `yaml:"-"`
}

//go:embed preferences.yml
var defaultConfigYaml []byte

func DefaultConfig() Config {
	var cfg Config
	err := yaml.UnmarshalStrict(defaultConfigYaml, &cfg)
	if err != nil {
		panic(fmt.Errorf("failed to unmarshal preferences: %w", err))
	}
	return cfg
}

// ReadCustomConfigYml modifies the target argument, i.e. needs a pointer
func ReadCustomConfigYml(filename string, target interface{}) (exists bool, err error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return false, err
	}
	path := filepath.Join(configDir, "chartedit", filename)
	bytes, err2 := os.ReadFile(path)
	if err2 != nil {
		return false, err2
	}
	err = yaml.UnmarshalStrict(bytes, target)
	return true, err
}

// LoadConfig returns the default preferences overridden by the user's.
func LoadConfig() Config {
	cfg := DefaultConfig()
	exists, err := ReadCustomConfigYml("preferences.yml", &cfg)
	if exists {
		cfg.YmlError = err
	}
	return cfg
}

// RecoveryFilePath resolves the recovery file: relative names are placed in
// the user cache directory.
func (c Config) RecoveryFilePath() string {
	if c.RecoveryFile == "" || filepath.IsAbs(c.RecoveryFile) {
		return c.RecoveryFile
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chartedit", c.RecoveryFile)
}
