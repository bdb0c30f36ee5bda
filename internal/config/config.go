// Package config loads the tool's settings from defaults, an optional YAML
// file, the environment and the command line, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Keys.
const (
	KeyWeightsDir     = "weights-dir"
	KeyWeightsFile    = "weights-file"
	KeyGnubgHome      = "gnubg-home"
	KeyMoves2PlyLimit = "moves2p-limit"
	KeyRolloutLimit   = "rollout-limit"
	KeyRolloutGames   = "rollout-games"
	KeyCubeAway       = "cube-away"
	KeyIncludePly0    = "include-ply0"
	KeyEvalPlies      = "eval-plies"
	KeyShortcuts      = "shortcuts"
	KeyOSRGames       = "n-osr"
	KeyVerbose        = "verbose"
	KeyBearoffFile    = "bearoff-file"
	KeyMETFile        = "met-file"
	KeyCacheMB        = "cache-mb"
	KeyMonitorAddr    = "monitor-addr"
	KeyAllowNoWeights = "allow-no-weights"
)

// FileName is the base name of the config file.
const FileName = "sagnubg.yaml"

// Config holds the effective settings.
type Config struct {
	WeightsDir     string `mapstructure:"weights-dir" yaml:"weights-dir"`
	WeightsFile    string `mapstructure:"weights-file" yaml:"weights-file,omitempty"`
	GnubgHome      string `mapstructure:"gnubg-home" yaml:"gnubg-home,omitempty"`
	Moves2PlyLimit int    `mapstructure:"moves2p-limit" yaml:"moves2p-limit"`
	RolloutLimit   int    `mapstructure:"rollout-limit" yaml:"rollout-limit"`
	RolloutGames   int    `mapstructure:"rollout-games" yaml:"rollout-games"`
	CubeAway       int    `mapstructure:"cube-away" yaml:"cube-away"`
	IncludePly0    bool   `mapstructure:"include-ply0" yaml:"include-ply0"`
	EvalPlies      int    `mapstructure:"eval-plies" yaml:"eval-plies"`
	Shortcuts      bool   `mapstructure:"shortcuts" yaml:"shortcuts"`
	OSRGames       int    `mapstructure:"n-osr" yaml:"n-osr"`
	Verbose        int    `mapstructure:"verbose" yaml:"verbose"`
	BearoffFile    string `mapstructure:"bearoff-file" yaml:"bearoff-file,omitempty"`
	METFile        string `mapstructure:"met-file" yaml:"met-file,omitempty"`
	CacheMB        int    `mapstructure:"cache-mb" yaml:"cache-mb"`
	MonitorAddr    string `mapstructure:"monitor-addr" yaml:"monitor-addr,omitempty"`
	AllowNoWeights bool   `mapstructure:"allow-no-weights" yaml:"allow-no-weights"`
}

// New returns a viper instance with the defaults and environment bindings
// in place.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyWeightsDir, ".")
	v.SetDefault(KeyMoves2PlyLimit, 20)
	v.SetDefault(KeyRolloutLimit, 5)
	v.SetDefault(KeyRolloutGames, 1296)
	v.SetDefault(KeyCubeAway, 7)
	v.SetDefault(KeyIncludePly0, true)
	v.SetDefault(KeyEvalPlies, 2)
	v.SetDefault(KeyShortcuts, true)
	v.SetDefault(KeyOSRGames, 1296)
	v.SetDefault(KeyVerbose, 0)
	v.SetDefault(KeyCacheMB, 0)
	v.SetDefault(KeyAllowNoWeights, false)
	v.SetDefault(KeyWeightsFile, "")
	v.SetDefault(KeyGnubgHome, "")
	v.SetDefault(KeyBearoffFile, "")
	v.SetDefault(KeyMETFile, "")
	v.SetDefault(KeyMonitorAddr, "")

	v.SetEnvPrefix("sagnubg")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// the names gnubg itself reads
	v.BindEnv(KeyWeightsFile, "GNUBGWEIGHTS")
	v.BindEnv(KeyGnubgHome, "GNUBGHOME")
	return v
}

// SearchPaths lists the directories searched for FileName.
func SearchPaths() []string {
	var dirs []string
	if d := os.Getenv("SAGNUBG_CONFIG"); d != "" {
		dirs = append(dirs, d)
	}
	dirs = append(dirs, ".")
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "sagnubg"))
	}
	return dirs
}

// ReadFile merges the first FileName found in dirs into v. It returns the
// path read, or "" when there is none.
func ReadFile(v *viper.Viper, dirs []string) (string, error) {
	for _, dir := range dirs {
		path := filepath.Join(dir, FileName)
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		defer f.Close()
		if err := Merge(v, f); err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}

// Merge reads YAML settings from r into v.
func Merge(v *viper.Viper, r io.Reader) error {
	var m map[string]any
	if err := yaml.NewDecoder(r).Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	for k := range m {
		if !known(k) {
			return fmt.Errorf("unknown config key %q", k)
		}
	}
	return v.MergeConfigMap(m)
}

func known(key string) bool {
	switch key {
	case KeyWeightsDir, KeyWeightsFile, KeyGnubgHome, KeyMoves2PlyLimit,
		KeyRolloutLimit, KeyRolloutGames, KeyCubeAway, KeyIncludePly0,
		KeyEvalPlies, KeyShortcuts, KeyOSRGames, KeyVerbose, KeyBearoffFile,
		KeyMETFile, KeyCacheMB, KeyMonitorAddr, KeyAllowNoWeights:
		return true
	}
	return false
}

// Load decodes and validates v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the ranges of the numeric settings.
func (c Config) Validate() error {
	switch {
	case c.CubeAway <= 1 || c.CubeAway > 25:
		return fmt.Errorf("cube-away must be in (1,25], got %d", c.CubeAway)
	case c.OSRGames <= 0:
		return errors.New("non positive osrGames")
	case c.EvalPlies < 0:
		return errors.New("negative plies")
	case c.RolloutGames <= 0:
		return fmt.Errorf("rollout-games must be positive, got %d", c.RolloutGames)
	case c.RolloutLimit <= 0:
		return fmt.Errorf("rollout-limit must be positive, got %d", c.RolloutLimit)
	case c.Moves2PlyLimit <= 0:
		return fmt.Errorf("moves2p-limit must be positive, got %d", c.Moves2PlyLimit)
	}
	return nil
}

// Weights returns the weights file to load: GNUBGWEIGHTS, else
// $GNUBGHOME/gnubg.weights, else gnubg.weights or gnubg.wd in WeightsDir.
// It returns "" when none exists.
func (c Config) Weights() string {
	if c.WeightsFile != "" {
		return c.WeightsFile
	}
	var candidates []string
	if c.GnubgHome != "" {
		candidates = append(candidates, filepath.Join(c.GnubgHome, "gnubg.weights"))
	}
	dir := c.WeightsDir
	if dir == "" {
		dir = "."
	}
	candidates = append(candidates, filepath.Join(dir, "gnubg.weights"), filepath.Join(dir, "gnubg.wd"))
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// YAML renders c as a config file.
func (c Config) YAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
