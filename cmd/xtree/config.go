package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/safeopen"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/benz9527/xtree/lib/xlog"
)

const (
	kindRandom = "random"
	kindBST    = "bst"
	kindAVL    = "avl"

	exporterNone       = "none"
	exporterConsole    = "console"
	exporterPrometheus = "prometheus"
)

var (
	errInvalidConfig = errors.New("[xtree] invalid config")

	demoWords    = []string{"hey", "igloo", "eric", "i", "jar", "kagaroo", "lamar", "fan", "apple"}
	allKinds     = []string{kindRandom, kindBST, kindAVL}
	allExporters = []string{exporterNone, exporterConsole, exporterPrometheus}
)

type LogConfig struct {
	Level   string `yaml:"level"`
	Encoder string `yaml:"encoder"`
}

type MetricsConfig struct {
	Exporter string        `yaml:"exporter"`
	Interval time.Duration `yaml:"interval"`
}

// RandomConfig drives the random and check commands. A zero seed
// means a fresh random shape on every run.
type RandomConfig struct {
	Count  int    `yaml:"count"`
	Length int    `yaml:"length"`
	Seed   uint64 `yaml:"seed"`
}

type Config struct {
	Keys    []string      `yaml:"keys"`
	Kinds   []string      `yaml:"kinds"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Random  RandomConfig  `yaml:"random"`
}

func defaultConfig() *Config {
	return &Config{
		Keys:  slices.Clone(demoWords),
		Kinds: []string{kindRandom, kindBST, kindAVL},
		Log: LogConfig{
			Level:   string(xlog.LogLevelInfo),
			Encoder: "text",
		},
		Metrics: MetricsConfig{
			Exporter: exporterNone,
			Interval: 10 * time.Second,
		},
		Random: RandomConfig{
			Count:  32,
			Length: 4,
		},
	}
}

// LoadConfig reads the yaml file at path over the defaults. The file
// is opened beneath its own directory. An empty path returns the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if len(strings.TrimSpace(path)) == 0 {
		return cfg, nil
	}

	f, err := safeopen.OpenBeneath(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Normalize trims the keys and kinds, dropping the empty ones.
func (cfg *Config) Normalize() {
	trim := func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, len(s) > 0
	}
	cfg.Keys = lo.FilterMap(cfg.Keys, trim)
	cfg.Kinds = lo.Uniq(lo.Map(lo.FilterMap(cfg.Kinds, trim), func(k string, _ int) string {
		return strings.ToLower(k)
	}))
	cfg.Metrics.Exporter = strings.ToLower(strings.TrimSpace(cfg.Metrics.Exporter))
	if len(cfg.Metrics.Exporter) == 0 {
		cfg.Metrics.Exporter = exporterNone
	}
}

func (cfg *Config) Validate() error {
	if len(cfg.Kinds) == 0 {
		return fmt.Errorf("no tree kind: %w", errInvalidConfig)
	}
	if unknown := lo.Without(cfg.Kinds, allKinds...); len(unknown) > 0 {
		return fmt.Errorf("unknown tree kinds %v: %w", unknown, errInvalidConfig)
	}
	if !lo.Contains(allExporters, cfg.Metrics.Exporter) {
		return fmt.Errorf("unknown metrics exporter %q: %w", cfg.Metrics.Exporter, errInvalidConfig)
	}
	if cfg.Metrics.Exporter != exporterNone && cfg.Metrics.Interval <= 0 {
		return fmt.Errorf("metrics interval %s: %w", cfg.Metrics.Interval, errInvalidConfig)
	}
	if cfg.Random.Count < 0 || cfg.Random.Length < 2 || cfg.Random.Length > 255 {
		return fmt.Errorf("random count %d, length %d: %w", cfg.Random.Count, cfg.Random.Length, errInvalidConfig)
	}
	if _, err := xlog.ParseLogLevel(cfg.Log.Level); err != nil {
		return multierr.Append(err, errInvalidConfig)
	}
	if _, err := xlog.ParseLogEncoder(cfg.Log.Encoder); err != nil {
		return multierr.Append(err, errInvalidConfig)
	}
	return nil
}
