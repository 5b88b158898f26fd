package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config holds the TOML-driven runner configuration merged with the
// environment. Every field is optional; the zero file yields the built-in
// catalog against the default candidate locations.
type Config struct {
	Candidates     []string       `toml:"candidates"`
	BuiltinCatalog bool           `toml:"builtin_catalog"`
	RecordHistory  bool           `toml:"record_history"`
	Only           []string       `toml:"only"`
	Hooks          HooksConfig    `toml:"hooks"`
	Targets        []SchemaTarget `toml:"targets"`

	// EnvOverride is the location taken from DATABASE_URL or DB_PATH. It is
	// tried after the candidates.
	EnvOverride string `toml:"-"`

	// configDir is the directory containing the TOML file, used to resolve
	// relative candidate and SQL paths.
	configDir string
}

type HooksConfig struct {
	BeforeApply []string `toml:"before_apply"`
	AfterApply  []string `toml:"after_apply"`
}

// envConfig is the process environment the runner reads.
type envConfig struct {
	DatabaseURL string `env:"DATABASE_URL"`
	DBPath      string `env:"DB_PATH"`
	ConfigPath  string `env:"COZMIC_MIGRATE_CONFIG"`
	LogLevel    string `env:"COZMIC_MIGRATE_LOG_LEVEL"`
}

func loadEnv() (envConfig, error) {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return envConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}

// override returns the env location, preferring DATABASE_URL.
func (e envConfig) override() string {
	if s := strings.TrimSpace(e.DatabaseURL); s != "" {
		return s
	}
	return strings.TrimSpace(e.DBPath)
}

func defaultConfig() Config {
	return Config{
		Candidates:     append([]string(nil), defaultCandidates...),
		BuiltinCatalog: true,
	}
}

// loadConfig reads an optional TOML file (an empty path means none) and
// applies the environment on top.
func loadConfig(path string, e envConfig) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if unknown := md.Undecoded(); len(unknown) > 0 {
			keys := make([]string, len(unknown))
			for i, k := range unknown {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		cfg.configDir = filepath.Dir(absPath)

		for i, c := range cfg.Candidates {
			if !strings.Contains(c, "://") && strings.TrimSpace(c) != "" {
				cfg.Candidates[i] = cfg.resolvePath(c)
			}
		}
	}

	cfg.EnvOverride = e.override()

	if !cfg.BuiltinCatalog && len(cfg.Targets) == 0 && !cfg.RecordHistory {
		return nil, fmt.Errorf("builtin_catalog is disabled and no targets are declared")
	}
	return &cfg, nil
}

// resolvePath resolves a path relative to the config file directory. Without
// a config file, paths stay relative to the working directory.
func (c *Config) resolvePath(p string) string {
	if filepath.IsAbs(p) || c.configDir == "" {
		return p
	}
	return filepath.Join(c.configDir, p)
}

// selectTargets assembles the targets to apply: the built-in catalog (when
// enabled) followed by declared targets, filtered by only. Each entry of only
// matches a target name prefix or a group name. The history ledger target is
// always first when recording is enabled and is never filtered out.
func selectTargets(cfg *Config, only []string) ([]SchemaTarget, error) {
	var all []SchemaTarget
	if cfg.BuiltinCatalog {
		all = append(all, builtinTargets()...)
	}
	all = append(all, cfg.Targets...)

	if len(only) == 0 {
		only = cfg.Only
	}
	selected := all
	if len(only) > 0 {
		selected = nil
		matched := make(map[string]bool, len(only))
		for _, t := range all {
			for _, o := range only {
				o = strings.TrimSpace(o)
				if o == "" {
					continue
				}
				if strings.HasPrefix(t.Name, o) || strings.EqualFold(t.Group, o) {
					selected = append(selected, t)
					matched[o] = true
					break
				}
			}
		}
		for _, o := range only {
			if o = strings.TrimSpace(o); o != "" && !matched[o] {
				logger.Warnf("--only %q matched no target", o)
			}
		}
	}

	if cfg.RecordHistory {
		selected = append([]SchemaTarget{historyTarget()}, selected...)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no targets selected")
	}
	if err := validateTargets(selected); err != nil {
		return nil, err
	}
	return selected, nil
}
