// Package config resolves casepipe settings from, in rising precedence:
// built-in defaults, the YAML config file, environment variables, and CLI
// flags. Every resolved value remembers where it came from so `casepipe
// config` style debugging stays honest.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openjurist/casepipe/internal/verify"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// ResolveOptions carries the CLI-flag overrides into resolution. A field is
// applied only when non-empty, so flags the user never set cannot mask a
// config-file or environment value.
type ResolveOptions struct {
	ConfigPath     string
	CLIDBPath      string
	CLIIndexURL    string
	CLIConcurrency string
	CLIStrict      string
	CLIOrder       string
}

// ResolvedConfig is the fully-resolved configuration.
type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	DBPath      ResolvedValue `json:"db_path"`
	IndexURL    ResolvedValue `json:"index_url"`
	IndexRPS    ResolvedValue `json:"index_rps"`
	Concurrency ResolvedValue `json:"concurrency"`
	Strict      ResolvedValue `json:"strict"`
	Order       ResolvedValue `json:"order"`

	Weights verify.Weights `json:"quality_weights"`
}

type fileConfig struct {
	DBPath      string `yaml:"db_path"`
	Concurrency int    `yaml:"concurrency"`
	Strict      *bool  `yaml:"strict"`
	Order       string `yaml:"order"`
	Index       struct {
		URL               string  `yaml:"url"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"index"`
	Quality struct {
		ValidatedWeight float64 `yaml:"validated_weight"`
		FoundWeight     float64 `yaml:"found_weight"`
	} `yaml:"quality"`
}

// DefaultConfigPath returns ~/.casepipe/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".casepipe", "config.yaml")
}

// Resolve loads the config file (when present) and applies env and CLI
// overrides.
func Resolve(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath: path,
		Weights:    verify.DefaultWeights(),
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.Order, cfg.Order, SourceConfig, path)
		apply(&out.IndexURL, cfg.Index.URL, SourceConfig, path)
		if cfg.Index.RequestsPerSecond > 0 {
			apply(&out.IndexRPS, strconv.FormatFloat(cfg.Index.RequestsPerSecond, 'g', -1, 64), SourceConfig, path)
		}
		if cfg.Concurrency > 0 {
			apply(&out.Concurrency, strconv.Itoa(cfg.Concurrency), SourceConfig, path)
		}
		if cfg.Strict != nil {
			apply(&out.Strict, strconv.FormatBool(*cfg.Strict), SourceConfig, path)
		}
		if cfg.Quality.ValidatedWeight > 0 {
			out.Weights.Validated = cfg.Quality.ValidatedWeight
		}
		if cfg.Quality.FoundWeight > 0 {
			out.Weights.Found = cfg.Quality.FoundWeight
		}
	}

	applyEnv(&out.DBPath, "CASEPIPE_DB")
	applyEnv(&out.IndexURL, "CASEPIPE_INDEX_URL")
	applyEnv(&out.IndexRPS, "CASEPIPE_INDEX_RPS")
	applyEnv(&out.Concurrency, "CASEPIPE_CONCURRENCY")
	applyEnv(&out.Strict, "CASEPIPE_STRICT")
	applyEnv(&out.Order, "CASEPIPE_ORDER")

	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.IndexURL, opts.CLIIndexURL, SourceCLI, "--index-url")
	apply(&out.Concurrency, opts.CLIConcurrency, SourceCLI, "--concurrency")
	apply(&out.Strict, opts.CLIStrict, SourceCLI, "--strict")
	apply(&out.Order, opts.CLIOrder, SourceCLI, "--order")

	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}
	return out, nil
}

// ConcurrencyValue parses the resolved concurrency, or returns fallback.
func (r ResolvedConfig) ConcurrencyValue(fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.Concurrency.Value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// StrictValue parses the resolved strict flag, or returns fallback.
func (r ResolvedConfig) StrictValue(fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(r.Strict.Value))
	if err != nil {
		return fallback
	}
	return b
}

// IndexRPSValue parses the resolved index rate limit, or returns fallback.
func (r ResolvedConfig) IndexRPSValue(fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(r.IndexRPS.Value), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
