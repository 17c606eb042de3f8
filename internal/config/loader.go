package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "FSRSCHED_"
	// Delimiter is the key delimiter for nested config.
	Delimiter = "."
)

// flagKeys maps command line flag names to config keys. Flags not listed
// here, such as --config, are not configuration values.
var flagKeys = map[string]string{
	"db":                "db",
	"repos-dir":         "repos_dir",
	"log-level":         "log.level",
	"log-format":        "log.format",
	"request-retention": "fsrs.request_retention",
	"maximum-interval":  "fsrs.maximum_interval",
	"weights":           "fsrs.weights",
	"model":             "fsrs.model",
	"short-term":        "fsrs.short_term",
	"fuzz":              "fsrs.fuzz",
	"seed":              "fsrs.seed",
}

// sections are the nested config blocks addressable from the environment.
var sections = []string{"log", "fsrs"}

// Flags returns the flag set understood by Load. Its defaults are the
// configuration defaults.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", "", "path to a YAML config file")
	fs.String("db", "fsrsched.db", "path to the SQLite database file")
	fs.String("repos-dir", "repos", "directory where git sources are cloned")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("log-format", "text", "log format: text or json")
	fs.Float64("request-retention", 0.9, "target probability of recall")
	fs.Int32("maximum-interval", 36500, "longest interval in days")
	fs.Float64Slice("weights", nil, "model weights, 17 or 19 values")
	fs.String("model", "", "formula version: FSRS-4, FSRS-4.5 or FSRS-5")
	fs.Bool("short-term", true, "use minute-scale learning steps")
	fs.Bool("fuzz", false, "randomize review intervals")
	fs.String("seed", "", "fuzz seed prefix")
	return fs
}

// Loader handles configuration loading from various sources.
type Loader struct {
	k *koanf.Koanf
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{k: koanf.New(Delimiter)}
}

// Load reads configuration with the following priority:
// 1. Flags set on the command line (highest)
// 2. Environment variables
// 3. The file named by --config
// 4. Flag defaults (lowest)
func (l *Loader) Load(fs *pflag.FlagSet) (*Config, error) {
	path, err := fs.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read config flag: %w", err)
	}
	if path != "" {
		if err := l.loadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := l.k.Load(env.Provider(EnvPrefix, Delimiter, envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Unchanged flags only fill keys no other source provided.
	if err := l.k.Load(posflag.ProviderWithFlag(fs, Delimiter, l.k, func(f *pflag.Flag) (string, interface{}) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := l.k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				stringToSliceHook(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateWithDetails(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// stringToSliceHook splits a delimited string, as environment variables
// carry lists, into elements for any slice field. Weak typing then converts
// each element to the slice's element type.
func stringToSliceHook(sep string) mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
			return data, nil
		}
		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, sep)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
}

func (l *Loader) loadFile(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return l.k.Load(file.Provider(path), yaml.Parser())
}

// envKey turns FSRSCHED_FSRS_REQUEST_RETENTION into fsrs.request_retention.
// Only the section name is split off so keys may keep their underscores.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + Delimiter + rest
		}
	}
	return key
}
