// Package config loads pgsqlgen's runtime configuration: the render
// options plus the connection options the adapter forwards to the
// driver. Loading is layered with koanf: defaults, then a YAML file,
// then environment variables, then flags, each overriding the last.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/pgsqlgen/pkg/adapter"
	"github.com/leapstack-labs/pgsqlgen/pkg/render"
)

// EnvPrefix is the environment variable namespace config reads from,
// e.g. PGSQLGEN_POSTGRES_MAP_TYPE.
const EnvPrefix = "PGSQLGEN_"

// FileNames are the config file names searched for, in priority order.
var FileNames = []string{"pgsqlgen.yaml", "pgsqlgen.yml"}

// Config is the fully resolved, unmarshaled configuration: the
// renderer's map-column settings plus the connection options passed
// through to the driver.
type Config struct {
	PostgresMapType string `koanf:"postgres_map_type"`
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	Database        string `koanf:"database"`
	Username        string `koanf:"username"`
	Password        string `koanf:"password"`
	SSLMode         string `koanf:"sslmode"`
}

// RenderConfig narrows Config to the options pkg/render consumes.
func (c Config) RenderConfig() render.Config {
	return render.Config{MapType: c.PostgresMapType}
}

// AdapterConfig narrows Config to the options pkg/adapter consumes.
func (c Config) AdapterConfig() adapter.Config {
	return adapter.Config{
		Host:     c.Host,
		Port:     c.Port,
		Database: c.Database,
		Username: c.Username,
		Password: c.Password,
		SSLMode:  c.SSLMode,
	}
}

// Load resolves Config from defaults, an optional config file, the
// PGSQLGEN_ environment, and CLI flags, in that order of increasing
// precedence. The port default is applied later by adapter.Config
// itself, so an explicit 0 here is not mistaken for a user override.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"sslmode": "disable",
	}, "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: defaults: %w", err)
	}

	path := cfgFile
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("config: env: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Config{}, fmt.Errorf("config: flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	for _, name := range FileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}
