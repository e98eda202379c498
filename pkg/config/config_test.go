package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, "", cfg.PostgresMapType)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, filepath.Join(dir, "pgsqlgen.yaml"), "postgres_map_type: jsonb\nsslmode: require\nhost: db.internal\n")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "jsonb", cfg.PostgresMapType)
	assert.Equal(t, "require", cfg.SSLMode)
	assert.Equal(t, "db.internal", cfg.Host)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, filepath.Join(dir, "pgsqlgen.yaml"), "host: db.internal\n")
	t.Setenv("PGSQLGEN_HOST", "db.env")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "db.env", cfg.Host)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PGSQLGEN_HOST", "db.env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("host", "", "")
	require.NoError(t, flags.Set("host", "db.flag"))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "db.flag", cfg.Host)
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, filepath.Join(dir, "pgsqlgen.yaml"), "host: db.internal\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("host", "", "")

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Host)
}

func TestLoad_ExplicitFilePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "database: widgets\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "widgets", cfg.Database)
}

func TestConfig_RenderConfigAndAdapterConfig(t *testing.T) {
	cfg := Config{
		PostgresMapType: "jsonb",
		Host:            "db.internal",
		Port:            5433,
		Database:        "widgets",
		Username:        "u",
		Password:        "p",
		SSLMode:         "require",
	}
	assert.Equal(t, "jsonb", cfg.RenderConfig().MapType)

	adapterCfg := cfg.AdapterConfig()
	assert.Equal(t, "db.internal", adapterCfg.Host)
	assert.Equal(t, 5433, adapterCfg.Port)
	assert.Equal(t, "widgets", adapterCfg.Database)
	assert.Equal(t, "u", adapterCfg.Username)
	assert.Equal(t, "p", adapterCfg.Password)
	assert.Equal(t, "require", adapterCfg.SSLMode)
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	return dir
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}
