package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomap/wastemap/pkg/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"map": { "zoom": 11, "center": { "lat": 47.3, "lon": 39.9 } },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 11, viper.GetInt("map.zoom"))
	assert.Equal(t, 47.3, viper.GetFloat64("map.center.lat"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, 47.222109, viper.GetFloat64("map.center.lat"))
	assert.Equal(t, 39.718813, viper.GetFloat64("map.center.lon"))
	assert.Equal(t, 9, viper.GetInt("map.zoom"))
	assert.Equal(t, "dumps", viper.GetString("map.category"))
	assert.Equal(t, "800ms", viper.GetString("loader.delay"))
	assert.Equal(t, ":8080", viper.GetString("http.addr"))
	assert.Equal(t, "", viper.GetString("catalog.path"))
	assert.Equal(t, "sqlite", viper.GetString("db.driver"))
	assert.Equal(t, "wastemap", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	// defaults are still usable
	assert.Equal(t, ":8080", Get().HTTPAddr)
}

func TestGet_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	s := Get()

	assert.Equal(t, core.Coordinates{Lat: 47.222109, Lon: 39.718813}, s.Center)
	assert.Equal(t, 9, s.Zoom)
	assert.Equal(t, core.CategoryDumps, s.Category)
	assert.Equal(t, 800*time.Millisecond, s.LoaderDelay)
	assert.False(t, s.FromDB)
	assert.Equal(t, "sqlite", s.DB.Driver)
	assert.Equal(t, "5432", s.DB.Port)
	assert.False(t, s.Graylog.Enabled)
}

func TestGet_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"map": { "category": "receptions" },
		"loader": { "delay": "2s" },
		"catalog": { "fromDB": true },
		"db": { "driver": "postgres", "host": "db", "database": "eco" },
		"graylog": { "enabled": true, "address": "gl:12201" }
	}`)
	require.NoError(t, Load(dir))

	s := Get()
	assert.Equal(t, core.CategoryReceptions, s.Category)
	assert.Equal(t, 2*time.Second, s.LoaderDelay)
	assert.True(t, s.FromDB)
	assert.Equal(t, "postgres", s.DB.Driver)
	assert.Equal(t, "db", s.DB.Host)
	assert.Equal(t, "eco", s.DB.Database)
	assert.Equal(t, GraylogConfig{Enabled: true, Address: "gl:12201"}, s.Graylog)
}

func TestGet_UnknownCategoryFallsBack(t *testing.T) {
	t.Cleanup(viper.Reset)
	Set("map.category", "landfills")

	assert.Equal(t, core.CategoryDumps, Get().Category)
}
