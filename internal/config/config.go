package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ecomap/wastemap/pkg/core"
)

// FileName is the config file looked up in the config directory.
const FileName = "wastemap.cfg.json"

// DatabaseConfig holds catalog database settings.
type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Path     string `json:"path"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// GraylogConfig holds the optional GELF sink.
type GraylogConfig struct {
	Enabled bool   `json:"enabled"`
	Address string `json:"address"`
}

// Settings is the typed view over the loaded configuration.
type Settings struct {
	LogLevel    string
	LogsDir     string
	Center      core.Coordinates
	Zoom        int
	Category    core.Category
	LoaderDelay time.Duration
	HTTPAddr    string
	CatalogPath string
	FromDB      bool
	DB          DatabaseConfig
	Graylog     GraylogConfig
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("map.center.lat", 47.222109)
	viper.SetDefault("map.center.lon", 39.718813)
	viper.SetDefault("map.zoom", 9)
	viper.SetDefault("map.category", string(core.CategoryDumps))

	viper.SetDefault("loader.delay", "800ms")
	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("catalog.path", "")
	viper.SetDefault("catalog.fromDB", false)

	viper.SetDefault("db.driver", "sqlite")
	viper.SetDefault("db.path", "")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "wastemap")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. Defaults are in
// place even when the file cannot be read.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Get returns the current settings. Unknown categories fall back to dumps.
func Get() Settings {
	setDefaults()

	category, err := core.ParseCategory(viper.GetString("map.category"))
	if err != nil {
		category = core.CategoryDumps
	}

	return Settings{
		LogLevel: viper.GetString("logLevel"),
		LogsDir:  viper.GetString("logsDir"),
		Center: core.Coordinates{
			Lat: viper.GetFloat64("map.center.lat"),
			Lon: viper.GetFloat64("map.center.lon"),
		},
		Zoom:        viper.GetInt("map.zoom"),
		Category:    category,
		LoaderDelay: viper.GetDuration("loader.delay"),
		HTTPAddr:    viper.GetString("http.addr"),
		CatalogPath: viper.GetString("catalog.path"),
		FromDB:      viper.GetBool("catalog.fromDB"),
		DB: DatabaseConfig{
			Driver:   viper.GetString("db.driver"),
			Path:     viper.GetString("db.path"),
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
		Graylog: GraylogConfig{
			Enabled: viper.GetBool("graylog.enabled"),
			Address: viper.GetString("graylog.address"),
		},
	}
}

// Set overrides a config value, used for command-line flags.
func Set(key string, value any) {
	viper.Set(key, value)
}
