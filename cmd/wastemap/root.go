package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecomap/wastemap/internal/config"
	"github.com/ecomap/wastemap/internal/database"
	"github.com/ecomap/wastemap/internal/logging"
	"github.com/ecomap/wastemap/internal/markers"
)

var (
	configDir string
	logLevel  string
	logToFile bool
)

// app holds what every command shares once the root pre-run is done.
type app struct {
	settings config.Settings
	slog     *logging.SlogManager
	logger   *slog.Logger
	out      io.Writer
	logFile  *os.File
}

var env *app

var rootCmd = &cobra.Command{
	Use:   "wastemap",
	Short: "Waste site map widget",
	Long:  "Serves an interactive map of illegal dumps, landfill polygons and waste-reception points with clustering and a details popup.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Name())
		if err != nil {
			return err
		}
		env = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if env == nil {
			return nil
		}
		err := env.close()
		env = nil
		return err
	},
	SilenceUsage: true,
}

func setup(name string) (*app, error) {
	cfgErr := config.Load(configDir)
	if logLevel != "" {
		config.Set("logLevel", logLevel)
	}

	a := &app{settings: config.Get(), slog: logging.NewSlogManager()}

	var file io.Writer
	if logToFile {
		f, err := logging.OpenSessionLog(a.settings.LogsDir, name, time.Now())
		if err != nil {
			return nil, err
		}
		a.logFile = f
		file = f
	} else {
		// keep stdout for command output
		file = os.Stderr
	}

	var sinks []io.Writer
	var graylogErr error
	if a.settings.Graylog.Enabled {
		w, err := a.slog.Graylog(a.settings.Graylog.Address)
		if err != nil {
			graylogErr = err
		} else {
			sinks = append(sinks, w)
		}
	}

	a.slog.Setup(file, a.settings.LogLevel, sinks...)
	a.logger = a.slog.Logger()
	a.out = file

	if cfgErr != nil {
		a.logger.Warn("Using default configuration", "error", cfgErr)
	}
	if graylogErr != nil {
		a.logger.Error("Graylog disabled", "error", graylogErr)
	}
	return a, nil
}

// component returns a tagged zerolog logger writing next to the slog output.
func (a *app) component(name string) *logging.Component {
	return logging.NewComponent(a.out, a.settings.LogLevel, name)
}

// loadStore picks the catalog source: database, file override, or the
// embedded catalog.
func (a *app) loadStore(fromDB bool, catalogPath string) (*markers.Store, error) {
	switch {
	case fromDB:
		if err := checkCatalogDB(a.settings.DB); err != nil {
			return nil, err
		}
		m := database.NewManager(a.component("database").Zerolog())
		if err := m.Connect(a.settings.DB); err != nil {
			return nil, err
		}
		defer m.Close()
		return m.LoadCatalog()
	case catalogPath != "":
		a.logger.Info("Loading catalog", "path", catalogPath)
		return markers.LoadFile(catalogPath)
	default:
		return markers.Embedded(), nil
	}
}

// errNoCatalogDB is returned when --from-db would read a fresh in-memory
// sqlite database that nothing has seeded.
var errNoCatalogDB = errors.New("reading the catalog from sqlite needs db.path in " + config.FileName)

func checkCatalogDB(cfg config.DatabaseConfig) error {
	if (cfg.Driver == "" || cfg.Driver == "sqlite") && cfg.Path == "" {
		return errNoCatalogDB
	}
	return nil
}

func (a *app) close() error {
	err := a.slog.Close()
	if a.logFile != nil {
		if cerr := a.logFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing "+config.FileName)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logToFile, "log-file", false, "write logs to a session file in logsDir")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
