package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ecomap/wastemap/internal/adapter"
	"github.com/ecomap/wastemap/internal/config"
	"github.com/ecomap/wastemap/internal/geo"
	"github.com/ecomap/wastemap/internal/mapengine/memory"
	"github.com/ecomap/wastemap/internal/server"
	"github.com/ecomap/wastemap/internal/widget"
)

var (
	serveAddr    string
	serveFromDB  bool
	serveCatalog string
	serveCenter  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the widget and serve it over HTTP and WebSocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s := env.settings
		if serveAddr == "" {
			serveAddr = s.HTTPAddr
		}
		if serveCatalog == "" {
			serveCatalog = s.CatalogPath
		}

		store, err := env.loadStore(serveFromDB || s.FromDB, serveCatalog)
		if err != nil {
			return err
		}

		opts, err := widgetOptions(s, serveCenter)
		if err != nil {
			return err
		}

		lib := memory.NewLibrary()
		w, err := widget.New(lib, store, opts, env.logger, env.component("dispatcher"))
		if err != nil {
			return err
		}

		loopErr := make(chan error, 1)
		go func() { loopErr <- w.Run(ctx) }()
		lib.MarkReady()

		if err := server.New(w, env.logger).ListenAndServe(ctx, serveAddr); err != nil {
			stop()
			return err
		}

		if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

// widgetOptions builds the widget view from settings. center, when set, is a
// "lat,lon" pair that replaces map.center.
func widgetOptions(s config.Settings, center string) (widget.Options, error) {
	c := s.Center
	if center != "" {
		var err error
		if c, err = geo.ParseCoordinates(center); err != nil {
			return widget.Options{}, fmt.Errorf("--center %q: %w", center, err)
		}
	}
	return widget.Options{
		Adapter: adapter.Config{
			Container: "map",
			Center:    c,
			Zoom:      s.Zoom,
			Category:  s.Category,
		},
		LoaderDelay: s.LoaderDelay,
	}, nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveFromDB, "from-db", false, "load the catalog from the configured database")
	serveCmd.Flags().StringVar(&serveCatalog, "catalog", "", "YAML catalog file overriding the embedded one")
	serveCmd.Flags().StringVar(&serveCenter, "center", "", `initial map center as "lat,lon" (default from config)`)
	rootCmd.AddCommand(serveCmd)
}
