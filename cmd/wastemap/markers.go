package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ecomap/wastemap/internal/adapter"
	"github.com/ecomap/wastemap/internal/mapengine/memory"
	"github.com/ecomap/wastemap/pkg/core"
)

var (
	markersCategory string
	markersJSON     bool
	markersFromDB   bool
	markersCatalog  string
)

var markersCmd = &cobra.Command{
	Use:   "markers",
	Short: "Print the sidebar list for a category",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := core.ParseCategory(markersCategory)
		if err != nil {
			return err
		}

		store, err := env.loadStore(markersFromDB, markersCatalog)
		if err != nil {
			return err
		}

		a := adapter.New(memory.NewLibrary(), store, adapter.DefaultConfig(), env.logger)
		if err := a.SelectCategory(c); err != nil {
			return err
		}
		info := a.MarkersInfo()

		out := cmd.OutOrStdout()
		if markersJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TITLE\tSTATUS\tADDRESS\tLAT\tLON")
		for _, m := range info {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.6f\t%.6f\n",
				m.Title, m.StatusLabel, m.Properties.Address, m.Coordinates.Lat, m.Coordinates.Lon)
		}
		return tw.Flush()
	},
}

func init() {
	markersCmd.Flags().StringVar(&markersCategory, "category", string(core.CategoryDumps), "dumps, polygons or receptions")
	markersCmd.Flags().BoolVar(&markersJSON, "json", false, "print JSON instead of a table")
	markersCmd.Flags().BoolVar(&markersFromDB, "from-db", false, "load the catalog from the configured database")
	markersCmd.Flags().StringVar(&markersCatalog, "catalog", "", "YAML catalog file overriding the embedded one")
	rootCmd.AddCommand(markersCmd)
}
