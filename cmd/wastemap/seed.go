package main

import (
	"github.com/spf13/cobra"

	"github.com/ecomap/wastemap/internal/database"
	"github.com/ecomap/wastemap/pkg/core"
)

var (
	seedCatalog string
	seedDump    string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the catalog into the configured database",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := env.loadStore(false, seedCatalog)
		if err != nil {
			return err
		}

		m := database.NewManager(env.component("database").Zerolog())
		if err := m.Connect(env.settings.DB); err != nil {
			return err
		}
		defer m.Close()

		if err := m.Setup(); err != nil {
			return err
		}
		if err := m.SaveCatalog(store); err != nil {
			return err
		}

		for _, c := range core.Categories() {
			env.logger.Info("Seeded category", "category", c, "count", store.Len(c))
		}

		if seedDump != "" {
			return m.DumpMemoryToDisk(seedDump)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedCatalog, "catalog", "", "YAML catalog file to seed instead of the embedded one")
	seedCmd.Flags().StringVar(&seedDump, "dump", "", "also write a sqlite copy of the database to this file")
	rootCmd.AddCommand(seedCmd)
}
