package main

import (
	"fmt"

	"github.com/arthur-debert/nedb/config"
	"github.com/arthur-debert/nedb/persistence"
	"github.com/arthur-debert/nedb/store"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dataPath   string

	ds *store.Datastore
)

var rootCmd = &cobra.Command{
	Use:   "nedb",
	Short: "nedb CLI",
	Long:  "nedb is an embeddable document store; this CLI opens a data file and runs one operation against it.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.Load(configPath)
		if err != nil {
			return err
		}
		path := dataPath
		if path == "" {
			path = cfg.DataFile
		}

		ds = store.New(store.Config{
			Collaborator: persistence.NewJSONFile(path),
			Timestamps:   cfg.Timestamps,
		})
		if err := ds.LoadDatabase(); err != nil {
			return fmt.Errorf("load database: %w", err)
		}

		for _, spec := range cfg.Indexes {
			if err := ds.EnsureIndex(store.EnsureIndexOptions{
				FieldName:          spec.Field,
				Unique:             spec.Unique,
				Sparse:             spec.Sparse,
				ExpireAfterSeconds: spec.ExpireAfterSeconds,
			}); err != nil {
				return fmt.Errorf("ensure-index %s: %w", spec.Field, err)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if ds != nil {
			ds.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a nedb YAML config file")
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "path to the data file (overrides the config's data_file)")

	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(ensureIndexCmd)
	rootCmd.AddCommand(replCmd)
}
