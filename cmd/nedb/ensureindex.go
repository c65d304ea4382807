package main

import (
	"github.com/arthur-debert/nedb/store"
	"github.com/spf13/cobra"
)

var (
	ensureIndexUnique             bool
	ensureIndexSparse             bool
	ensureIndexExpireAfterSeconds float64
)

var ensureIndexCmd = &cobra.Command{
	Use:   "ensure-index <field>",
	Short: "Create or rebuild an index over a field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.EnsureIndexOptions{
			FieldName: args[0],
			Unique:    ensureIndexUnique,
			Sparse:    ensureIndexSparse,
		}
		if cmd.Flags().Changed("expire-after-seconds") {
			opts.ExpireAfterSeconds = &ensureIndexExpireAfterSeconds
		}
		return ds.EnsureIndex(opts)
	},
}

func init() {
	ensureIndexCmd.Flags().BoolVar(&ensureIndexUnique, "unique", false, "reject documents that duplicate an existing key")
	ensureIndexCmd.Flags().BoolVar(&ensureIndexSparse, "sparse", false, "skip documents missing the field")
	ensureIndexCmd.Flags().Float64Var(&ensureIndexExpireAfterSeconds, "expire-after-seconds", 0, "register this field as a TTL index")
}
