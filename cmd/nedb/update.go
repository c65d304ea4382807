package main

import (
	"github.com/arthur-debert/nedb/document"
	"github.com/arthur-debert/nedb/store"
	"github.com/spf13/cobra"
)

var (
	updateMulti  bool
	updateUpsert bool
)

var updateCmd = &cobra.Command{
	Use:   "update <json-query> <json-update>",
	Short: "Update documents matching a query",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := parseDoc(args[0])
		if err != nil {
			return err
		}
		upd, err := parseDoc(args[1])
		if err != nil {
			return err
		}
		res, err := ds.Update(query, upd, store.UpdateOptions{
			Multi:             updateMulti,
			Upsert:            updateUpsert,
			ReturnUpdatedDocs: true,
		})
		if err != nil {
			return err
		}
		switch updated := res.Updated.(type) {
		case document.D:
			return printDoc(updated)
		case []document.D:
			return printDocs(updated)
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateMulti, "multi", false, "update every match instead of just the first")
	updateCmd.Flags().BoolVar(&updateUpsert, "upsert", false, "insert a document built from the query if nothing matches")
}
