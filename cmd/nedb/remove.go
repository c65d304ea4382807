package main

import (
	"fmt"

	"github.com/arthur-debert/nedb/store"
	"github.com/spf13/cobra"
)

var removeMulti bool

var removeCmd = &cobra.Command{
	Use:   "remove <json-query>",
	Short: "Remove documents matching a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := parseDoc(args[0])
		if err != nil {
			return err
		}
		n, err := ds.Remove(query, store.RemoveOptions{Multi: removeMulti})
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

func init() {
	removeCmd.Flags().BoolVar(&removeMulti, "multi", false, "remove every match instead of just the first")
}
