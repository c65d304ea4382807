package main

import (
	"github.com/spf13/cobra"
)

var insertCmd = &cobra.Command{
	Use:   "insert <json-document>",
	Short: "Insert a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := parseDoc(args[0])
		if err != nil {
			return err
		}
		stored, err := ds.Insert(doc)
		if err != nil {
			return err
		}
		return printDoc(stored)
	},
}
