package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/nedb/cursor"
	"github.com/spf13/cobra"
)

var (
	findSort       string
	findSkip       int
	findLimit      int
	findProjection string
	findOne        bool
)

var findCmd = &cobra.Command{
	Use:   "find [json-query]",
	Short: "Find documents matching a query",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		queryStr := ""
		if len(args) == 1 {
			queryStr = args[0]
		}
		query, err := parseDoc(queryStr)
		if err != nil {
			return err
		}

		if findOne {
			doc, err := ds.FindOne(query)
			if err != nil {
				return err
			}
			if doc == nil {
				return nil
			}
			return printDoc(doc)
		}

		c := ds.Find(query)
		if findSort != "" {
			spec, err := parseSortSpec(findSort)
			if err != nil {
				return err
			}
			c = c.Sort(spec)
		}
		if cmd.Flags().Changed("skip") {
			c = c.Skip(findSkip)
		}
		if cmd.Flags().Changed("limit") {
			c = c.Limit(findLimit)
		}
		if findProjection != "" {
			proj, err := parseDoc(findProjection)
			if err != nil {
				return err
			}
			c = c.Projection(proj)
		}

		res, err := c.Exec()
		if err != nil {
			return err
		}
		return printDocs(res.Docs)
	},
}

func init() {
	findCmd.Flags().StringVar(&findSort, "sort", "", "comma-separated field:direction pairs, e.g. age:1,name:-1")
	findCmd.Flags().IntVar(&findSkip, "skip", 0, "number of matches to skip")
	findCmd.Flags().IntVar(&findLimit, "limit", 0, "maximum number of matches to return")
	findCmd.Flags().StringVar(&findProjection, "projection", "", "JSON projection spec, e.g. {\"name\":1}")
	findCmd.Flags().BoolVar(&findOne, "one", false, "return only the first match")
}

func parseSortSpec(s string) ([]cursor.SortField, error) {
	var fields []cursor.SortField
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid sort field %q, want path:direction", part)
		}
		dir, err := strconv.Atoi(kv[1])
		if err != nil {
			return nil, fmt.Errorf("invalid sort direction in %q: %w", part, err)
		}
		fields = append(fields, cursor.SortField{Path: kv[0], Dir: dir})
	}
	return fields, nil
}
