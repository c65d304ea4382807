package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/arthur-debert/nedb/document"
	"github.com/arthur-debert/nedb/store"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "serve-repl",
	Short: "Read one JSON command per line from stdin and print its result",
	Long: "Each line is a JSON object: {\"op\":\"insert\",\"doc\":{...}}, " +
		"{\"op\":\"find\",\"query\":{...}}, {\"op\":\"update\",\"query\":{...},\"update\":{...},\"multi\":true}, " +
		"or {\"op\":\"remove\",\"query\":{...},\"multi\":true}.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl(os.Stdin, os.Stdout)
	},
}

func runRepl(in *os.File, out *os.File) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := handleReplLine(line, out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func handleReplLine(line string, out *os.File) error {
	cmdDoc, err := parseDoc(line)
	if err != nil {
		return err
	}
	op, _ := cmdDoc["op"].(string)

	switch op {
	case "insert":
		doc, _ := cmdDoc["doc"].(document.D)
		stored, err := ds.Insert(doc)
		if err != nil {
			return err
		}
		return writeDoc(out, stored)

	case "find":
		query, _ := cmdDoc["query"].(document.D)
		res, err := ds.Find(query).Exec()
		if err != nil {
			return err
		}
		for _, d := range res.Docs {
			if err := writeDoc(out, d); err != nil {
				return err
			}
		}
		return nil

	case "update":
		query, _ := cmdDoc["query"].(document.D)
		upd, _ := cmdDoc["update"].(document.D)
		multi, _ := cmdDoc["multi"].(bool)
		upsert, _ := cmdDoc["upsert"].(bool)
		res, err := ds.Update(query, upd, store.UpdateOptions{Multi: multi, Upsert: upsert})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.NumAffected)
		return nil

	case "remove":
		query, _ := cmdDoc["query"].(document.D)
		multi, _ := cmdDoc["multi"].(bool)
		n, err := ds.Remove(query, store.RemoveOptions{Multi: multi})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
		return nil

	default:
		return fmt.Errorf("unknown op %q", op)
	}
}

func writeDoc(out *os.File, d document.D) error {
	line, err := document.MarshalDoc(d)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(line))
	return err
}
