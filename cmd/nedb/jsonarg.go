package main

import (
	"fmt"

	"github.com/arthur-debert/nedb/document"
)

func parseDoc(s string) (document.D, error) {
	if s == "" {
		return document.D{}, nil
	}
	d, err := document.UnmarshalDoc([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	return d, nil
}

func printDoc(d document.D) error {
	out, err := document.MarshalDoc(d)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printDocs(docs []document.D) error {
	for _, d := range docs {
		if err := printDoc(d); err != nil {
			return err
		}
	}
	return nil
}
