// Command nedb is a thin CLI front end over the store package, letting an
// operator inspect and edit a data file from a shell the same way nanostore's
// cmd/migrate binary drives its store library.
// Build with: go build -o bin/nedb ./cmd/nedb
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
