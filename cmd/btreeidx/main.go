// cmd/btreeidx/main.go
//
// btreeidx - interactive B-tree index file manager.
//
// Usage:
//
//	btreeidx
//
// Presents a menu for creating/opening an index file and inserting,
// searching, loading from CSV, printing, and extracting to CSV.
package main

import (
	"os"

	"blocktree/pkg/cli"
)

func main() {
	repl := cli.NewREPL(os.Stdin, os.Stdout, os.Stderr)
	defer repl.Close()

	repl.Run()
}
