// Command weft prints build information for the Weft training engine.
// Training itself is driven through the library packages (engine, optim, nn).
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0-dev"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage(os.Stdout)
		return
	}

	switch args[0] {
	case "version":
		fmt.Println("weft", version)
	case "help", "-h", "--help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "weft: unknown command %q\n\n", args[0])
		usage(os.Stderr)
		os.Exit(2)
	}
}

func usage(w *os.File) {
	fmt.Fprint(w, `weft - arena-backed neural network training for Go

usage:

	weft <command>

commands:

	version   print the release version
	help      show this message

To train a model, import the engine, optim and nn packages directly.
`)
}
