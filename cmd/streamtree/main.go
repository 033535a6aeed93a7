// Command streamtree is the CLI driver for the content-addressed stream
// store: insert, list, inspect, and slice streams from the shell.
package main

import (
	"log"

	"github.com/javanhut/streamtree/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
