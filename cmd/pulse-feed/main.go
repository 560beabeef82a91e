// Command pulse-feed streams records from the Pulse API, either as JSON
// lines on stdout or appended to a Redis stream.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
