// Command moqdump decodes CMAF fragments, initialization segments, and
// LOC objects from disk and prints their structure.
package main

import (
	"fmt"
	"os"

	"github.com/tetsuo/moq/cmd/moqdump/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
