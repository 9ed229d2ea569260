// Treatclock - shared treatment timers for food tolerance induction programs.
package main

import (
	"os"

	"github.com/treatclock/treatclock/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
