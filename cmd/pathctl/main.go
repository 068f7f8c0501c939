// Command pathctl runs the college search and career advisor flows from a terminal.
package main

import (
	"os"

	"pathfinder-backend/internal/shared/telemetry"
)

func main() {
	defer telemetry.Sync()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
