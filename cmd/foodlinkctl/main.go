// Command foodlinkctl runs operator tasks against a FoodLink database: migrations, NGO
// verification and read-only impact reports.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
