// Command update-cache regenerates the dataset gob cache from the raw
// survey files.
//
// Usage:
//
//	go run ./cmd/update-cache
//
// This reads from ./canyon-data/ (falling back to the embedded copy) and
// writes to ./canyon-cache/.
package main

import (
	"fmt"
	"os"

	"github.com/parker-boom/polycanyon"
)

func main() {
	fmt.Println("Regenerating canyon cache from raw data...")

	if err := polycanyon.RegenerateCache(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := polycanyon.ValidateData(); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Cache regenerated and validated.")
}
