// taxomap maps URLs and their extracted keywords onto a
// Product > Domain > Segment > Topic taxonomy by fuzzy matching.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/cognicore/taxomap/cmd/taxomap/cmd"
)

func main() {
	// Optional .env with TAXOMAP_* defaults.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
