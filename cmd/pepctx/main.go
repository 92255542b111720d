// PepContext - peptide to protein context mapper
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ChrisMcGann/pepcontext/cmd/pepctx/cmd"
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
