package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/taxdeedflow/extraction-engine/cmd/taxflow/commands"
)

func main() {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
