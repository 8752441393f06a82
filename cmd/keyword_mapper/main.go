// Package main provides the entry point for the keyword mapper CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "keyword_mapper",
	Short: "Keyword market-map engine",
	Long:  "Keyword mapper collects real job postings for a target role, extracts the keywords employers actually ask for, and ranks them into a market map.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
