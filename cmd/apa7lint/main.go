// Package main provides the entry point for the APA7 compliance lint engine.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "apa7lint",
	Short: "APA7 + CUN compliance lint engine",
	Long:  "apa7lint analyzes academic documents against APA7 and institutional rules using a set of concurrent rule agents, and reports findings, a compliance score and a critical review.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
