package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "secretstore-api",
	Short: "Secret Store API - Multi-tenant secret storage",
	Long:  `A multi-tenant secret storage API with workspace-scoped capability roles, encrypted values, an immutable audit log, and chat notification delivery.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
