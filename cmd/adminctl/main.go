// Package main is the entry point for adminctl, the administrative
// command-line tool. It registers the init-db and create-user
// sub-commands and executes the command-line interface.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "adminctl",
		Short: "Administrative CLI for the school API",
		Long: `adminctl manages the school API installation from the command line.
It applies database migrations, seeds the default roles and permission
catalog, and creates user accounts interactively.

Database access is configured through the same environment variables the
API server uses (DATABASE_URL, or the individual DB_* variables). A .env
file in the working directory is loaded automatically.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitDBCmd())
	rootCmd.AddCommand(newCreateUserCmd())

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}
	return nil
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stderr)
}
