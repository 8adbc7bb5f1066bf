// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vault-creds",
	Short: "Resolve username/password credentials stored in HashiCorp Vault.",
	Long: `vault-creds resolves username/password credentials stored in HashiCorp Vault,
either printing them or exposing them to a command through environment variables.

The Vault connection is read from --connection-file, or from the VAULT_* environment
variables, before every request to Vault.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	_ = godotenv.Load()
	rootCmd.AddCommand(getCmd, runCmd, listCmd, versionCmd)
	bindRootFlags(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

// exitError is returned by commands whose failure has already been reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
