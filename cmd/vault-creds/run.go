// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hashicorp/vault-credentials-resolver/internal/job"
)

var (
	runName             string
	runUsernameVariable string
	runPasswordVariable string
	runTimeout          time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <credential-id> -- <command> [args...]",
	Short: "Run a command with a credential bound to environment variables",
	Long: `Run a command with a credential bound to environment variables.

The credential is resolved before the command starts; if that fails the command is
not run. The build log ends with "Finished: SUCCESS" or "Finished: FAILURE".`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runName, "name", "vault-creds", "job name written to the build log")
	runCmd.Flags().StringVar(&runUsernameVariable, "username-variable", job.DefaultUsernameVariable,
		"environment variable the username is bound to")
	runCmd.Flags().StringVar(&runPasswordVariable, "password-variable", job.DefaultPasswordVariable,
		"environment variable the password is bound to")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "command timeout, defaults to 30m")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	runner := job.NewRunner(a.store, cmd.OutOrStdout())
	result := runner.Run(ctx, job.Spec{
		Name: runName,
		Bindings: []job.Binding{{
			CredentialID:     args[0],
			UsernameVariable: runUsernameVariable,
			PasswordVariable: runPasswordVariable,
		}},
		Command: args[1:],
		Timeout: runTimeout,
	})

	if result.Status != job.StatusSuccess {
		code := result.ExitCode
		if code == 0 {
			code = 1
		}
		return &exitError{code: code}
	}
	return nil
}
