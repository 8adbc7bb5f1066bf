// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured credentials",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	_, a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCOPE\tPATH\tDESCRIPTION")
	for _, c := range a.store.List() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Scope, c.DisplayName(), c.Description)
	}
	return w.Flush()
}
