// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hashicorp/vault-credentials-resolver/internal/template"
)

var (
	getField    string
	getTemplate string
)

var getCmd = &cobra.Command{
	Use:   "get <credential-id>",
	Short: "Print a credential resolved from Vault",
	Long: `Print a credential resolved from Vault.

By default both fields are printed as "username:password". Use --field to print
only one of them, or --template to render the credential with a Go template, e.g.

  vault-creds get db --template '{{ .Username }}:{{ .Password | b64enc }}'

The template has access to .ID, .Path, .Username, .Password, .Version and .Fields.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVar(&getField, "field", "", "print a single field, choices=[username password]")
	getCmd.Flags().StringVar(&getTemplate, "template", "", "render the credential with a Go template")
	getCmd.MarkFlagsMutuallyExclusive("field", "template")
}

func runGet(cmd *cobra.Command, args []string) error {
	var tmpl *template.CredentialTemplate
	if getTemplate != "" {
		var err error
		if tmpl, err = template.Parse("get", getTemplate); err != nil {
			return err
		}
	}

	ctx, a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	c, err := a.store.Lookup(id)
	if err != nil {
		return err
	}
	r, err := a.store.Resolver(id)
	if err != nil {
		return err
	}

	var out string
	switch {
	case tmpl != nil:
		record, err := r.Record(ctx)
		if err != nil {
			return err
		}
		cred, err := r.CredentialFrom(record)
		if err != nil {
			return err
		}
		b, err := tmpl.Render(&template.Data{
			ID:       c.ID,
			Path:     c.Path,
			Username: cred.Username,
			Password: cred.Password,
			Version:  record.Version,
			Fields:   record.Data(),
		})
		if err != nil {
			return err
		}
		out = string(b)
	case getField == "":
		cred, err := r.Credential(ctx)
		if err != nil {
			return err
		}
		out = cred.Username + ":" + cred.Password
	case getField == "username":
		if out, err = r.Username(ctx); err != nil {
			return err
		}
	case getField == "password":
		if out, err = r.Password(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported field %q", getField)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
