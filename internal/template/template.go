// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package template

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

// tmplErrorRegexes match template execution errors that can print parts of
// the template input. The patterns themselves never contain secret data.
var tmplErrorRegexes []*regexp.Regexp

func init() {
	tmplErrorPrefixRe := regexp.MustCompile(
		`^template:`,
	)
	tmplErrorLocationRe := regexp.MustCompile(
		fmt.Sprintf(`%s .+ executing .+ at .+:`, tmplErrorPrefixRe),
	)
	// e.g.: template: tmpl1:2:40: executing "tmpl1" at <.>: range can't iterate over {map[...
	tmplErrorRe := regexp.MustCompile(
		`range can't iterate over|range over send-only channel|if/with can't use|error calling [a-z0-9]+:`)
	tmplErrorRegexes = []*regexp.Regexp{
		regexp.MustCompile(
			fmt.Sprintf(`%s %s`,
				tmplErrorLocationRe, tmplErrorRe)),
		regexp.MustCompile(
			fmt.Sprintf(`%s %s`,
				tmplErrorPrefixRe, tmplErrorRe)),
	}
}

// Data is the input to a credential output template.
type Data struct {
	ID       string
	Path     string
	Username string
	Password string
	Version  int
	// Fields holds every field of the secret.
	Fields map[string]string
}

// CredentialTemplate renders a resolved credential, for example
// `{{ .Username }}:{{ .Password | b64enc }}`. Only a small, allow-listed set
// of sprig functions is available.
type CredentialTemplate struct {
	tmpl *template.Template
	// noRedactErrors disables redacting potentially sensitive information
	// from template execution errors.
	noRedactErrors bool
}

// Parse parses text into a CredentialTemplate. Referencing a missing entry
// of .Fields is an execution error.
func Parse(name, text string) (*CredentialTemplate, error) {
	if text == "" {
		return nil, errors.New("template is empty")
	}

	tmpl, err := template.New(name).Funcs(funcMap).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, err
	}

	return &CredentialTemplate{
		tmpl: tmpl,
	}, nil
}

func (t *CredentialTemplate) Name() string {
	return t.tmpl.Name()
}

func (t *CredentialTemplate) Render(data *Data) ([]byte, error) {
	if data == nil {
		return nil, errors.New("template data is nil")
	}

	var b bytes.Buffer
	if err := t.tmpl.Execute(&b, data); err != nil {
		return nil, t.maybeRedactError(err)
	}

	return b.Bytes(), nil
}

func (t *CredentialTemplate) maybeRedactError(err error) error {
	if t.noRedactErrors {
		return err
	}

	for _, re := range tmplErrorRegexes {
		m := re.FindStringSubmatch(err.Error())
		if len(m) > 0 {
			// include the matching messages for context.
			err = fmt.Errorf("%s <redacted>", strings.Join(m, " "))
			break
		}
	}
	return err
}
