// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package template

import (
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// allowedSprigFuncs are the sprig functions exposed to credential templates,
// kept sorted.
var allowedSprigFuncs = []string{
	"b64dec",
	"b64enc",
	"default",
	"join",
	"lower",
	"quote",
	"replace",
	"sha256sum",
	"squote",
	"trim",
	"upper",
}

var funcMap template.FuncMap

func init() {
	all := sprig.TxtFuncMap()
	funcMap = make(template.FuncMap, len(allowedSprigFuncs))
	for _, name := range allowedSprigFuncs {
		funcMap[name] = all[name]
	}
}
