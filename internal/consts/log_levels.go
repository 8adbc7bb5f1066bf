// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package consts

// logr V-levels mapped to human relatable names
// See https://github.com/go-logr/logr#why-v-levels for more info.
const (
	LogLevelWarning = 4
	LogLevelDebug   = 5
	LogLevelTrace   = 6
)
