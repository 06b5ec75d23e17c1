// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/tohyomap/pollcsv/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
