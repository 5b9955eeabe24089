// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"os"

	"github.com/intel/fasthuff/internal/command"
	"github.com/nuclio/errors"
)

func main() {
	if err := command.NewRootCommandeer().Execute(); err != nil {
		errors.PrintErrorStack(os.Stderr, err, 5)
		os.Exit(1)
	}
}
