// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

// Package command implements the huffcode command line.
package command

import (
	"io"
	"os"
	"strconv"

	"github.com/intel/fasthuff/compress/huffman"
	"github.com/intel/fasthuff/internal/tablefile"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/nuclio/zap"
	"github.com/spf13/cobra"
)

const (
	defaultFormat        = tablefile.FormatYAML
	defaultMaxCodeLength = 16
)

// RootCommandeer holds the huffcode command tree and the state shared by its commands
type RootCommandeer struct {
	loggerInstance logger.Logger
	cmd            *cobra.Command
	verbose        bool
	formatName     string
	format         tablefile.Format
}

// NewRootCommandeer creates the huffcode command with all of its children
func NewRootCommandeer() *RootCommandeer {
	commandeer := &RootCommandeer{}

	cmd := &cobra.Command{
		Use:           "huffcode [command]",
		Short:         "Build canonical huffman tables and code files with them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return commandeer.initialize()
		},
	}

	defaultFormatName := os.Getenv("HUFFCODE_FORMAT")
	if defaultFormatName == "" {
		defaultFormatName = string(defaultFormat)
	}

	cmd.PersistentFlags().BoolVarP(&commandeer.verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().StringVarP(&commandeer.formatName, "format", "f", defaultFormatName, "Table file format - \"bin\", \"msgpack\" or \"yaml\" (env: HUFFCODE_FORMAT)")

	cmd.AddCommand(
		newBuildCommandeer(commandeer).cmd,
		newEncodeCommandeer(commandeer).cmd,
		newDecodeCommandeer(commandeer).cmd,
		newShowCommandeer(commandeer).cmd,
	)

	commandeer.cmd = cmd

	return commandeer
}

// Execute uses os.Args to execute the command
func (rc *RootCommandeer) Execute() error {
	return rc.cmd.Execute()
}

// GetCmd returns the underlying cobra command
func (rc *RootCommandeer) GetCmd() *cobra.Command {
	return rc.cmd
}

func (rc *RootCommandeer) initialize() error {
	var err error

	rc.format, err = tablefile.ParseFormat(rc.formatName)
	if err != nil {
		return errors.Wrap(err, "Failed to resolve table format")
	}

	rc.loggerInstance, err = rc.createLogger()
	if err != nil {
		return errors.Wrap(err, "Failed to create logger")
	}

	rc.loggerInstance.DebugWith("Initialized", "format", rc.format)

	return nil
}

func (rc *RootCommandeer) createLogger() (logger.Logger, error) {
	var loggerLevel nucliozap.Level

	if rc.verbose {
		loggerLevel = nucliozap.DebugLevel
	} else {
		loggerLevel = nucliozap.InfoLevel
	}

	loggerInstance, err := nucliozap.NewNuclioZapCmd("huffcode", loggerLevel, rc.cmd.ErrOrStderr())
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create logger")
	}

	return loggerInstance, nil
}

func (rc *RootCommandeer) readTable(path string) (*huffman.Table, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read table file")
	}

	description, err := tablefile.Unmarshal(rc.format, contents)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decode table file %s", path)
	}

	table, err := description.Table()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to rebuild table from %s", path)
	}
	table.SetLogger(rc.loggerInstance)

	rc.loggerInstance.DebugWith("Read table",
		"path", path,
		"values", table.NumOrderedValues(),
		"maxLength", table.MaxUsedLength())

	return table, nil
}

func (rc *RootCommandeer) writeTable(path string, table *huffman.Table) error {
	description, err := tablefile.Describe(table)
	if err != nil {
		return errors.Wrap(err, "Failed to describe table")
	}

	contents, err := tablefile.Marshal(rc.format, description)
	if err != nil {
		return errors.Wrap(err, "Failed to encode table")
	}

	return rc.writeOutput(path, contents)
}

// writeOutput writes to path, or to the command output when path is empty
func (rc *RootCommandeer) writeOutput(path string, contents []byte) error {
	if path == "" {
		if _, err := rc.cmd.OutOrStdout().Write(contents); err != nil {
			return errors.Wrap(err, "Failed to write output")
		}
		return nil
	}

	if err := os.WriteFile(path, contents, 0644); err != nil {
		return errors.Wrapf(err, "Failed to write %s", path)
	}

	return nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		contents, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to read standard input")
		}
		return contents, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %s", path)
	}
	return contents, nil
}

func defaultMaxCodeLengthFromEnv() uint32 {
	value, err := strconv.ParseUint(os.Getenv("HUFFCODE_MAX_CODE_LENGTH"), 10, 32)
	if err != nil || value == 0 {
		return defaultMaxCodeLength
	}
	return uint32(value)
}
