// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"github.com/intel/fasthuff/compress/huffman"
	"github.com/nuclio/errors"
	"github.com/spf13/cobra"
)

// reservedSymbol follows the byte symbols and takes the last code when
// --reserve-last is set.
const reservedSymbol = 0x100

type buildCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	inputPath      string
	outputPath     string
	maxCodeLength  uint32
	reserveLast    bool
}

func newBuildCommandeer(rootCommandeer *RootCommandeer) *buildCommandeer {
	commandeer := &buildCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "build [options]",
		Short: "Build a table from the byte frequencies of a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(commandeer.inputPath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			table, err := commandeer.buildTable(input)
			if err != nil {
				return errors.Wrap(err, "Failed to build table")
			}

			rootCommandeer.loggerInstance.InfoWith("Built table",
				"symbols", len(input),
				"values", table.NumOrderedValues(),
				"maxLength", table.MaxUsedLength())

			return rootCommandeer.writeTable(commandeer.outputPath, table)
		},
	}

	cmd.Flags().StringVarP(&commandeer.inputPath, "input", "i", "", "File to count symbols of, standard input if empty")
	cmd.Flags().StringVarP(&commandeer.outputPath, "output", "o", "", "Table file to write, standard output if empty")
	cmd.Flags().Uint32VarP(&commandeer.maxCodeLength, "max-code-length", "l", defaultMaxCodeLengthFromEnv(), "Longest code length (env: HUFFCODE_MAX_CODE_LENGTH)")
	cmd.Flags().BoolVar(&commandeer.reserveLast, "reserve-last", false, "Keep the last code of the longest length unused")

	commandeer.cmd = cmd

	return commandeer
}

func (b *buildCommandeer) buildTable(input []byte) (*huffman.Table, error) {
	valueBits := uint32(8)
	if b.reserveLast {
		valueBits = 9
	}

	table, err := huffman.NewTable(valueBits)
	if err != nil {
		return nil, err
	}
	table.SetLogger(b.rootCommandeer.loggerInstance)

	var freqs [256]uint64
	for _, symbol := range input {
		freqs[symbol]++
	}
	for symbol, freq := range freqs {
		if err := table.AddValueFreq(uint32(symbol), freq); err != nil {
			return nil, err
		}
	}
	if b.reserveLast {
		if err := table.IncValueFreq(reservedSymbol); err != nil {
			return nil, err
		}
	}

	if err := table.CalcCodesLength(b.maxCodeLength); err != nil {
		return nil, err
	}
	if b.reserveLast {
		if err := table.RemoveLastCode(); err != nil {
			return nil, err
		}
	}
	if err := table.CalcTables(); err != nil {
		return nil, err
	}

	return table, nil
}
