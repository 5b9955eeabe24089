// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/intel/fasthuff/compress/bitstream"
	"github.com/nuclio/errors"
	"github.com/spf13/cobra"
)

// an encoded file starts with the number of symbols it holds
const countSize = 4

type codeOptions struct {
	tablePath  string
	inputPath  string
	outputPath string
	stuffing   bool
}

func (o *codeOptions) bitstreamOptions() []bitstream.Option {
	if o.stuffing {
		return []bitstream.Option{bitstream.WithByteStuffing()}
	}
	return nil
}

func addCodeFlags(cmd *cobra.Command, options *codeOptions) {
	cmd.Flags().StringVarP(&options.tablePath, "table", "t", "", "Table file")
	cmd.Flags().StringVarP(&options.inputPath, "input", "i", "", "Input file, standard input if empty")
	cmd.Flags().StringVarP(&options.outputPath, "output", "o", "", "Output file, standard output if empty")
	cmd.Flags().BoolVar(&options.stuffing, "stuffing", false, "Stuff a zero byte after every 0xFF byte of the bitstream")
	cmd.MarkFlagRequired("table") // nolint: errcheck
}

type encodeCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	options        codeOptions
}

func newEncodeCommandeer(rootCommandeer *RootCommandeer) *encodeCommandeer {
	commandeer := &encodeCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "encode [options]",
		Short: "Encode the bytes of a file with a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := rootCommandeer.readTable(commandeer.options.tablePath)
			if err != nil {
				return err
			}

			input, err := readInput(commandeer.options.inputPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if uint64(len(input)) > math.MaxUint32 {
				return errors.Errorf("Input of %d bytes is too large", len(input))
			}

			output := &bytes.Buffer{}
			output.Write(binary.BigEndian.AppendUint32(nil, uint32(len(input))))

			writer := bitstream.NewWriter(output, commandeer.options.bitstreamOptions()...)
			for offset, symbol := range input {
				if err := table.WriteCode(uint32(symbol), writer); err != nil {
					return errors.Wrapf(err, "Failed to encode symbol at offset %d", offset)
				}
			}
			if err := writer.Flush(); err != nil {
				return errors.Wrap(err, "Failed to flush bitstream")
			}

			rootCommandeer.loggerInstance.InfoWith("Encoded",
				"symbols", len(input),
				"bytes", output.Len())

			return rootCommandeer.writeOutput(commandeer.options.outputPath, output.Bytes())
		},
	}

	addCodeFlags(cmd, &commandeer.options)

	commandeer.cmd = cmd

	return commandeer
}
