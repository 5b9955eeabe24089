// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"bytes"
	"encoding/binary"

	"github.com/intel/fasthuff/compress/bitstream"
	"github.com/nuclio/errors"
	"github.com/spf13/cobra"
)

type decodeCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	options        codeOptions
}

func newDecodeCommandeer(rootCommandeer *RootCommandeer) *decodeCommandeer {
	commandeer := &decodeCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "decode [options]",
		Short: "Decode a file written by encode",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := rootCommandeer.readTable(commandeer.options.tablePath)
			if err != nil {
				return err
			}

			input, err := readInput(commandeer.options.inputPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if len(input) < countSize {
				return errors.Errorf("Encoded input of %d bytes has no symbol count", len(input))
			}
			count := binary.BigEndian.Uint32(input)

			reader := bitstream.NewReader(bytes.NewReader(input[countSize:]), commandeer.options.bitstreamOptions()...)
			output := make([]byte, 0, min(uint64(count), 8*uint64(len(input))))
			for i := uint32(0); i < count; i++ {
				value, err := table.ReadCode(reader)
				if err != nil {
					return errors.Wrapf(err, "Failed to decode symbol %d of %d", i, count)
				}
				if value > 0xFF {
					return errors.Errorf("Decoded value %d is not a byte", value)
				}
				output = append(output, byte(value))
			}

			rootCommandeer.loggerInstance.InfoWith("Decoded", "symbols", count)

			return rootCommandeer.writeOutput(commandeer.options.outputPath, output)
		},
	}

	addCodeFlags(cmd, &commandeer.options)

	commandeer.cmd = cmd

	return commandeer
}
