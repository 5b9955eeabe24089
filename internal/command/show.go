// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"fmt"
	"strconv"

	"github.com/intel/fasthuff/compress/huffman"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type showCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	tablePath      string
}

func newShowCommandeer(rootCommandeer *RootCommandeer) *showCommandeer {
	commandeer := &showCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "show [options]",
		Short: "Print the codes of a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			huffmanTable, err := rootCommandeer.readTable(commandeer.tablePath)
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Value", "Length", "Code"})
			for _, row := range codeRows(huffmanTable) {
				tw.AppendRow(row)
			}
			tw.AppendFooter(table.Row{"", "Values", huffmanTable.NumOrderedValues()})
			tw.Render()

			return nil
		},
	}

	cmd.Flags().StringVarP(&commandeer.tablePath, "table", "t", "", "Table file")
	cmd.MarkFlagRequired("table") // nolint: errcheck

	commandeer.cmd = cmd

	return commandeer
}

// codeRows lists the codes in canonical order
func codeRows(huffmanTable *huffman.Table) []table.Row {
	rows := make([]table.Row, 0, huffmanTable.NumOrderedValues())
	for i := 0; i < huffmanTable.NumOrderedValues(); i++ {
		value, err := huffmanTable.OrderedValue(i)
		if err != nil {
			break
		}
		code, length, ok := huffmanTable.Code(value)
		if !ok {
			continue
		}
		rows = append(rows, table.Row{formatValue(value), length, fmt.Sprintf("%0*b", int(length), code)})
	}
	return rows
}

func formatValue(value uint32) string {
	if value >= 0x20 && value < 0x7F {
		return strconv.QuoteRune(rune(value))
	}
	return fmt.Sprintf("0x%02X", value)
}
