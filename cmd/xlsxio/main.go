// Package main provides the xlsxio command line tool.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/logicossoftware/go-xlsxio"
	"github.com/logicossoftware/go-xlsxio/internal/summary"
	"github.com/logicossoftware/go-xlsxio/model"
)

var (
	outputPath  string
	pretty      bool
	maxRows     int
	maxCols     int
	ignoreNodes []string

	compression   string
	level         int
	inlineStrings bool
	noStyles      bool
	strict        bool

	sheetName string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xlsxio",
		Short: "Read, inspect and rewrite xlsx workbooks",
		Long: `xlsxio decodes Office Open XML spreadsheets into a workbook model
and writes them back out, optionally with a different archive compression.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().IntVar(&maxRows, "max-rows", 0, "Fail when a sheet holds more rows (0: unlimited)")
	rootCmd.PersistentFlags().IntVar(&maxCols, "max-cols", 0, "Fail when a row holds more cells (0: unlimited)")
	rootCmd.PersistentFlags().StringSliceVar(&ignoreNodes, "ignore", nil, "Worksheet elements to skip while reading")

	inspectCmd := &cobra.Command{
		Use:   "inspect [input.xlsx]",
		Short: "Print a JSON summary of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	inspectCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	inspectCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	repackCmd := &cobra.Command{
		Use:   "repack [input.xlsx] [output.xlsx]",
		Short: "Decode a workbook and encode it again",
		Args:  cobra.ExactArgs(2),
		RunE:  runRepack,
	}
	repackCmd.Flags().StringVar(&compression, "compression", "deflate", "Archive compression: store, deflate, zstd, lz4, brotli")
	repackCmd.Flags().IntVar(&level, "level", xlsxio.DefaultCompressionLevel, "Compression level (codec default when -1)")
	repackCmd.Flags().BoolVar(&inlineStrings, "inline-strings", false, "Write strings inline instead of into the shared table")
	repackCmd.Flags().BoolVar(&noStyles, "no-styles", false, "Drop cell styles")
	repackCmd.Flags().BoolVar(&strict, "strict", false, "Fail when the input produced warnings")

	cellsCmd := &cobra.Command{
		Use:   "cells [input.xlsx]",
		Short: "Print the cells of one sheet as tab separated text",
		Args:  cobra.ExactArgs(1),
		RunE:  runCells,
	}
	cellsCmd.Flags().StringVarP(&sheetName, "sheet", "s", "", "Sheet name (default: first sheet)")

	rootCmd.AddCommand(inspectCmd, repackCmd, cellsCmd)
	return rootCmd
}

func readOptions() []xlsxio.ReadOption {
	opts := []xlsxio.ReadOption{xlsxio.WithMaxRows(maxRows), xlsxio.WithMaxCols(maxCols)}
	if len(ignoreNodes) > 0 {
		opts = append(opts, xlsxio.WithIgnoreNodes(ignoreNodes...))
	}
	return opts
}

func runInspect(cmd *cobra.Command, args []string) error {
	wb, warns, err := xlsxio.DecodeFile(args[0], readOptions()...)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	var jsonData []byte
	s := summary.Of(wb, warns)
	if pretty {
		jsonData, err = json.MarshalIndent(s, "", "  ")
	} else {
		jsonData, err = json.Marshal(s)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return err
}

func runRepack(cmd *cobra.Command, args []string) error {
	comp, err := xlsxio.ParseCompression(compression)
	if err != nil {
		return err
	}

	wb, warns, err := xlsxio.DecodeFile(args[0], readOptions()...)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if len(warns) > 0 {
		if strict {
			return fmt.Errorf("%d warnings:\n%s", len(warns), xlsxio.FormatWarnings(warns))
		}
		fmt.Fprintln(cmd.ErrOrStderr(), xlsxio.FormatWarnings(warns))
	}

	err = xlsxio.EncodeFile(args[1], wb,
		xlsxio.WithCompression(comp),
		xlsxio.WithCompressionLevel(level),
		xlsxio.WithSharedStrings(!inlineStrings),
		xlsxio.WithStyles(!noStyles),
	)
	if err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}
	return nil
}

func runCells(cmd *cobra.Command, args []string) error {
	wb, _, err := xlsxio.DecodeFile(args[0], readOptions()...)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if len(wb.Worksheets) == 0 {
		return fmt.Errorf("%s has no worksheets", args[0])
	}
	ws := wb.Worksheets[0]
	if sheetName != "" {
		if ws = wb.Sheet(sheetName); ws == nil {
			return fmt.Errorf("no sheet named %q", sheetName)
		}
	}
	return writeCells(cmd.OutOrStdout(), ws)
}

func writeCells(w io.Writer, ws *model.Worksheet) error {
	for _, r := range ws.Rows {
		for _, c := range r.Cells {
			if c.Value == nil {
				continue
			}
			text := strings.NewReplacer("\t", " ", "\n", " ").Replace(c.Value.Text())
			if _, err := fmt.Fprintf(w, "%s\t%s\n", c.Address(r.Number), text); err != nil {
				return err
			}
		}
	}
	return nil
}
