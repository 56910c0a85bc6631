package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/jchantrell/packbnk/internal/export"
	"github.com/jchantrell/packbnk/internal/pack"
	"github.com/jchantrell/packbnk/internal/utils"
)

var (
	extractSuffixes []string
	flatten         bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <pack> <output-dir>",
	Short: "Copy files out of a pack",
	Long: `Extract writes the stored bytes of pack entries to an output directory,
keeping their directory structure unless --flatten is set. Compressed
entries are written as stored.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()

		c, err := pack.Open(args[0])
		if err != nil {
			return err
		}
		defer c.Close()

		entries := c.Entries()
		if len(extractSuffixes) > 0 {
			entries = c.FindBySuffix(extractSuffixes...)
		}
		if len(entries) == 0 {
			slog.Info("No files to extract", "pack", c.Path)
			return nil
		}

		var opts []export.Option
		if flatten {
			opts = append(opts, export.WithFlatten())
		}

		progress := utils.NewProgress(len(entries), progressEnabled())
		written, err := export.NewExporter(args[1], opts...).ExportEntries(entries, func(current, total int, description string) {
			progress.Update(current, description)
		})
		progress.Finish()
		if err != nil {
			return fmt.Errorf("extracting %s: %w", c.Path, err)
		}

		elapsed := time.Since(start)
		fmt.Printf("Files extracted: %s (%s)\n", utils.Number(int64(len(entries))), utils.Bytes(written))
		fmt.Printf("Duration: %s\n", utils.Duration(elapsed))
		fmt.Printf("Rate: %s files/sec\n", utils.Rate(len(entries), elapsed))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringSliceVar(&extractSuffixes, "suffix", nil, "only extract paths ending with these suffixes")
	extractCmd.Flags().BoolVar(&flatten, "flatten", false, "write all files into the output directory, joining path segments with @")
}
