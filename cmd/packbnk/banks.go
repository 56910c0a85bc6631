package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/jchantrell/packbnk/internal/audio"
	"github.com/jchantrell/packbnk/internal/bnk"
	"github.com/jchantrell/packbnk/internal/database"
	"github.com/jchantrell/packbnk/internal/export"
	"github.com/jchantrell/packbnk/internal/pack"
	"github.com/jchantrell/packbnk/internal/utils"
)

var (
	allLocales  bool
	workers     int
	strictPaths bool
	bankReports bool
	storeBlobs  bool
	resetIndex  bool
	audioDir    string
	saveIndex   bool
)

var banksCmd = &cobra.Command{
	Use:   "banks [packs...]",
	Short: "Aggregate the sound banks of one or more packs",
	Long: `Banks loads every pack in order, decodes the Wwise sound banks they contain
in parallel and merges them into one table of HIRC objects and embedded audio.
When several packs hold the same bank the later pack wins.

Banks that fail to decode are listed and do not stop the run. With --save or
--database the result is written to a SQLite index.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		packs := cfg.Packs
		if len(args) > 0 {
			packs = args
		}
		if len(packs) == 0 {
			return fmt.Errorf("no packs given, pass them as arguments or set packs in the config file")
		}
		if cmd.Flags().Changed("all-locales") {
			cfg.AllLocales = allLocales
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = workers
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}

		start := time.Now()

		slog.Info("Starting aggregation", "packs", len(packs), "all_locales", cfg.AllLocales)

		var packOpts []pack.Option
		if strictPaths {
			packOpts = append(packOpts, pack.WithStrictPaths())
		}

		// the bank count is only known once discovery has run
		var (
			progress     *utils.Progress
			progressOnce sync.Once
		)
		opts := []audio.Option{
			audio.WithWorkers(cfg.Workers),
			audio.WithAllLocales(cfg.AllLocales),
			audio.WithProgress(func(done, total int, bank string) {
				progressOnce.Do(func() {
					progress = utils.NewProgress(total, progressEnabled())
				})
				progress.Update(done, bank)
			}),
		}
		if bankReports {
			opts = append(opts, audio.WithBankReports())
		}

		res, err := audio.NewLoader(bnk.NewParser(), opts...).LoadPacks(packs, packOpts...)
		if progress != nil {
			progress.Finish()
		}
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Print(res.Summary.String())

		if len(res.WithUnknowns) > 0 {
			fmt.Printf("Banks with unknown or broken objects: %d\n", len(res.WithUnknowns))
			for _, name := range res.WithUnknowns {
				fmt.Printf("  %s\n", name)
			}
		}

		if len(res.Failures) > 0 {
			fmt.Printf("Failed banks: %d\n", len(res.Failures))
			for _, f := range res.Failures {
				fmt.Printf("  %s: %s\n", f.Bank, f.Error)
			}
		}

		blobs, blobBytes := res.BlobCount()
		decoded := len(res.Banks) + len(res.Failures)

		var memEnd runtime.MemStats
		runtime.ReadMemStats(&memEnd)

		fmt.Printf("Banks decoded: %d/%d\n", len(res.Banks), decoded)
		fmt.Printf("Objects: %s\n", utils.Number(int64(res.RecordCount())))
		fmt.Printf("Audio: %s files, %s\n", utils.Number(int64(blobs)), utils.Bytes(blobBytes))
		fmt.Printf("Duration: %s\n", utils.Duration(elapsed))
		fmt.Printf("Rate: %s banks/sec\n", utils.Rate(decoded, elapsed))
		fmt.Printf("Memory usage: %s\n", utils.Bytes(int64(memEnd.Alloc)))

		if audioDir != "" {
			var exportOpts []export.Option
			if flatten {
				exportOpts = append(exportOpts, export.WithFlatten())
			}
			n, err := export.NewExporter(audioDir, exportOpts...).ExportBlobs(res, nil)
			if err != nil {
				return fmt.Errorf("exporting audio: %w", err)
			}
			fmt.Printf("Audio exported: %s to %s\n", utils.Bytes(n), audioDir)
		}

		if cfg.Database == "" && !saveIndex {
			return nil
		}

		return writeIndex(cmd.Context(), res)
	},
}

func writeIndex(ctx context.Context, res *audio.Result) error {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := database.NewDatabase(database.DefaultDatabaseOptions(indexPath()))
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer db.Close()

	if resetIndex {
		if err := db.DropSchema(ctx); err != nil {
			return fmt.Errorf("resetting index: %w", err)
		}
	}
	if err := db.CreateSchema(ctx); err != nil {
		return fmt.Errorf("creating index schema: %w", err)
	}

	opts := database.DefaultBulkInsertOptions()
	opts.BlobData = storeBlobs
	if err := database.NewBulkInserter(db, opts).InsertResult(ctx, res); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}

	fmt.Println("Try running: packbnk lookup <id|name>")

	return nil
}

func init() {
	rootCmd.AddCommand(banksCmd)
	banksCmd.Flags().BoolVar(&allLocales, "all-locales", false, "include localized banks")
	banksCmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent bank decodes (default: number of CPUs)")
	banksCmd.Flags().BoolVar(&strictPaths, "strict", false, "fail on duplicate paths inside a pack")
	banksCmd.Flags().BoolVar(&bankReports, "bank-reports", false, "log a per-type summary for each bank at debug level")
	banksCmd.Flags().BoolVar(&storeBlobs, "store-audio", false, "store audio bytes in the index")
	banksCmd.Flags().BoolVar(&saveIndex, "save", false, "write the index to --database or the default location")
	banksCmd.Flags().BoolVar(&resetIndex, "reset", false, "drop existing index tables before writing")
	banksCmd.Flags().StringVar(&audioDir, "export-audio", "", "write embedded audio to this directory")
	banksCmd.Flags().BoolVar(&flatten, "flatten", false, "with --export-audio, write files into one directory")
}
