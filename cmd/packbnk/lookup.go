package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jchantrell/packbnk/internal/bnk"
	"github.com/jchantrell/packbnk/internal/utils"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <id|name>",
	Short: "Show the objects and audio stored under an id",
	Long: `Lookup prints every HIRC object and embedded audio file the index holds
for an id. Ids may be decimal or 0x prefixed hex; anything else is treated
as an object name and hashed the way Wwise derives ids from names.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := parseID(args[0])

		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()

		ok, err := db.HasIndex(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s has no index tables, run packbnk banks --save first", db.Path())
		}

		records, err := db.LookupRecords(ctx, id)
		if err != nil {
			return err
		}
		blobs, err := db.LookupBlobs(ctx, id)
		if err != nil {
			return err
		}

		fmt.Printf("Id: %d (0x%08x)\n", id, id)
		if len(records) == 0 && len(blobs) == 0 {
			fmt.Println("Nothing stored under this id")
			return nil
		}

		if len(records) > 0 {
			fmt.Printf("Objects: %d\n", len(records))
			for _, r := range records {
				status := ""
				if r.HasError {
					status = " error: " + r.Error
				}
				fmt.Printf("  %-32s %-28s %8s%s\n", r.Bank, r.Type, utils.Bytes(int64(r.Size)), status)
			}
		}

		if len(blobs) > 0 {
			fmt.Printf("Audio: %d\n", len(blobs))
			for _, b := range blobs {
				fmt.Printf("  %-32s %-28s %8s\n", b.Bank, b.Mime, utils.Bytes(b.Size))
			}
		}

		return nil
	},
}

// parseID reads a numeric id or hashes a name
func parseID(arg string) uint32 {
	if n, err := strconv.ParseUint(arg, 0, 32); err == nil {
		return uint32(n)
	}
	return bnk.HashName(arg)
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
