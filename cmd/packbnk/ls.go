package main

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jchantrell/packbnk/internal/pack"
	"github.com/jchantrell/packbnk/internal/utils"
)

var (
	lsSuffix string
	lsLong   bool
)

var lsCmd = &cobra.Command{
	Use:   "ls <pack> [dir]",
	Short: "List the files stored in a pack",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := pack.Open(args[0])
		if err != nil {
			return err
		}
		defer c.Close()

		root := "."
		if len(args) > 1 {
			root = strings.Trim(strings.ToLower(args[1]), "/")
		}
		suffix := strings.ToLower(lsSuffix)

		count := 0
		var total int64
		err = fs.WalkDir(c.FS(), root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(p, suffix) {
				return nil
			}

			count++
			if !lsLong {
				fmt.Println(p)
				return nil
			}

			entry, ok := c.Entry(p)
			if !ok {
				return fmt.Errorf("%s: %w", p, fs.ErrNotExist)
			}
			total += entry.Size()

			flag := " "
			if entry.Compressed {
				flag = "c"
			}
			fmt.Printf("%s %10s %12d  %s\n", flag, utils.Bytes(entry.Size()), entry.Offset(), p)
			return nil
		})
		if err != nil {
			return fmt.Errorf("listing %s: %w", args[0], err)
		}

		if lsLong {
			fmt.Printf("%s files, %s\n", utils.Number(int64(count)), utils.Bytes(total))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().StringVar(&lsSuffix, "suffix", "", "only list paths ending with this suffix")
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "show size, offset and compression flag")
}
