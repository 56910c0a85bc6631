package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jchantrell/packbnk/internal/pack"
	"github.com/jchantrell/packbnk/internal/utils"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <pack>",
	Short: "Show the header of a pack file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := pack.Open(args[0])
		if err != nil {
			return err
		}
		defer c.Close()

		h := c.Header
		fmt.Printf("Pack: %s\n", c.Path)
		fmt.Printf("Size: %s\n", utils.Bytes(c.Size))
		fmt.Printf("Version: %s\n", h.Version)
		fmt.Printf("Byte mask: 0x%08x (type %d)\n", h.ByteMask, h.PackType())
		fmt.Printf("Index timestamps: %t\n", h.HasIndexTimestamps())
		fmt.Printf("Extended header: %t\n", h.HasExtendedHeader())
		fmt.Printf("Files: %s (%s distinct)\n", utils.Number(int64(h.FileCount)), utils.Number(int64(c.Len())))
		fmt.Printf("Index size: %s\n", utils.Bytes(int64(h.PackedIndexSize)))
		fmt.Printf("Data start: %d\n", h.DataStart)

		if len(h.Dependencies) > 0 {
			fmt.Println("Dependencies:")
			for _, d := range h.Dependencies {
				fmt.Printf("  %s\n", d)
			}
		}

		if dups := c.Duplicates(); len(dups) > 0 {
			fmt.Println("Duplicate paths:")
			for _, d := range dups {
				fmt.Printf("  %s\n", d)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
