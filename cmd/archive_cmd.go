package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"snapback/internal/backup"
	"snapback/internal/config"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <destination> <timestamp>",
	Short: "Export a snapshot as a zstd-compressed tarball",
	Long: `archive packs the snapshot with the given timestamp into a
backup_<timestamp>.tar.zst file next to it. The snapshot directory
is left in place.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg config.Config
		if err := cfg.Load(cfgFile); err != nil {
			return err
		}

		dest, err := backup.OpenDestination(args[0], cfg)
		if err != nil {
			return err
		}
		defer dest.Close()

		archivePath, err := dest.ArchiveSnapshot(args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Archived to: %s\n", archivePath)
		return nil
	},
}
