package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"snapback/internal/backup"
	"snapback/internal/config"
	"snapback/internal/logger"
)

// errUsage marks argument problems already answered with the usage text;
// they exit without error.
var errUsage = errors.New("usage shown")

var (
	// cfgFile is the path to the optional YAML configuration.
	cfgFile  string
	fullMode bool
	listMode bool
	verifyID string
	excludes []string

	rootCmd = &cobra.Command{
		Use:   "snapback <source> <destination>",
		Short: "Full and incremental folder backups with history and verification",
		Long: `snapback backs up a folder into timestamped snapshot directories
under a destination, copying only changed files in incremental mode.
Change detection is content-hash based and survives across runs via a
history file kept inside the destination.

Without --full the backup is incremental. --list shows past runs and
--verify re-reads an existing snapshot to confirm it is intact.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}
)

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		_ = cmd.Help()
		return nil
	}
	source, destPath := args[0], args[1]

	var cfg config.Config
	if err := cfg.Load(cfgFile); err != nil {
		return err
	}

	dest, err := backup.OpenDestination(destPath, cfg)
	if err != nil {
		return err
	}
	defer dest.Close()

	switch {
	case listMode:
		printRuns(dest.ListRuns())
		return nil
	case verifyID != "":
		result, err := dest.VerifySnapshot(verifyID)
		if err != nil {
			return err
		}
		printVerifyReport(verifyID, result)
		return nil
	}

	mode := backup.ModeIncremental
	if fullMode {
		mode = backup.ModeFull
	}
	patterns := append(cfg.Backup.Exclude, excludes...)

	summary, err := dest.RunBackup(cmd.Context(), source, mode, patterns)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Interrupted, but whatever was accumulated is recorded.
			printRunReport(summary)
		}
		return err
	}
	printRunReport(summary)
	return nil
}

// Execute runs the root command.
func Execute() {
	log, err := logger.Init()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil && !errors.Is(err, errUsage) {
		log.Error("command failed", "error", err.Error())
		logger.Cleanup()
		os.Exit(1)
	}
	logger.Cleanup()
}

func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgFile, "config", "c", "", "path to YAML config file")
	rootCmd.Flags().
		BoolVar(&fullMode, "full", false, "copy every file regardless of history")
	rootCmd.Flags().
		BoolVar(&listMode, "list", false, "list past backup runs and exit")
	rootCmd.Flags().
		StringVar(&verifyID, "verify", "", "verify the snapshot with the given timestamp and exit")
	rootCmd.Flags().
		StringArrayVarP(&excludes, "exclude", "e", nil, "shell-style pattern to skip (repeatable)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		cmd.Println(err)
		_ = cmd.Usage()
		return errUsage
	})

	rootCmd.AddCommand(archiveCmd)
}
