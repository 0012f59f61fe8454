package cmd

import (
	"fmt"

	"github.com/fatih/color"

	"snapback/internal/backup"
	"snapback/internal/history"
)

var (
	headerColor = color.New(color.Bold)
	okColor     = color.New(color.FgGreen)
	errColor    = color.New(color.FgRed)
)

func printRuns(runs []history.RunSummary) {
	headerColor.Println("Available backups:")
	if len(runs) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, run := range runs {
		fmt.Printf("  %s  |  %d files  |  %s  |  %s\n",
			run.Timestamp,
			run.FilesBackedUp,
			backup.FormatSize(run.TotalSize),
			run.Mode,
		)
	}
}

func printRunReport(s history.RunSummary) {
	headerColor.Printf("Backup %s (%s)\n", s.Timestamp, s.Mode)
	fmt.Printf("Files checked:   %d\n", s.FilesChecked)
	fmt.Printf("Files backed up: %d\n", s.FilesBackedUp)
	fmt.Printf("Files skipped:   %d\n", s.FilesSkipped)
	fmt.Printf("Total size:      %s\n", backup.FormatSize(s.TotalSize))
	if len(s.Errors) > 0 {
		errColor.Printf("Errors:          %d\n", len(s.Errors))
		for _, e := range s.Errors {
			fmt.Printf("  %s\n", e)
		}
	}
}

func printVerifyReport(id string, r backup.VerifyResult) {
	headerColor.Printf("Verifying: %s\n", id)
	okColor.Printf("Verified:  %d files\n", r.Verified)
	if len(r.Corrupted) == 0 {
		fmt.Println("Corrupted: 0 files")
		return
	}
	errColor.Printf("Corrupted: %d files\n", len(r.Corrupted))
	for _, p := range r.Corrupted {
		fmt.Printf("  %s\n", p)
	}
}
