// Command psdload batch-loads a directory of measurement files through the
// file queue and reports per-file outcomes.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"psd-analyzer/internal/app"
	"psd-analyzer/internal/report"
)

func main() {
	dir := flag.String("dir", "", "Directory of measurement files")
	pattern := flag.String("pattern", "*.csv", "Filename glob within the directory")
	skipRows := flag.Int("skip", 0, "Header rows to skip in each file")
	session := flag.String("save-session", "", "Write the resulting session to this path")
	flag.Parse()

	if *dir == "" {
		fmt.Println("Usage: psdload -dir <path> [-pattern '*.csv'] [-skip 0] [-save-session out.json]")
		os.Exit(1)
	}

	paths, err := filepath.Glob(filepath.Join(*dir, *pattern))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad pattern: %v\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "No files match %s in %s\n", *pattern, *dir)
		os.Exit(1)
	}
	sort.Strings(paths)

	state := app.NewState()
	state.QueueFiles(paths)
	for i := range paths {
		state.Queue.SetSkipRows(i, *skipRows)
	}

	info := state.ProcessAll()
	fmt.Printf("Processed %d/%d files (%.1f%% success)\n", info.Processed, info.Total, info.SuccessRate)
	for _, e := range state.Queue.Failed() {
		fmt.Printf("  failed:  %s: %s\n", e.Filename, e.ErrorMsg)
	}
	for _, e := range state.Queue.Skipped() {
		fmt.Printf("  skipped: %s: %s\n", e.Filename, e.ErrorMsg)
	}
	fmt.Println(strings.Repeat("-", 40))
	fmt.Print(report.Registry(state.Registry))

	if *session != "" {
		if err := state.SaveSession(*session); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save session: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Session saved to %s\n", *session)
	}
}
