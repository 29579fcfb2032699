// Package main provides the entry point for the particle-size analyzer.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"psd-analyzer/internal/app"
	"psd-analyzer/internal/report"
	"psd-analyzer/internal/version"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	session := flag.String("session", "", "Session file to load")
	prefsPath := flag.String("prefs", defaultPrefsPath(), "Preferences file (TOML)")
	skipRows := flag.Int("skip", 0, "Header rows to skip in measurement files")
	fit := flag.Bool("fit", true, "Fit a Gaussian to the active dataset")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	log.Printf("Starting %s", version.String())

	state := app.NewState()

	prefs, err := app.LoadPrefs(*prefsPath)
	if err != nil {
		log.Printf("Preferences: %v (using defaults)", err)
	}
	state.ApplyPrefs(prefs)

	if *session != "" {
		if err := state.LoadSession(*session); err != nil {
			log.Fatalf("Failed to load session %s: %v", *session, err)
		}
	}

	// Remaining arguments are measurement files to batch-load.
	if args := flag.Args(); len(args) > 0 {
		state.QueueFiles(args)
		for i := range args {
			state.Queue.SetSkipRows(i, *skipRows)
		}
		info := state.ProcessAll()
		log.Printf("Queue: %d processed, %d failed, %d skipped (%.1f%% success)",
			info.Processed, info.Failed, info.Skipped, info.SuccessRate)
	}

	if state.Registry.Count() == 0 {
		fmt.Fprintln(os.Stderr, "No datasets loaded. Pass measurement files or -session.")
		os.Exit(1)
	}

	fmt.Print(report.Registry(state.Registry))
	if *fit {
		res, err := state.FitActive()
		if err != nil {
			log.Fatalf("Fit failed: %v", err)
		}
		fmt.Println()
		fmt.Print(report.Fit(res, state.Fitter.Thresholds))
	}
}

// defaultPrefsPath resolves the per-user preferences file location.
func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "psd-analyzer", "prefs.toml")
}
