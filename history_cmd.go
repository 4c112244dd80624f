package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KenKaminsky/voice-dictation/browser"
	"github.com/KenKaminsky/voice-dictation/config"
	"github.com/KenKaminsky/voice-dictation/history"
	"github.com/KenKaminsky/voice-dictation/paste"
)

// runHistory implements "voice-dictation history": the interactive browser,
// or a plain listing with -n / -search.
func runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	dir := fs.String("config", "", "application-support directory")
	n := fs.Int("n", 0, "print the N most recent entries and exit")
	search := fs.String("search", "", "print entries containing this text and exit")
	fs.Parse(args)

	resolved, err := config.ResolveDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	store := history.Open(filepath.Join(resolved, history.FileName))

	switch {
	case *search != "":
		printEntries(store.Search(*search))
		return 0
	case *n > 0:
		printEntries(store.Recent(*n))
		return 0
	}

	if err := browser.Run(store, paste.SystemClipboard{}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printEntries(entries []history.Entry) {
	for _, e := range entries {
		fmt.Printf("%s  %5.1fs  %s\n", e.Timestamp.Local().Format("2006-01-02 15:04"), e.DurationSeconds, e.Text)
	}
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func historyCommand(dir string) (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return shellQuote(exe) + " history -config " + shellQuote(dir), nil
}
