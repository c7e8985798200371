// Command langid-cli identifies the language of text read from stdin.
//
// With no flags it classifies all of stdin as one document, or starts an
// interactive session when stdin is a terminal. -l classifies stdin line by
// line, -b treats each stdin line as a file path to classify, and -f
// filters a parallel corpus down to the sentence pairs whose sides match
// their declared languages.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	langid "github.com/jamesainslie/go-langid"
	"github.com/jamesainslie/go-langid/corpus"
	"github.com/jamesainslie/go-langid/internal/config"
	"github.com/jamesainslie/go-langid/internal/input"
)

// Populated at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	exitOK    = 0
	exitUsage = 1
	exitFatal = 255
)

type mode int

const (
	modeStream mode = iota
	modeInteractive
	modeLines
	modeBatch
	modeFilter
)

func main() {
	tty := term.IsTerminal(int(os.Stdin.Fd()))
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, tty))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, tty bool) int {
	fs := flag.NewFlagSet("langid-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	lineMode := fs.Bool("l", false, "classify each line of stdin separately")
	batchMode := fs.Bool("b", false, "treat each line of stdin as a file path to classify")
	filterMode := fs.Bool("f", false, "filter a parallel corpus: PREFIX SRCLANG TGTLANG DESTPREFIX")
	modelDir := fs.String("m", "", "load the model from this directory")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *showVersion {
		fmt.Fprintf(stdout, "langid-cli %s (commit %s, built %s)\n", version, commit, date)
		return exitOK
	}

	if countModes(*lineMode, *batchMode, *filterMode) > 1 {
		fmt.Fprintln(stderr, "Cannot specify more than one of -l, -b, and -f.")
		return exitFatal
	}
	if *filterMode && fs.NArg() != 4 {
		fmt.Fprintln(stderr, "Filter mode requires: PREFIX SRCLANG TGTLANG DESTPREFIX")
		return exitFatal
	}

	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	opts := []langid.Option{langid.WithLogger(logger)}
	if cfg.PoolSize > 0 {
		opts = append(opts, langid.WithPoolSize(cfg.PoolSize))
	}

	dir := *modelDir
	if dir == "" {
		dir = cfg.ModelDir
	}

	var id *langid.Identifier
	var err error
	if dir != "" {
		id, err = langid.New(dir, opts...)
	} else {
		id, err = langid.NewDefault(opts...)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error loading model: %v\n", err)
		return exitFatal
	}
	defer func() { _ = id.Close() }() // Cleanup error ignored in CLI

	ctx := context.Background()

	switch resolveMode(*lineMode, *batchMode, *filterMode, tty) {
	case modeFilter:
		fmt.Fprintln(stdout, "langid filtering mode.")
		pos := fs.Args()
		stats, ferr := corpus.Filter(ctx, id, corpus.FilterConfig{
			Prefix:     pos[0],
			SourceLang: pos[1],
			TargetLang: pos[2],
			DestPrefix: pos[3],
			Logger:     logger,
		})
		if ferr != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ferr)
			return exitFatal
		}
		logger.Info("corpus filtered",
			"pairs", stats.Pairs,
			"kept", stats.Kept,
			"dropped", stats.Dropped)
	case modeLines:
		err = input.Lines(ctx, id, stdin, stdout)
	case modeBatch:
		err = input.Batch(ctx, id, stdin, stdout)
	case modeInteractive:
		err = input.Interactive(ctx, id, stdin, stdout)
	default:
		err = input.Stream(ctx, id, stdin, stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}

	return exitOK
}

// resolveMode picks the operating mode. Explicit mode flags win over the
// terminal check so -l and -b behave the same on a TTY as in a pipe.
func resolveMode(line, batch, filter, tty bool) mode {
	switch {
	case filter:
		return modeFilter
	case line:
		return modeLines
	case batch:
		return modeBatch
	case tty:
		return modeInteractive
	default:
		return modeStream
	}
}

func countModes(flags ...bool) int {
	n := 0
	for _, set := range flags {
		if set {
			n++
		}
	}
	return n
}
