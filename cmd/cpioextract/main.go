package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bgrewell/cpio-kit"
	"github.com/bgrewell/cpio-kit/pkg/logging"
	"github.com/mattn/go-isatty"
	"github.com/theckman/yacspin"
)

func main() {
	debug := flag.Bool("v", false, "Enable verbose (debug) logging")
	trace := flag.Bool("vv", false, "Enable trace logging")

	targetDir := flag.String("d", "", "Extract into this directory instead of the current one")
	unconditional := flag.Bool("u", false, "Replace existing files unconditionally")
	pattern := flag.String("m", "", "Extract only names matching this shell pattern")
	noAbsPaths := flag.Bool("no-abs-paths", false, "Refuse absolute paths and path traversal in member names")
	rename := flag.Bool("rename", false, "Interactively rename each file as it is extracted")
	quiet := flag.Bool("quiet", false, "Suppress the final block count")
	dot := flag.Bool("dot", false, "Print a dot for each file extracted instead of a spinner")

	flag.Parse()

	var logLevel = -1
	if *trace {
		logLevel = logging.LEVEL_TRACE
	} else if *debug {
		logLevel = logging.LEVEL_DEBUG
	}

	var opts []cpio.Option
	if logLevel >= 0 {
		opts = append(opts, cpio.WithLogger(logging.NewSimpleLogger(os.Stderr, logLevel, true)))
	}
	if *targetDir != "" {
		opts = append(opts, cpio.WithTargetDir(*targetDir))
	}
	if *unconditional {
		opts = append(opts, cpio.WithUnconditional(true))
	}
	if *pattern != "" {
		opts = append(opts, cpio.WithPatterns([]string{*pattern}, true))
	}
	if *noAbsPaths {
		opts = append(opts, cpio.WithNoAbsolutePaths(true))
	}
	if *rename {
		opts = append(opts, cpio.WithRename(true))
	}
	if *quiet {
		opts = append(opts, cpio.WithQuiet(true))
	}
	if *dot {
		opts = append(opts, cpio.WithDot(true))
	}

	var spinner *yacspin.Spinner
	if !*dot && isatty.IsTerminal(os.Stderr.Fd()) {
		spinner, _ = yacspin.New(yacspin.Config{
			Frequency:       100 * time.Millisecond,
			CharSet:         yacspin.CharSets[9],
			Suffix:          " extracting",
			SuffixAutoColon: true,
			Message:         "starting",
			StopCharacter:   "✓",
			StopColors:      []string{"fgGreen"},
		})
		if spinner != nil {
			_ = spinner.Start()
			opts = append(opts, cpio.WithProgress(func(name string, _, _ int64, fileNumber, _ int) {
				spinner.Message(fmt.Sprintf("%d %s", fileNumber, name))
			}))
		}
	}

	var r *os.File
	if flag.NArg() < 1 {
		r = os.Stdin
	} else {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "cpioextract: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	report, err := cpio.Extract(r, opts...)

	if spinner != nil {
		_ = spinner.Stop()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "cpioextract: %v\n", err)
		os.Exit(1)
	}
	if report.ExtractionErrors > 0 || report.MalformedRecords > 0 {
		os.Exit(2)
	}
}
