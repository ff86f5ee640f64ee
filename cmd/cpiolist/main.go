package main

import (
	"fmt"
	"os"

	"github.com/bgrewell/cpio-kit"
	"github.com/bgrewell/usage"
)

func main() {
	u := usage.NewUsage(
		usage.WithApplicationName("cpiolist"),
		usage.WithApplicationDescription("cpiolist reads a cpio or tar archive and prints its table of contents, the way cpio -t does."),
	)

	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Print an ls -l style long listing", "", nil)
	table := u.AddBooleanOption("t", "table", true, "List contents instead of extracting (always on for this tool)", "", nil)
	null := u.AddBooleanOption("0", "null", false, "Terminate each listed name with NUL instead of newline", "", nil)
	numericUID := u.AddBooleanOption("numeric-uid-gid", "numeric-uid-gid", true, "Show numeric uid/gid in long listings", "", nil)
	archive := u.AddArgument(1, "archive", "Path to the archive to list, or - for stdin", "")

	parsed := u.Parse()
	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}
	if *help {
		u.PrintUsage()
		os.Exit(0)
	}
	_ = table

	var r *os.File
	if archive == nil || *archive == "" || *archive == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(*archive)
		if err != nil {
			u.PrintError(err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	terminator := byte('\n')
	if *null {
		terminator = 0
	}

	opts := []cpio.Option{
		cpio.WithVerbose(*verbose),
		cpio.WithNumericUID(*numericUID),
		cpio.WithNameEnd(terminator),
	}

	if _, err := cpio.List(r, opts...); err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
}
