// Package rename implements the rename channel: prompting for a
// replacement name per record, either interactively over
// a tty pair or from a batch file, with an empty line meaning "skip this
// file".
package rename

import (
	"bufio"
	"io"
	"os"

	"github.com/bgrewell/cpio-kit/pkg/dstring"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Channel prompts for (and returns) a possibly-renamed path for each
// record the driver offers it.
type Channel struct {
	in        *bufio.Reader
	out       io.Writer
	prompting bool
}

// Interactive opens the channel against the controlling terminal, if
// stdin/stdout are in fact connected to one. When they are not (piped
// input, non-interactive run), it silently degrades to a no-op channel
// that returns every name unchanged — mirroring cmd/isoview's tty
// detection rather than cmd/isoextract's unconditional flag handling.
func Interactive() *Channel {
	if !isatty.IsTerminal(os.Stdin.Fd()) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return &Channel{}
	}
	return &Channel{in: bufio.NewReader(os.Stdin), out: os.Stdout, prompting: true}
}

// Batch reads replacement names, one per record offered, from r (a
// rename batch file). Lines are consumed in the same order records are
// offered; a short file degrades to "keep remaining names as-is".
func Batch(r io.Reader) *Channel {
	return &Channel{in: bufio.NewReader(r), prompting: true}
}

// Rename offers name for replacement. An empty line read from the
// channel means "skip this file", reported via skip=true. A channel
// with nothing configured (non-interactive Interactive()) always
// returns (name, false, nil) unchanged.
func (c *Channel) Rename(name string) (renamed string, skip bool, err error) {
	if c.in == nil {
		return name, false, nil
	}
	if c.prompting && c.out != nil {
		if _, werr := io.WriteString(c.out, name+": "); werr != nil {
			return name, false, werr
		}
	}
	line, ok := dstring.FgetStr(c.in, '\n')
	if !ok {
		return name, false, nil
	}
	if line == "" {
		return name, true, nil
	}
	return line, false, nil
}
