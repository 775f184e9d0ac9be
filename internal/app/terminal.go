package app

import (
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// stdoutIsTerminal reports whether a run step gets a pseudo-terminal. CI never does.
func stdoutIsTerminal() bool {
	if ci := os.Getenv("CI"); ci == "true" || ci == "1" {
		return false
	}
	fd := os.Stdout.Fd()
	return term.IsTerminal(int(fd)) || isatty.IsCygwinTerminal(fd)
}
