//go:build !windows

package config

import (
	"os"
	"strings"
	"unicode"

	"golang.org/x/term"
)

const badOutputName = "_stylesheet_"

// CleanFileName drops path separators and control characters from a single
// output name segment. Leading dots are removed so outputs are never hidden.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		switch {
		case sym == os.PathSeparator, sym == os.PathListSeparator:
			return -1
		case unicode.IsControl(sym):
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(strings.TrimSpace(out), ".")
	if out == "" {
		return badOutputName
	}
	return out
}

// EnableColorOutput reports whether stream is a terminal and NO_COLOR is not set.
func EnableColorOutput(stream *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(stream.Fd()))
}
