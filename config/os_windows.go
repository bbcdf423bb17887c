//go:build windows

package config

import (
	"os"
	"strings"
	"unicode"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

const badOutputName = "_stylesheet_"

// reserved device names cannot be used as file names regardless of extension.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
}

// CleanFileName drops characters Windows does not allow in file names and
// guards against reserved device names.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if unicode.IsControl(sym) || strings.ContainsRune(`<>":/\|?*`+string(os.PathListSeparator), sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimRight(strings.TrimSpace(out), ". ")
	if out == "" {
		return badOutputName
	}
	base, _, _ := strings.Cut(out, ".")
	if reservedNames[strings.ToUpper(base)] {
		out = "_" + out
	}
	return out
}

// EnableColorOutput reports whether colorized output is possible and turns on
// VT100 sequence processing for the console behind stream.
func EnableColorOutput(stream *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if v := windows.RtlGetVersion(); v == nil || v.MajorVersion < 10 {
		return false
	}
	if !term.IsTerminal(int(stream.Fd())) {
		return false
	}

	h := windows.Handle(stream.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return true
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
