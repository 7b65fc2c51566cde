package config

import (
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxFileNameBytes = 255
	badFileName      = "_bad_file_name_"
)

// CleanFileName removes characters not allowed in output file names on
// this platform. Leading dots are dropped so names never become hidden or
// relative, long names are cut on rune boundary.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if sym == utf8.RuneError || unicode.IsControl(sym) || strings.ContainsRune(forbiddenNameChars, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(out, ".")
	out = strings.TrimRight(out, " ")

	for len(out) > maxFileNameBytes {
		_, size := utf8.DecodeLastRuneInString(out)
		out = out[:len(out)-size]
	}
	if len(out) == 0 {
		return badFileName
	}
	return out
}

// colorDisabled honors NO_COLOR convention.
func colorDisabled() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}
