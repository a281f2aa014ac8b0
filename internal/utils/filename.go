package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceChars      = regexp.MustCompile(`[\r\n\t]`)
	multipleSpaces       = regexp.MustCompile(`\s+`)
)

const maxFilenameLen = 200

// SanitizeFilename turns a book title into a portable file name without
// extension. Markdown link syntax (#, [ and ]) is stripped as well so the
// exported files can be linked from note-taking tools.
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = whitespaceChars.ReplaceAllString(name, " ")
	name = multipleSpaces.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	name = strings.ReplaceAll(name, "#", "")
	name = strings.ReplaceAll(name, "[", "(")
	name = strings.ReplaceAll(name, "]", ")")

	if len(name) > maxFilenameLen {
		name = strings.TrimSpace(truncateUTF8(name, maxFilenameLen))
	}

	if name == "" || strings.Trim(name, ".") == "" {
		name = "Untitled"
	}

	return name
}

// UniqueFilename returns base + ext, appending " (2)", " (3)", ... when the
// name has already been handed out. taken is updated in place.
func UniqueFilename(base, ext string, taken map[string]bool) string {
	name := base + ext
	for i := 2; taken[strings.ToLower(name)]; i++ {
		name = fmt.Sprintf("%s (%d)%s", base, i, ext)
	}
	taken[strings.ToLower(name)] = true
	return name
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
