package ui

import (
	"path/filepath"
	"strings"
)

// truncate shortens value to limit runes, ending in "..." when cut.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// truncateMiddle shortens value by cutting its middle. Paths keep their
// file name whenever it fits: /home/ti…/trackside.log.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}

	if strings.ContainsRune(value, filepath.Separator) {
		base := []rune(filepath.Base(value))
		if head := limit - len(base) - 2; head > 0 {
			return string(runes[:head]) + "…/" + string(base)
		}
	}

	keep := limit - 1
	prefix := keep / 2
	return string(runes[:prefix]) + "…" + string(runes[len(runes)-(keep-prefix):])
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
