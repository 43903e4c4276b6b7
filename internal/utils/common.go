package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// String utilities

func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func PadString(s string, width int, alignment string) string {
	length := utf8.RuneCountInString(s)
	if length >= width {
		return s
	}

	padding := width - length

	switch alignment {
	case "center":
		leftPad := padding / 2
		rightPad := padding - leftPad
		return strings.Repeat(" ", leftPad) + s + strings.Repeat(" ", rightPad)
	case "right":
		return strings.Repeat(" ", padding) + s
	default: // "left"
		return s + strings.Repeat(" ", padding)
	}
}

// Number formatting

func FormatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}
