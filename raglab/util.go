package raglab

import "strings"

// SafePreview renders a possibly long, multi-line text as a single truncated
// line, suitable for terminal output and log lines.
func SafePreview(text string, maxChars int) string {
	s := strings.ReplaceAll(text, "\n", "\\n")

	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}

	return string(runes[:maxChars]) + "..."
}
