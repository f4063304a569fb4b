package adf

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// NormalizeWhitespace collapses runs of blank lines and trims trailing
// whitespace from every line.
func NormalizeWhitespace(text string) string {
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// FormatTimestamp converts an ADF date timestamp (milliseconds since the
// epoch, as a string) to YYYY-MM-DD in UTC. Unparseable input is returned
// unchanged.
func FormatTimestamp(timestamp string) string {
	timestamp = strings.TrimSpace(timestamp)
	ms, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return timestamp
	}
	return time.UnixMilli(ms).UTC().Format(time.DateOnly)
}

// escapeTableCell keeps rendered cell text on one line and escapes pipes.
func escapeTableCell(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.ReplaceAll(text, "|", `\|`)
}
