package adf

import (
	"regexp"
	"strings"
)

// markdownProbes are checked against the whole text; any match means the
// text is treated as Markdown. The bold and italic probes overlap and are
// kept as separate checks.
var markdownProbes = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#{1,6}[ \t]`),         // heading
	regexp.MustCompile(`\*\*[^*]+\*\*`),            // bold
	regexp.MustCompile(`\*[^*]+\*`),                // italic
	regexp.MustCompile("`[^`]+`"),                  // inline code
	regexp.MustCompile("```"),                      // fence
	regexp.MustCompile(`(?m)^[ \t]*[-*][ \t]`),     // bullet item
	regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]`),    // ordered item
	regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`),      // link
	regexp.MustCompile(`(?m)^[ \t]*\|.*\|[ \t]*$`), // table row
	regexp.MustCompile(`(?m)^>`),                   // blockquote
}

// LooksLikeMarkdown reports whether text appears to contain Markdown
// formatting. It is a heuristic: callers use it to pick between full
// conversion and wrapping the text as a single plain paragraph.
func LooksLikeMarkdown(text string) bool {
	text = normalizeNewlines(text)
	for _, probe := range markdownProbes {
		if probe.MatchString(text) {
			return true
		}
	}
	return false
}

func normalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}
