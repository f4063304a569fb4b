package adf

import (
	"regexp"
	"strings"
)

// inlineSpecials are the characters that may open an inline construct.
const inlineSpecials = "[*_`~"

// inlineRule is an anchored pattern and the text run it produces.
type inlineRule struct {
	name  string
	re    *regexp.Regexp
	build func(match []string) Text
}

// inlineRules are tried in order at the current position only.
var inlineRules = []inlineRule{
	{
		name: "link",
		re:   regexp.MustCompile(`^\[([^\]]+)\]\(([^)]+)\)`),
		build: func(match []string) Text {
			return Text{Text: match[1], Marks: []Mark{Link(match[2])}}
		},
	},
	{
		name: "strongEm",
		re:   regexp.MustCompile(`^(?:\*\*\*([^*]+)\*\*\*|___([^_]+)___)`),
		build: func(match []string) Text {
			return Text{Text: firstGroup(match), Marks: []Mark{Strong(), Em()}}
		},
	},
	{
		name: "strong",
		re:   regexp.MustCompile(`^(?:\*\*([^*]+)\*\*|__([^_]+)__)`),
		build: func(match []string) Text {
			return Text{Text: firstGroup(match), Marks: []Mark{Strong()}}
		},
	},
	{
		name: "em",
		re:   regexp.MustCompile(`^(?:\*([^*]+)\*|_([^_]+)_)`),
		build: func(match []string) Text {
			return Text{Text: firstGroup(match), Marks: []Mark{Em()}}
		},
	},
	{
		name: "code",
		re:   regexp.MustCompile("^`([^`]+)`"),
		build: func(match []string) Text {
			return Text{Text: match[1], Marks: []Mark{Code()}}
		},
	},
	{
		name: "strike",
		re:   regexp.MustCompile(`^~~([^~]+)~~`),
		build: func(match []string) Text {
			return Text{Text: match[1], Marks: []Mark{Strike()}}
		},
	},
}

// ParseInline splits text into marked and unmarked text runs. Empty input
// yields a single empty run. Unpaired delimiters are kept as literal text.
func ParseInline(text string) []Text {
	if text == "" {
		return []Text{{Text: ""}}
	}

	var result []Text
	remaining := text
	for remaining != "" {
		if node, n, ok := matchInline(remaining); ok {
			result = append(result, node)
			remaining = remaining[n:]
			continue
		}

		idx := strings.IndexAny(remaining, inlineSpecials)
		switch {
		case idx < 0:
			result = append(result, Text{Text: remaining})
			remaining = ""
		case idx == 0:
			// Unmatched delimiter: emit it alone and move past it.
			result = append(result, Text{Text: remaining[:1]})
			remaining = remaining[1:]
		default:
			result = append(result, Text{Text: remaining[:idx]})
			remaining = remaining[idx:]
		}
	}

	return result
}

// matchInline tries every rule at the start of s and returns the produced
// run along with the number of bytes consumed.
func matchInline(s string) (Text, int, bool) {
	for _, rule := range inlineRules {
		loc := rule.re.FindStringSubmatchIndex(s)
		if loc == nil {
			continue
		}
		match := make([]string, len(loc)/2)
		for g := range match {
			if loc[2*g] >= 0 {
				match[g] = s[loc[2*g]:loc[2*g+1]]
			}
		}
		return rule.build(match), loc[1], true
	}
	return Text{}, 0, false
}

// firstGroup returns the first non-empty capture group of an alternation.
func firstGroup(match []string) string {
	for _, g := range match[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
