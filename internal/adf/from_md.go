package adf

import (
	"regexp"
	"strings"
)

const (
	codeFence           = "```"
	defaultCodeLanguage = "text"
)

var (
	headingRe     = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	ruleRe        = regexp.MustCompile(`^(?:-{3,}|\*{3,}|_{3,})$`)
	bulletItemRe  = regexp.MustCompile(`^[-*]\s+`)
	orderedItemRe = regexp.MustCompile(`^\d+\.\s+`)
	tableSepRe    = regexp.MustCompile(`^[\s|:-]+$`)
)

// FromMarkdown converts Markdown text to an ADF document.
// Malformed constructs degrade to paragraphs; conversion never fails.
func FromMarkdown(markdown string) *Doc {
	return &Doc{Content: ParseBlocks(markdown)}
}

// PlainDoc wraps text verbatim as a single unmarked paragraph.
func PlainDoc(text string) *Doc {
	return &Doc{Content: []Block{Paragraph{Content: []Text{{Text: text}}}}}
}

// FromText converts text that looks like Markdown and wraps anything else
// as a plain paragraph.
func FromText(text string) *Doc {
	if LooksLikeMarkdown(text) {
		return FromMarkdown(text)
	}
	return PlainDoc(text)
}

// ParseBlocks scans markdown line by line and returns the block nodes in
// document order. Recognizers are tried in a fixed order against the
// current line and the first match consumes as many lines as it needs.
func ParseBlocks(markdown string) []Block {
	lines := strings.Split(normalizeNewlines(markdown), "\n")

	var blocks []Block
	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			i++
			continue
		}

		var block Block
		switch {
		case headingRe.MatchString(line):
			block, i = parseHeading(lines, i)
		case ruleRe.MatchString(trimmed):
			block, i = Rule{}, i+1
		case strings.HasPrefix(trimmed, codeFence):
			block, i = parseCodeBlock(lines, i)
		case strings.HasPrefix(trimmed, ">"):
			block, i = parseBlockquote(lines, i)
		case bulletItemRe.MatchString(trimmed):
			block, i = parseBulletList(lines, i)
		case orderedItemRe.MatchString(trimmed):
			block, i = parseOrderedList(lines, i)
		case isTableRow(trimmed):
			var table *Table
			table, i = parseTable(lines, i)
			if table != nil {
				block = *table
			}
		default:
			block, i = parseParagraph(lines, i)
		}

		if block != nil {
			blocks = append(blocks, block)
		}
	}

	return blocks
}

// parseHeading parses a single ATX heading line.
func parseHeading(lines []string, startIdx int) (Heading, int) {
	match := headingRe.FindStringSubmatch(lines[startIdx])
	return Heading{
		Level:   len(match[1]),
		Content: ParseInline(strings.TrimSpace(match[2])),
	}, startIdx + 1
}

// parseCodeBlock consumes a fenced block up to the closing fence. An
// unterminated fence runs to the end of the input.
func parseCodeBlock(lines []string, startIdx int) (CodeBlock, int) {
	opener := strings.TrimSpace(lines[startIdx])
	lang := strings.TrimSpace(strings.TrimPrefix(opener, codeFence))
	if lang == "" {
		lang = defaultCodeLanguage
	}

	i := startIdx + 1
	var codeLines []string
	for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), codeFence) {
		codeLines = append(codeLines, lines[i])
		i++
	}
	if i < len(lines) {
		i++ // closing fence
	}

	return CodeBlock{Language: lang, Text: strings.Join(codeLines, "\n")}, i
}

// parseBlockquote joins consecutive quoted lines into one paragraph.
func parseBlockquote(lines []string, startIdx int) (Blockquote, int) {
	i := startIdx
	var quoteLines []string

	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, ">") {
			break
		}
		rest := strings.TrimPrefix(trimmed, ">")
		quoteLines = append(quoteLines, strings.TrimPrefix(rest, " "))
		i++
	}

	return Blockquote{
		Paragraph: Paragraph{Content: ParseInline(strings.Join(quoteLines, " "))},
	}, i
}

func parseBulletList(lines []string, startIdx int) (BulletList, int) {
	items, i := parseListItems(lines, startIdx, bulletItemRe)
	return BulletList{Items: items}, i
}

func parseOrderedList(lines []string, startIdx int) (OrderedList, int) {
	items, i := parseListItems(lines, startIdx, orderedItemRe)
	return OrderedList{Items: items}, i
}

// parseListItems consumes consecutive lines carrying the given marker.
// Each item holds a single paragraph; nested blocks are not recognized.
func parseListItems(lines []string, startIdx int, marker *regexp.Regexp) ([]ListItem, int) {
	i := startIdx
	var items []ListItem

	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		loc := marker.FindStringIndex(trimmed)
		if loc == nil {
			break
		}
		items = append(items, ListItem{
			Paragraph: Paragraph{Content: ParseInline(trimmed[loc[1]:])},
		})
		i++
	}

	return items, i
}

// parseTable consumes consecutive pipe-delimited rows. The first separator
// row is dropped and turns every row above it into a header row. Returns
// nil when no rows remain.
func parseTable(lines []string, startIdx int) (*Table, int) {
	i := startIdx
	var rows [][]string
	headerRows := 0
	separatorSeen := false

	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if !isTableRow(trimmed) {
			break
		}
		i++

		if !separatorSeen && isTableSeparator(trimmed) {
			separatorSeen = true
			headerRows = len(rows)
			continue
		}
		rows = append(rows, splitTableRow(trimmed))
	}

	if len(rows) == 0 {
		return nil, i
	}

	table := &Table{Rows: make([]TableRow, 0, len(rows))}
	for r, cells := range rows {
		row := TableRow{Cells: make([]Cell, 0, len(cells))}
		for _, cell := range cells {
			para := Paragraph{Content: ParseInline(cell)}
			if r < headerRows {
				row.Cells = append(row.Cells, TableHeader{Paragraph: para})
			} else {
				row.Cells = append(row.Cells, TableCell{Paragraph: para})
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, i
}

func isTableRow(trimmed string) bool {
	return strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}

// isTableSeparator matches rows made only of pipes, dashes, colons and
// whitespace, e.g. |---|:--:| or | | |.
func isTableSeparator(trimmed string) bool {
	return tableSepRe.MatchString(trimmed)
}

// splitTableRow strips the outer pipes and returns the trimmed cells.
func splitTableRow(trimmed string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "|"), "|")
	parts := strings.Split(inner, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

// parseParagraph joins the current line with every following non-blank
// line that does not open another block.
func parseParagraph(lines []string, startIdx int) (Paragraph, int) {
	paraLines := []string{strings.TrimSpace(lines[startIdx])}

	i := startIdx + 1
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" || startsBlock(line) {
			break
		}
		paraLines = append(paraLines, strings.TrimSpace(line))
		i++
	}

	return Paragraph{Content: ParseInline(strings.Join(paraLines, " "))}, i
}

// startsBlock reports whether line would open a non-paragraph block.
// Fences and quotes are checked on the raw line here.
func startsBlock(line string) bool {
	trimmed := strings.TrimSpace(line)
	return headingRe.MatchString(line) ||
		ruleRe.MatchString(trimmed) ||
		strings.HasPrefix(line, codeFence) ||
		strings.HasPrefix(line, ">") ||
		bulletItemRe.MatchString(trimmed) ||
		orderedItemRe.MatchString(trimmed) ||
		isTableRow(trimmed)
}
