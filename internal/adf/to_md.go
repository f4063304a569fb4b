package adf

import (
	"fmt"
	"strings"
)

// ToMarkdown renders an ADF document received from Jira as Markdown.
// Unknown nodes are rendered through their children so no text is lost.
func ToMarkdown(doc map[string]any) string {
	var parts []string
	for _, child := range childNodes(doc) {
		if rendered := renderNode(child, 0); rendered != "" {
			parts = append(parts, rendered)
		}
	}
	return NormalizeWhitespace(strings.Join(parts, "\n\n"))
}

// renderNode converts a single ADF node to Markdown.
func renderNode(node map[string]any, depth int) string {
	switch Kind(nodeType(node)) {
	case KindParagraph:
		return renderInline(node)
	case KindText:
		return renderText(node)
	case KindHeading:
		return renderHeading(node)
	case KindBulletList:
		return renderList(node, depth, false)
	case KindOrderedList:
		return renderList(node, depth, true)
	case KindCodeBlock:
		return renderCodeBlock(node)
	case KindBlockquote:
		return quoteLines(renderBlocks(node))
	case KindTable:
		return renderTable(node)
	case KindRule:
		return "---"
	case "hardBreak":
		return "\n"
	case "taskList":
		return renderTaskList(node, depth)
	case "panel":
		return renderPanel(node)
	case "expand", "nestedExpand":
		return renderExpand(node)
	case "mediaSingle", "mediaGroup":
		return renderInline(node)
	case "media":
		return renderMedia(node)
	case "mention":
		return renderMention(node)
	case "emoji":
		return renderEmoji(node)
	case "status":
		return renderStatus(node)
	case "date":
		return renderDate(node)
	case "inlineCard":
		if url := stringAttr(node, "url"); url != "" {
			return fmt.Sprintf("<%s>", url)
		}
		return ""
	default:
		return renderBlocks(node)
	}
}

func renderHeading(node map[string]any) string {
	level := intAttr(node, "level", 1)
	if level < 1 {
		level = 1
	} else if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + renderInline(node)
}

// renderList renders bullet and ordered lists, indenting nested lists by
// two spaces per level.
func renderList(node map[string]any, depth int, ordered bool) string {
	indent := strings.Repeat("  ", depth)
	order := intAttr(node, "order", 1)

	var lines []string
	for i, item := range childNodes(node) {
		marker := "-"
		if ordered {
			marker = fmt.Sprintf("%d.", order+i)
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", indent, marker, renderListItem(item, depth)))
	}
	return strings.Join(lines, "\n")
}

func renderTaskList(node map[string]any, depth int) string {
	indent := strings.Repeat("  ", depth)

	var lines []string
	for _, item := range childNodes(node) {
		checkbox := "[ ]"
		if stringAttr(item, "state") == "DONE" {
			checkbox = "[x]"
		}
		lines = append(lines, fmt.Sprintf("%s- %s %s", indent, checkbox, renderInline(item)))
	}
	return strings.Join(lines, "\n")
}

// renderListItem renders the first paragraph inline and nested lists on
// the following lines.
func renderListItem(node map[string]any, depth int) string {
	var text []string
	var nested []string

	for _, child := range childNodes(node) {
		switch nodeType(child) {
		case string(KindBulletList):
			nested = append(nested, renderList(child, depth+1, false))
		case string(KindOrderedList):
			nested = append(nested, renderList(child, depth+1, true))
		case "taskList":
			nested = append(nested, renderTaskList(child, depth+1))
		default:
			text = append(text, renderNode(child, depth+1))
		}
	}

	result := strings.Join(text, " ")
	if len(nested) > 0 {
		result += "\n" + strings.Join(nested, "\n")
	}
	return result
}

func renderCodeBlock(node map[string]any) string {
	lang := stringAttr(node, "language")
	if lang == defaultCodeLanguage {
		lang = ""
	}
	return fmt.Sprintf("%s%s\n%s\n%s", codeFence, lang, renderInline(node), codeFence)
}

// quoteLines prefixes every line of text with a quote marker.
func quoteLines(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

// renderPanel renders a panel as a quote led by its panel type.
func renderPanel(node map[string]any) string {
	panelType := stringAttr(node, "panelType")
	if panelType == "" {
		panelType = "info"
	}
	return quoteLines(fmt.Sprintf("**%s:** %s", strings.ToUpper(panelType), strings.TrimSpace(renderBlocks(node))))
}

func renderExpand(node map[string]any) string {
	body := strings.TrimSpace(renderBlocks(node))
	if title := stringAttr(node, "title"); title != "" {
		return fmt.Sprintf("**%s**\n\n%s", title, body)
	}
	return body
}

// renderTable renders a pipe table. A separator is always emitted after the
// first row so the output stays valid Markdown.
func renderTable(node map[string]any) string {
	var rows [][]string
	for _, row := range childNodes(node) {
		var cells []string
		for _, cell := range childNodes(row) {
			cells = append(cells, escapeTableCell(strings.TrimSpace(renderBlocks(cell))))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return ""
	}

	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}

	var sb strings.Builder
	for i, row := range rows {
		for len(row) < cols {
			row = append(row, "")
		}
		sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
		if i == 0 {
			sb.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderMedia(node map[string]any) string {
	alt := stringAttr(node, "alt")
	if alt == "" {
		alt = "attachment"
	}
	return fmt.Sprintf("[%s]", alt)
}

func renderMention(node map[string]any) string {
	text := strings.TrimPrefix(stringAttr(node, "text"), "@")
	id := stringAttr(node, "id")
	switch {
	case text != "" && id != "":
		return fmt.Sprintf("@%s (accountId:%s)", text, id)
	case text != "":
		return "@" + text
	case id != "":
		return "@" + id
	}
	return "@unknown"
}

func renderEmoji(node map[string]any) string {
	if text := stringAttr(node, "text"); text != "" {
		return text
	}
	return stringAttr(node, "shortName")
}

func renderStatus(node map[string]any) string {
	text := stringAttr(node, "text")
	if text == "" {
		return ""
	}
	return fmt.Sprintf("[%s]", strings.ToUpper(text))
}

func renderDate(node map[string]any) string {
	timestamp := stringAttr(node, "timestamp")
	if timestamp == "" {
		return ""
	}
	return FormatTimestamp(timestamp)
}

// renderText renders a text node with its marks applied.
func renderText(node map[string]any) string {
	text, _ := node["text"].(string)
	if text == "" {
		return ""
	}
	marks, _ := node["marks"].([]any)
	return applyMarks(text, marks)
}

// applyMarks wraps text from the innermost mark (code) outwards.
func applyMarks(text string, marks []any) string {
	var code, em, strong, strike, underline bool
	var href, color string

	for _, m := range marks {
		mark, ok := m.(map[string]any)
		if !ok {
			continue
		}
		switch MarkType(nodeType(mark)) {
		case MarkCode:
			code = true
		case MarkLink:
			href = stringAttr(mark, "href")
		case MarkEm:
			em = true
		case MarkStrong:
			strong = true
		case MarkStrike:
			strike = true
		case MarkUnderline:
			underline = true
		case MarkTextColor:
			color = stringAttr(mark, "color")
		}
	}

	result := text
	if code {
		result = "`" + result + "`"
	}
	if href != "" {
		result = fmt.Sprintf("[%s](%s)", result, href)
	}
	if em {
		result = "*" + result + "*"
	}
	if strong {
		result = "**" + result + "**"
	}
	if strike {
		result = "~~" + result + "~~"
	}
	if underline {
		result = "<u>" + result + "</u>"
	}
	if color != "" {
		result = fmt.Sprintf(`<span style="color:%s">%s</span>`, color, result)
	}
	return result
}

// renderInline renders the children of node with no separators.
func renderInline(node map[string]any) string {
	var sb strings.Builder
	for _, child := range childNodes(node) {
		sb.WriteString(renderNode(child, 0))
	}
	return sb.String()
}

// renderBlocks renders the children of node separated by blank lines.
func renderBlocks(node map[string]any) string {
	var parts []string
	for _, child := range childNodes(node) {
		if rendered := renderNode(child, 0); rendered != "" {
			parts = append(parts, rendered)
		}
	}
	return strings.Join(parts, "\n\n")
}

func childNodes(node map[string]any) []map[string]any {
	content, _ := node["content"].([]any)
	out := make([]map[string]any, 0, len(content))
	for _, c := range content {
		if m, ok := c.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func nodeType(node map[string]any) string {
	t, _ := node["type"].(string)
	return t
}

func stringAttr(node map[string]any, key string) string {
	attrs, _ := node["attrs"].(map[string]any)
	s, _ := attrs[key].(string)
	return s
}

// intAttr reads a numeric attribute decoded from JSON.
func intAttr(node map[string]any, key string, fallback int) int {
	attrs, _ := node["attrs"].(map[string]any)
	switch v := attrs[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}
