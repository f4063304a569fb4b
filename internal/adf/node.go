package adf

import "encoding/json"

// Kind is the ADF "type" string of a node.
type Kind string

const (
	KindDoc         Kind = "doc"
	KindParagraph   Kind = "paragraph"
	KindHeading     Kind = "heading"
	KindBulletList  Kind = "bulletList"
	KindOrderedList Kind = "orderedList"
	KindListItem    Kind = "listItem"
	KindCodeBlock   Kind = "codeBlock"
	KindBlockquote  Kind = "blockquote"
	KindTable       Kind = "table"
	KindTableRow    Kind = "tableRow"
	KindTableHeader Kind = "tableHeader"
	KindTableCell   Kind = "tableCell"
	KindRule        Kind = "rule"
	KindText        Kind = "text"
)

// MarkType is the ADF "type" string of a text mark.
type MarkType string

const (
	MarkStrong    MarkType = "strong"
	MarkEm        MarkType = "em"
	MarkUnderline MarkType = "underline"
	MarkCode      MarkType = "code"
	MarkStrike    MarkType = "strike"
	MarkLink      MarkType = "link"
	MarkTextColor MarkType = "textColor"
)

// documentVersion is the ADF schema version Jira Cloud accepts.
const documentVersion = 1

// Node is implemented by every document node type. The set of
// implementations is closed: each ADF kind has exactly one Go type.
type Node interface {
	Kind() Kind
	Children() []Node
}

// Block is a node that may appear directly under a Doc.
type Block interface {
	Node
	isBlock()
}

// Cell is a node that may appear inside a TableRow.
type Cell interface {
	Node
	isCell()
}

// Doc is the root of a document. It only ever holds block nodes.
type Doc struct {
	Content []Block
}

// Paragraph holds inline text runs.
type Paragraph struct {
	Content []Text
}

// Heading is a section title with a level between 1 and 6.
type Heading struct {
	Level   int
	Content []Text
}

// BulletList is an unordered list.
type BulletList struct {
	Items []ListItem
}

// OrderedList is a numbered list. Item numbers are not tracked.
type OrderedList struct {
	Items []ListItem
}

// ListItem wraps exactly one paragraph.
type ListItem struct {
	Paragraph Paragraph
}

// CodeBlock holds verbatim text; it is never inline-parsed.
type CodeBlock struct {
	Language string
	Text     string
}

// Blockquote wraps exactly one paragraph.
type Blockquote struct {
	Paragraph Paragraph
}

// Table is a sequence of rows.
type Table struct {
	NumberColumnEnabled bool
	Rows                []TableRow
}

// TableRow is a sequence of header or data cells.
type TableRow struct {
	Cells []Cell
}

// TableHeader is a header cell.
type TableHeader struct {
	Paragraph Paragraph
}

// TableCell is a data cell.
type TableCell struct {
	Paragraph Paragraph
}

// Rule is a horizontal rule.
type Rule struct{}

// Text is a leaf run of literal text with optional marks.
type Text struct {
	Text  string
	Marks []Mark
}

// Mark is a formatting mark on a text run. Href is only meaningful for
// links and Color only for text colors.
type Mark struct {
	Type  MarkType
	Href  string
	Color string
}

func Strong() Mark                { return Mark{Type: MarkStrong} }
func Em() Mark                    { return Mark{Type: MarkEm} }
func Underline() Mark             { return Mark{Type: MarkUnderline} }
func Code() Mark                  { return Mark{Type: MarkCode} }
func Strike() Mark                { return Mark{Type: MarkStrike} }
func Link(href string) Mark       { return Mark{Type: MarkLink, Href: href} }
func TextColor(color string) Mark { return Mark{Type: MarkTextColor, Color: color} }

func (Doc) Kind() Kind         { return KindDoc }
func (Paragraph) Kind() Kind   { return KindParagraph }
func (Heading) Kind() Kind     { return KindHeading }
func (BulletList) Kind() Kind  { return KindBulletList }
func (OrderedList) Kind() Kind { return KindOrderedList }
func (ListItem) Kind() Kind    { return KindListItem }
func (CodeBlock) Kind() Kind   { return KindCodeBlock }
func (Blockquote) Kind() Kind  { return KindBlockquote }
func (Table) Kind() Kind       { return KindTable }
func (TableRow) Kind() Kind    { return KindTableRow }
func (TableHeader) Kind() Kind { return KindTableHeader }
func (TableCell) Kind() Kind   { return KindTableCell }
func (Rule) Kind() Kind        { return KindRule }
func (Text) Kind() Kind        { return KindText }

func (Paragraph) isBlock()   {}
func (Heading) isBlock()     {}
func (BulletList) isBlock()  {}
func (OrderedList) isBlock() {}
func (CodeBlock) isBlock()   {}
func (Blockquote) isBlock()  {}
func (Table) isBlock()       {}
func (Rule) isBlock()        {}

func (TableHeader) isCell() {}
func (TableCell) isCell()   {}

func (d Doc) Children() []Node         { return nodes(d.Content) }
func (p Paragraph) Children() []Node   { return nodes(p.Content) }
func (h Heading) Children() []Node     { return nodes(h.Content) }
func (l BulletList) Children() []Node  { return nodes(l.Items) }
func (l OrderedList) Children() []Node { return nodes(l.Items) }
func (li ListItem) Children() []Node   { return []Node{li.Paragraph} }
func (c CodeBlock) Children() []Node   { return []Node{Text{Text: c.Text}} }
func (q Blockquote) Children() []Node  { return []Node{q.Paragraph} }
func (t Table) Children() []Node       { return nodes(t.Rows) }
func (r TableRow) Children() []Node    { return nodes(r.Cells) }
func (c TableHeader) Children() []Node { return []Node{c.Paragraph} }
func (c TableCell) Children() []Node   { return []Node{c.Paragraph} }
func (Rule) Children() []Node          { return nil }
func (Text) Children() []Node          { return nil }

func nodes[T Node](items []T) []Node {
	if len(items) == 0 {
		return nil
	}
	out := make([]Node, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// TextContent concatenates the literal text of every text leaf under n.
func TextContent(n Node) string {
	if t, ok := n.(Text); ok {
		return t.Text
	}
	var s string
	for _, child := range n.Children() {
		s += TextContent(child)
	}
	return s
}

// wireNode is the JSON shape shared by every non-text node.
type wireNode struct {
	Type    Kind           `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content any            `json:"content,omitempty"`
}

// wireContent keeps empty child lists out of the payload.
func wireContent[T any](items []T) any {
	if len(items) == 0 {
		return nil
	}
	return items
}

// MarshalJSON renders the document in the shape Jira's REST API expects.
func (d Doc) MarshalJSON() ([]byte, error) {
	content := d.Content
	if content == nil {
		content = []Block{}
	}
	return json.Marshal(struct {
		Type    Kind    `json:"type"`
		Version int     `json:"version"`
		Content []Block `json:"content"`
	}{KindDoc, documentVersion, content})
}

// wireText drops empty text runs; Jira rejects text nodes without text.
func wireText(runs []Text) any {
	kept := make([]Text, 0, len(runs))
	for _, r := range runs {
		if r.Text != "" {
			kept = append(kept, r)
		}
	}
	return wireContent(kept)
}

func (p Paragraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Type: KindParagraph, Content: wireText(p.Content)})
}

func (h Heading) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{
		Type:    KindHeading,
		Attrs:   map[string]any{"level": h.Level},
		Content: wireText(h.Content),
	})
}

func (l BulletList) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Type: KindBulletList, Content: wireContent(l.Items)})
}

func (l OrderedList) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Type: KindOrderedList, Content: wireContent(l.Items)})
}

func (li ListItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Type: KindListItem, Content: []Block{li.Paragraph}})
}

func (c CodeBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{
		Type:    KindCodeBlock,
		Attrs:   map[string]any{"language": c.Language},
		Content: wireText([]Text{{Text: c.Text}}),
	})
}

func (q Blockquote) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Type: KindBlockquote, Content: []Block{q.Paragraph}})
}

func (t Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{
		Type: KindTable,
		Attrs: map[string]any{
			"isNumberColumnEnabled": t.NumberColumnEnabled,
			"layout":                "default",
		},
		Content: wireContent(t.Rows),
	})
}

func (r TableRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Type: KindTableRow, Content: wireContent(r.Cells)})
}

func (c TableHeader) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Type: KindTableHeader, Content: []Block{c.Paragraph}})
}

func (c TableCell) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Type: KindTableCell, Content: []Block{c.Paragraph}})
}

func (Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Type: KindRule})
}

func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  Kind   `json:"type"`
		Text  string `json:"text"`
		Marks []Mark `json:"marks,omitempty"`
	}{KindText, t.Text, t.Marks})
}

func (m Mark) MarshalJSON() ([]byte, error) {
	var attrs map[string]any
	switch m.Type {
	case MarkLink:
		attrs = map[string]any{"href": m.Href}
	case MarkTextColor:
		attrs = map[string]any{"color": m.Color}
	}
	return json.Marshal(struct {
		Type  MarkType       `json:"type"`
		Attrs map[string]any `json:"attrs,omitempty"`
	}{m.Type, attrs})
}
