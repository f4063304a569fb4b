package adf

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(text string) []Text {
	return []Text{{Text: text}}
}

func TestParseBlocks_Empty(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"", "\n", "   \n\t\n"} {
		assert.Empty(t, ParseBlocks(input), "input %q", input)
	}
}

func TestParseBlocks_PlainText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Single_Line", input: "just a plain sentence with no symbols", want: "just a plain sentence with no symbols"},
		{name: "Joined_Lines", input: "first line\nsecond line", want: "first line second line"},
		{name: "Trimmed_Lines", input: "  padded  \n  more", want: "padded more"},
		{name: "CRLF", input: "one\r\ntwo", want: "one two"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			blocks := ParseBlocks(tt.input)
			require.Len(t, blocks, 1)
			assert.Equal(t, Paragraph{Content: plain(tt.want)}, blocks[0])
		})
	}
}

func TestParseBlocks_Paragraphs(t *testing.T) {
	t.Parallel()
	para := func(text string) Block { return Paragraph{Content: plain(text)} }
	tests := []struct {
		name  string
		input string
		want  []Block
	}{
		{
			name:  "Blank_Line",
			input: "First\n\nSecond",
			want:  []Block{para("First"), para("Second")},
		},
		{
			name:  "Ends_At_Heading",
			input: "text\n# Head",
			want:  []Block{para("text"), Heading{Level: 1, Content: plain("Head")}},
		},
		{
			name:  "Ends_At_Rule",
			input: "text\n***",
			want:  []Block{para("text"), Rule{}},
		},
		{
			name:  "Ends_At_Fence",
			input: "text\n```\ncode\n```",
			want:  []Block{para("text"), CodeBlock{Language: "text", Text: "code"}},
		},
		{
			name:  "Ends_At_Blockquote",
			input: "text\n> quoted",
			want:  []Block{para("text"), Blockquote{Paragraph: Paragraph{Content: plain("quoted")}}},
		},
		{
			name:  "Ends_At_Ordered_List",
			input: "text\n1. one",
			want:  []Block{para("text"), OrderedList{Items: []ListItem{{Paragraph: Paragraph{Content: plain("one")}}}}},
		},
		{
			name:  "Ends_At_Table",
			input: "text\n| a |\n|---|",
			want: []Block{para("text"), Table{Rows: []TableRow{
				{Cells: []Cell{TableHeader{Paragraph: Paragraph{Content: plain("a")}}}},
			}}},
		},
		{
			name:  "Indented_Quote_Continues",
			input: "text\n  > x",
			want:  []Block{para("text > x")},
		},
		{
			name:  "Indented_Fence_Continues",
			input: "text\n  ```",
			want:  []Block{Paragraph{Content: ParseInline("text ```")}},
		},
		{
			name:  "Indented_Heading_Continues",
			input: "text\n  # not a heading",
			want:  []Block{para("text # not a heading")},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseBlocks(tt.input))
		})
	}
}

func TestParseBlocks_HeadingLevels(t *testing.T) {
	t.Parallel()
	for level := 1; level <= 6; level++ {
		level := level
		t.Run(fmt.Sprintf("Level_%d", level), func(t *testing.T) {
			t.Parallel()
			blocks := ParseBlocks(strings.Repeat("#", level) + " Title")
			require.Len(t, blocks, 1)
			assert.Equal(t, Heading{Level: level, Content: plain("Title")}, blocks[0])
		})
	}
}

func TestParseBlocks_Heading(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  Block
	}{
		{
			name:  "Inline_Marks",
			input: "## The **bold** part",
			want: Heading{Level: 2, Content: []Text{
				{Text: "The "},
				{Text: "bold", Marks: []Mark{Strong()}},
				{Text: " part"},
			}},
		},
		{
			name:  "Seven_Hashes_Is_Paragraph",
			input: "####### deep",
			want:  Paragraph{Content: plain("####### deep")},
		},
		{
			name:  "No_Space_Is_Paragraph",
			input: "#tag",
			want:  Paragraph{Content: plain("#tag")},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			blocks := ParseBlocks(tt.input)
			require.Len(t, blocks, 1)
			assert.Equal(t, tt.want, blocks[0])
		})
	}
}

func TestParseBlocks_Rule(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  []Block
	}{
		{name: "Dashes", input: "---", want: []Block{Rule{}}},
		{name: "Stars", input: "*****", want: []Block{Rule{}}},
		{name: "Underscores", input: "  ___  ", want: []Block{Rule{}}},
		{name: "Mixed_Is_Not_Rule", input: "-*-", want: []Block{Paragraph{Content: []Text{{Text: "-"}, {Text: "*"}, {Text: "-"}}}}},
		{
			name:  "Between_Paragraphs",
			input: "above\n---\nbelow",
			want: []Block{
				Paragraph{Content: plain("above")},
				Rule{},
				Paragraph{Content: plain("below")},
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseBlocks(tt.input))
		})
	}
}

func TestParseBlocks_CodeBlock(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  []Block
	}{
		{
			name:  "With_Language",
			input: "```go\nfunc main() {}\n```",
			want:  []Block{CodeBlock{Language: "go", Text: "func main() {}"}},
		},
		{
			name:  "Default_Language",
			input: "```\nplain code\n```",
			want:  []Block{CodeBlock{Language: "text", Text: "plain code"}},
		},
		{
			name:  "Verbatim_Content",
			input: "```\n**not bold**\n# not heading\n```",
			want:  []Block{CodeBlock{Language: "text", Text: "**not bold**\n# not heading"}},
		},
		{
			name:  "Keeps_Indentation",
			input: "```py\nif x:\n    return 1\n```",
			want:  []Block{CodeBlock{Language: "py", Text: "if x:\n    return 1"}},
		},
		{
			name:  "Unterminated",
			input: "```sh\necho one\n\necho two",
			want:  []Block{CodeBlock{Language: "sh", Text: "echo one\n\necho two"}},
		},
		{
			name:  "Empty",
			input: "```\n```",
			want:  []Block{CodeBlock{Language: "text", Text: ""}},
		},
		{
			name:  "Followed_By_Paragraph",
			input: "```\nx\n```\nafter",
			want: []Block{
				CodeBlock{Language: "text", Text: "x"},
				Paragraph{Content: plain("after")},
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseBlocks(tt.input))
		})
	}
}

func TestParseBlocks_Blockquote(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  Block
	}{
		{
			name:  "Single_Line",
			input: "> Quote",
			want:  Blockquote{Paragraph: Paragraph{Content: plain("Quote")}},
		},
		{
			name:  "Joined_Lines",
			input: "> Line 1\n>Line 2\n  >  Line 3",
			want:  Blockquote{Paragraph: Paragraph{Content: plain("Line 1 Line 2  Line 3")}},
		},
		{
			name:  "Inline_Marks",
			input: "> be *careful*",
			want: Blockquote{Paragraph: Paragraph{Content: []Text{
				{Text: "be "},
				{Text: "careful", Marks: []Mark{Em()}},
			}}},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			blocks := ParseBlocks(tt.input)
			require.Len(t, blocks, 1)
			assert.Equal(t, tt.want, blocks[0])
		})
	}
}

func TestParseBlocks_Lists(t *testing.T) {
	t.Parallel()
	item := func(text string) ListItem {
		return ListItem{Paragraph: Paragraph{Content: plain(text)}}
	}
	tests := []struct {
		name  string
		input string
		want  []Block
	}{
		{
			name:  "Bullet_Dash",
			input: "- one\n- two",
			want:  []Block{BulletList{Items: []ListItem{item("one"), item("two")}}},
		},
		{
			name:  "Bullet_Star_Mixed",
			input: "* one\n- two",
			want:  []Block{BulletList{Items: []ListItem{item("one"), item("two")}}},
		},
		{
			name:  "Ordered_Numbers_Discarded",
			input: "3. three\n7. seven",
			want:  []Block{OrderedList{Items: []ListItem{item("three"), item("seven")}}},
		},
		{
			name:  "Bullet_Then_Ordered",
			input: "- a\n1. b",
			want: []Block{
				BulletList{Items: []ListItem{item("a")}},
				OrderedList{Items: []ListItem{item("b")}},
			},
		},
		{
			name:  "Indented_Item_Flattened",
			input: "- a\n  - b",
			want:  []Block{BulletList{Items: []ListItem{item("a"), item("b")}}},
		},
		{
			name:  "Paragraph_Ends_At_List",
			input: "intro\n- a",
			want: []Block{
				Paragraph{Content: plain("intro")},
				BulletList{Items: []ListItem{item("a")}},
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseBlocks(tt.input))
		})
	}
}

func TestParseBlocks_TableShape(t *testing.T) {
	t.Parallel()
	for cols := 1; cols <= 4; cols++ {
		cols := cols
		t.Run(fmt.Sprintf("Columns_%d", cols), func(t *testing.T) {
			t.Parallel()
			header := "|" + strings.Repeat(" h |", cols)
			sep := "|" + strings.Repeat("---|", cols)
			data := "|" + strings.Repeat(" d |", cols)

			blocks := ParseBlocks(strings.Join([]string{header, sep, data}, "\n"))
			require.Len(t, blocks, 1)
			table, ok := blocks[0].(Table)
			require.True(t, ok)
			require.Len(t, table.Rows, 2)

			require.Len(t, table.Rows[0].Cells, cols)
			for _, c := range table.Rows[0].Cells {
				assert.IsType(t, TableHeader{}, c)
			}
			require.Len(t, table.Rows[1].Cells, cols)
			for _, c := range table.Rows[1].Cells {
				assert.IsType(t, TableCell{}, c)
			}
		})
	}
}

func TestParseBlocks_Table(t *testing.T) {
	t.Parallel()
	header := func(text string) Cell { return TableHeader{Paragraph: Paragraph{Content: plain(text)}} }
	cell := func(text string) Cell { return TableCell{Paragraph: Paragraph{Content: plain(text)}} }

	tests := []struct {
		name  string
		input string
		want  []Block
	}{
		{
			name:  "No_Separator_All_Data",
			input: "| a | b |\n| c | d |",
			want: []Block{Table{Rows: []TableRow{
				{Cells: []Cell{cell("a"), cell("b")}},
				{Cells: []Cell{cell("c"), cell("d")}},
			}}},
		},
		{
			name:  "Aligned_Separator",
			input: "| a | b |\n|:--|--:|\n| c | d |",
			want: []Block{Table{Rows: []TableRow{
				{Cells: []Cell{header("a"), header("b")}},
				{Cells: []Cell{cell("c"), cell("d")}},
			}}},
		},
		{
			name:  "Second_Separator_Kept_As_Row",
			input: "| a |\n|---|\n| b |\n|---|",
			want: []Block{Table{Rows: []TableRow{
				{Cells: []Cell{header("a")}},
				{Cells: []Cell{cell("b")}},
				{Cells: []Cell{cell("---")}},
			}}},
		},
		{
			name:  "Empty_Cells_Row_Is_Separator",
			input: "| a | b |\n| | |\n| c | d |",
			want: []Block{Table{Rows: []TableRow{
				{Cells: []Cell{header("a"), header("b")}},
				{Cells: []Cell{cell("c"), cell("d")}},
			}}},
		},
		{
			name:  "Only_Separator_Emits_Nothing",
			input: "|---|---|",
			want:  nil,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseBlocks(tt.input))
		})
	}
}

func TestParseBlocks_ExampleScenario(t *testing.T) {
	t.Parallel()
	input := strings.Join([]string{
		"## Finding",
		"",
		"| Field | Value |",
		"|-------|-------|",
		"| Severity | **CRITICAL** |",
		"",
		"- Item 1",
		"- Item 2",
	}, "\n")

	want := []Block{
		Heading{Level: 2, Content: plain("Finding")},
		Table{Rows: []TableRow{
			{Cells: []Cell{
				TableHeader{Paragraph: Paragraph{Content: plain("Field")}},
				TableHeader{Paragraph: Paragraph{Content: plain("Value")}},
			}},
			{Cells: []Cell{
				TableCell{Paragraph: Paragraph{Content: plain("Severity")}},
				TableCell{Paragraph: Paragraph{Content: []Text{{Text: "CRITICAL", Marks: []Mark{Strong()}}}}},
			}},
		}},
		BulletList{Items: []ListItem{
			{Paragraph: Paragraph{Content: plain("Item 1")}},
			{Paragraph: Paragraph{Content: plain("Item 2")}},
		}},
	}

	assert.Equal(t, want, ParseBlocks(input))
}

func TestFromText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  *Doc
	}{
		{
			name:  "Plain_Kept_Verbatim",
			input: "line one\nline two",
			want:  &Doc{Content: []Block{Paragraph{Content: plain("line one\nline two")}}},
		},
		{
			name:  "Markdown_Converted",
			input: "# Title",
			want:  &Doc{Content: []Block{Heading{Level: 1, Content: plain("Title")}}},
		},
		{
			name:  "Empty_Is_Plain",
			input: "",
			want:  &Doc{Content: []Block{Paragraph{Content: plain("")}}},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FromText(tt.input))
		})
	}
}

func TestFromMarkdown_EmptyDoc(t *testing.T) {
	t.Parallel()
	doc := FromMarkdown("")
	require.NotNil(t, doc)
	assert.Empty(t, doc.Content)
}
