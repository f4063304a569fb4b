// Package types holds the JSON-RPC envelope, tool parameter types and the
// help texts returned by the tools.
package types

import "encoding/json"

const (
	JSONRPCVersion  = "2.0"
	ProtocolVersion = "2024-11-05"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request expects no response.
func (r Request) IsNotification() bool {
	return r.ID == nil
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error represents a JSON-RPC 2.0 error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewResult(id, result any) Response {
	return Response{JSONRPC: JSONRPCVersion, ID: id, Result: result}
}

func NewError(id any, code int, message string) Response {
	return Response{JSONRPC: JSONRPCVersion, ID: id, Error: &Error{Code: code, Message: message}}
}

// Tool represents an MCP tool definition.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"inputSchema"`
}

// ToolCallParams represents parameters for a tool call.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// TextContent represents text content in a tool response.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the result of tools/call. Tool failures are results with
// IsError set, not JSON-RPC errors.
type ToolResult struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

func TextResult(text string) ToolResult {
	return ToolResult{Content: []TextContent{{Type: "text", Text: text}}}
}

func ErrorResult(text string) ToolResult {
	return ToolResult{Content: []TextContent{{Type: "text", Text: text}}, IsError: true}
}

// VerbArgs represents verb-based dispatching arguments.
type VerbArgs struct {
	Verb  string `json:"verb"`
	Param string `json:"param"`
}

// SearchUsersHelp contains help text for the search_users verb.
const SearchUsersHelp = `Search for users by name or email. Param: search query

Example: search_users with param "John" or "john@example.com"

Returns up to 10 matching users with:
- Display name
- Account ID
- A field value ready for update_issue, e.g. {"assignee": {"accountId": "..."}}`

// GetFormatHelp contains help text for the get_format verb.
const GetFormatHelp = `Get the Markdown reference for rich-text fields. Param: ignored

Describes which Markdown is converted when writing comments, descriptions and worklog comments.`

// FormatDocumentation describes how text written through jira_write is
// turned into Jira rich text.
const FormatDocumentation = `# Markdown Format Reference

Comment bodies, issue descriptions and worklog comments accept Markdown.

## Detection

Text is converted only when it looks like Markdown. Any of these is enough:
- a line starting with 1-6 '#' followed by a space
- **bold**, *italic*, ` + "`code`" + ` or a ` + "```" + ` fence anywhere
- a line starting with "- ", "* " or "1. " (leading spaces allowed)
- a [link](https://example.com)
- a line that starts and ends with '|'
- a line starting with '>'

Anything else is posted verbatim as a single paragraph, so plain text such as
"5 * 3 = 15" or "snake_case_name" is never mangled.

## Blocks

    # Heading 1 ... ###### Heading 6

    ` + "```" + `go
    fmt.Println("code")
    ` + "```" + `
    (no language means "text"; a missing closing fence runs to the end)

    > Quoted lines are joined
    > into one paragraph

    - bullet item
    * bullet item

    1. ordered item
    2. ordered item

    | Header 1 | Header 2 |
    |----------|----------|
    | Cell 1   | Cell 2   |
    (a separator row makes the rows above it header rows)

    ---   ***   ___   (horizontal rule)

Consecutive lines are joined into one paragraph; a blank line ends it.
Nested lists are not recognised: indented items join the same list.

## Inline

    **bold**  __bold__
    *italic*  _italic_
    ***bold italic***  ___bold italic___
    ` + "`inline code`" + `
    ~~strikethrough~~
    [link text](https://example.com)

Marks do not nest except bold italic. An unpaired '*', '_', '` + "`" + `', '~' or '['
is kept as literal text.

Underscore forms alone do not make text look like Markdown; combine them with
another construct or use the asterisk forms.

## Reading

get_issue, get_comments and get_worklogs render Jira rich text back to
Markdown. Mentions appear as "@Name (accountId:xxx)", statuses as [STATUS],
attachments as [alt text]. These renderings are informational and are not
converted back into mentions or media when written.
`
