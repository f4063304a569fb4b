// Package jira implements the issue, comment, search and worklog operations
// exposed by the MCP tools, rendering Jira's answers as Markdown.
package jira

import (
	"context"
	"net/url"
	"strings"
	"time"

	"jira-mcp/internal/adf"
	"jira-mcp/internal/metrics"
)

const (
	apiPrefix  = "/rest/api/3"
	maxResults = 50

	// jiraTimeLayout is the timestamp format of the REST API, e.g.
	// 2024-01-15T10:30:00.000+0000.
	jiraTimeLayout = "2006-01-02T15:04:05.000-0700"
)

// Requester is the subset of the REST client the operations need.
type Requester interface {
	GetJSON(ctx context.Context, endpoint string) (map[string]any, error)
	PostJSON(ctx context.Context, endpoint string, payload any) (map[string]any, error)
	PutJSON(ctx context.Context, endpoint string, payload any) (map[string]any, error)
}

// Service runs operations against one tenant's Jira site.
type Service struct {
	client Requester
}

func NewService(client Requester) *Service {
	return &Service{client: client}
}

func issuePath(issueKey string, parts ...string) string {
	path := apiPrefix + "/issue/" + url.PathEscape(issueKey)
	for _, p := range parts {
		path += "/" + p
	}
	return path
}

// document converts user text for a rich-text field: Markdown goes
// through the converter, anything else becomes a single plain paragraph.
func document(text string) *adf.Doc {
	markdown := adf.LooksLikeMarkdown(text)
	metrics.RecordConversion(markdown)
	if markdown {
		return adf.FromMarkdown(text)
	}
	return adf.PlainDoc(text)
}

func formatTime(value string) string {
	t, err := time.Parse(jiraTimeLayout, value)
	if err != nil {
		return value
	}
	return t.UTC().Format("2006-01-02 15:04") + " UTC"
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func obj(m map[string]any, key string) map[string]any {
	o, _ := m[key].(map[string]any)
	return o
}

func list(m map[string]any, key string) []map[string]any {
	raw, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if o, ok := item.(map[string]any); ok {
			out = append(out, o)
		}
	}
	return out
}

// nameOf returns fields[key].name, e.g. the name of a status or priority.
func nameOf(fields map[string]any, key string) string {
	return str(obj(fields, key), "name")
}

// userLabel renders a user object as "Display Name (accountId:xxx)".
func userLabel(user map[string]any) string {
	if user == nil {
		return ""
	}
	name := str(user, "displayName")
	if name == "" {
		name = "Unknown"
	}
	if id := str(user, "accountId"); id != "" {
		return name + " (accountId:" + id + ")"
	}
	return name
}

func joinNames(items []map[string]any) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if name := str(item, "name"); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
