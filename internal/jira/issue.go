package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"jira-mcp/internal/adf"
)

// FetchIssue fetches an issue and renders it as Markdown, followed by the
// checksums UpdateIssue expects.
func (s *Service) FetchIssue(ctx context.Context, issueKey string) (string, error) {
	issue, err := s.client.GetJSON(ctx, issuePath(issueKey))
	if err != nil {
		return "", err
	}
	return formatIssue(issue), nil
}

func formatIssue(issue map[string]any) string {
	var sb strings.Builder

	key := str(issue, "key")
	fields := obj(issue, "fields")

	sb.WriteString(fmt.Sprintf("# %s: %s\n\n", key, str(fields, "summary")))

	writeField := func(label, value string) {
		if value != "" {
			sb.WriteString(fmt.Sprintf("**%s:** %s\n", label, value))
		}
	}
	writeField("Status", nameOf(fields, "status"))
	writeField("Type", nameOf(fields, "issuetype"))
	writeField("Priority", nameOf(fields, "priority"))
	writeField("Assignee", userLabel(obj(fields, "assignee")))
	writeField("Reporter", userLabel(obj(fields, "reporter")))

	if labels, ok := fields["labels"].([]any); ok {
		names := make([]string, 0, len(labels))
		for _, l := range labels {
			if s, ok := l.(string); ok {
				names = append(names, s)
			}
		}
		writeField("Labels", strings.Join(names, ", "))
	}
	writeField("Components", joinNames(list(fields, "components")))

	if parent := obj(fields, "parent"); parent != nil {
		label := str(parent, "key")
		if summary := str(obj(parent, "fields"), "summary"); summary != "" {
			label += " - " + summary
		}
		writeField("Parent", label)
	}
	writeField("Created", formatTime(str(fields, "created")))
	writeField("Updated", formatTime(str(fields, "updated")))

	if description := obj(fields, "description"); description != nil {
		sb.WriteString("\n## Description\n\n")
		sb.WriteString(adf.ToMarkdown(description))
		sb.WriteString("\n")
	}

	if subtasks := list(fields, "subtasks"); len(subtasks) > 0 {
		sb.WriteString("\n## Subtasks\n\n")
		for _, st := range subtasks {
			stFields := obj(st, "fields")
			sb.WriteString(fmt.Sprintf("- [%s] %s - %s\n", str(st, "key"), str(stFields, "summary"), nameOf(stFields, "status")))
		}
	}

	if links := list(fields, "issuelinks"); len(links) > 0 {
		sb.WriteString("\n## Linked Issues\n\n")
		for _, link := range links {
			linkType := obj(link, "type")
			if outward := obj(link, "outwardIssue"); outward != nil {
				sb.WriteString(fmt.Sprintf("- %s: %s - %s\n", str(linkType, "outward"), str(outward, "key"), str(obj(outward, "fields"), "summary")))
			}
			if inward := obj(link, "inwardIssue"); inward != nil {
				sb.WriteString(fmt.Sprintf("- %s: %s - %s\n", str(linkType, "inward"), str(inward, "key"), str(obj(inward, "fields"), "summary")))
			}
		}
	}

	sb.WriteString("\n")
	writeChecksums(&sb, Checksums(fields, ChecksumFields))
	return sb.String()
}

func writeChecksums(sb *strings.Builder, checksums map[string]string) {
	data, _ := json.Marshal(checksums)
	sb.WriteString("## Checksums\n\n```json\n")
	sb.Write(data)
	sb.WriteString("\n```\n")
}

// UpdateIssue sets fields on an issue with optimistic concurrency control:
// every updated field needs the checksum FetchIssue reported for it, and
// the update is refused if any of them changed since. A string
// description is converted to ADF.
func (s *Service) UpdateIssue(ctx context.Context, issueKey string, fields map[string]any, checksums map[string]string) (string, error) {
	if len(fields) == 0 {
		return "", errors.New("no fields to update")
	}

	current, err := s.client.GetJSON(ctx, issuePath(issueKey))
	if err != nil {
		return "", err
	}
	if err := verifyChecksums(fields, obj(current, "fields"), checksums); err != nil {
		return "", err
	}

	update := make(map[string]any, len(fields))
	for name, value := range fields {
		update[name] = value
	}
	if desc, ok := update["description"].(string); ok {
		update["description"] = document(desc)
	}

	if _, err := s.client.PutJSON(ctx, issuePath(issueKey), map[string]any{"fields": update}); err != nil {
		return "", err
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	refreshed, err := s.client.GetJSON(ctx, issuePath(issueKey))
	if err != nil {
		return fmt.Sprintf("Issue %s updated successfully (could not fetch fresh checksums)", issueKey), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Issue %s updated successfully\n\n", issueKey))
	writeChecksums(&sb, Checksums(obj(refreshed, "fields"), names))
	return sb.String(), nil
}

// IssueInput describes an issue to create.
type IssueInput struct {
	Project     string
	IssueType   string
	Summary     string
	Description string
	Labels      []string
	Parent      string
}

func (s *Service) CreateIssue(ctx context.Context, in IssueInput) (string, error) {
	fields := map[string]any{
		"project":   map[string]any{"key": in.Project},
		"issuetype": map[string]any{"name": in.IssueType},
		"summary":   in.Summary,
	}
	if in.Description != "" {
		fields["description"] = document(in.Description)
	}
	if len(in.Labels) > 0 {
		fields["labels"] = in.Labels
	}
	if in.Parent != "" {
		fields["parent"] = map[string]any{"key": in.Parent}
	}

	result, err := s.client.PostJSON(ctx, apiPrefix+"/issue", map[string]any{"fields": fields})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Issue created: %s", str(result, "key")), nil
}
