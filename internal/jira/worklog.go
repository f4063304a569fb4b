package jira

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"jira-mcp/internal/adf"
)

// FetchWorklogs returns the time logged on an issue.
func (s *Service) FetchWorklogs(ctx context.Context, issueKey string) (string, error) {
	endpoint := issuePath(issueKey, "worklog") + fmt.Sprintf("?maxResults=%d", maxResults)
	result, err := s.client.GetJSON(ctx, endpoint)
	if err != nil {
		return "", err
	}
	return formatWorklogs(issueKey, result), nil
}

func formatWorklogs(issueKey string, result map[string]any) string {
	var sb strings.Builder

	worklogs := list(result, "worklogs")
	if len(worklogs) == 0 {
		sb.WriteString(fmt.Sprintf("# Worklogs for %s\n\nNo time logged.\n", issueKey))
		return sb.String()
	}

	var total time.Duration
	for _, w := range worklogs {
		if seconds, ok := w["timeSpentSeconds"].(float64); ok {
			total += time.Duration(seconds) * time.Second
		}
	}

	sb.WriteString(fmt.Sprintf("# Worklogs for %s\n\n", issueKey))
	sb.WriteString(fmt.Sprintf("**Entries:** %d\n**Total:** %s\n\n", len(worklogs), formatDuration(total)))
	for _, w := range worklogs {
		sb.WriteString(fmt.Sprintf("### %s - %s (%s)\n", str(w, "timeSpent"), userLabel(obj(w, "author")), formatTime(str(w, "started"))))
		if comment := obj(w, "comment"); comment != nil {
			sb.WriteString("\n")
			sb.WriteString(adf.ToMarkdown(comment))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatDuration renders d in Jira's "1d 2h 30m" style using 8h days.
func formatDuration(d time.Duration) string {
	minutes := int(d / time.Minute)
	if minutes == 0 {
		return "0m"
	}
	days := minutes / (8 * 60)
	minutes -= days * 8 * 60
	hours := minutes / 60
	minutes -= hours * 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	return strings.Join(parts, " ")
}

// WorklogInput describes time to log on an issue.
type WorklogInput struct {
	TimeSpent string
	Comment   string
	Started   time.Time
}

// AddWorklog logs time on an issue. A zero Started means now.
func (s *Service) AddWorklog(ctx context.Context, issueKey string, in WorklogInput) (string, error) {
	started := in.Started
	if started.IsZero() {
		started = time.Now()
	}
	payload := map[string]any{
		"timeSpent": in.TimeSpent,
		"started":   started.Format(jiraTimeLayout),
	}
	if in.Comment != "" {
		payload["comment"] = document(in.Comment)
	}

	result, err := s.client.PostJSON(ctx, issuePath(issueKey, "worklog"), payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Worklog added successfully (ID: %s, time spent: %s)", str(result, "id"), in.TimeSpent), nil
}

// ParseStarted accepts an RFC 3339 timestamp, Jira's own format or a bare
// date (taken as 09:00 UTC).
func ParseStarted(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339, jiraTimeLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.Add(9 * time.Hour), nil
	}
	return time.Time{}, errors.Errorf("invalid started %q: use RFC 3339, e.g. 2024-01-15T09:00:00Z", value)
}
