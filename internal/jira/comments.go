package jira

import (
	"context"
	"fmt"
	"strings"

	"jira-mcp/internal/adf"
)

// FetchComments returns up to 50 comments of an issue, oldest first.
func (s *Service) FetchComments(ctx context.Context, issueKey string) (string, error) {
	endpoint := issuePath(issueKey, "comment") + fmt.Sprintf("?orderBy=created&maxResults=%d", maxResults)
	result, err := s.client.GetJSON(ctx, endpoint)
	if err != nil {
		return "", err
	}
	return formatComments(issueKey, result), nil
}

func formatComments(issueKey string, result map[string]any) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Comments for %s\n\n", issueKey))

	comments := list(result, "comments")
	if len(comments) == 0 {
		sb.WriteString("No comments found.\n")
		return sb.String()
	}

	for _, comment := range comments {
		sb.WriteString(fmt.Sprintf("### %s (%s)\n\n", userLabel(obj(comment, "author")), formatTime(str(comment, "created"))))
		if body := obj(comment, "body"); body != nil {
			sb.WriteString(adf.ToMarkdown(body))
			sb.WriteString("\n")
		}
		sb.WriteString("\n---\n\n")
	}
	return sb.String()
}

// AddComment posts body as a new comment. Markdown bodies are converted
// to rich text; anything else is posted verbatim.
func (s *Service) AddComment(ctx context.Context, issueKey, body string) (string, error) {
	result, err := s.client.PostJSON(ctx, issuePath(issueKey, "comment"), map[string]any{
		"body": document(body),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Comment added successfully (ID: %s)", str(result, "id")), nil
}
