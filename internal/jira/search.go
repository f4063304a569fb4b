package jira

import (
	"context"
	"fmt"
	"strings"
)

var searchFields = []string{"key", "summary", "status", "assignee", "issuetype", "priority"}

// SearchIssues runs a JQL query through the enhanced search endpoint.
func (s *Service) SearchIssues(ctx context.Context, jql string) (string, error) {
	result, err := s.client.PostJSON(ctx, apiPrefix+"/search/jql", map[string]any{
		"jql":        jql,
		"maxResults": maxResults,
		"fields":     searchFields,
	})
	if err != nil {
		return "", err
	}
	return formatSearch(result), nil
}

func formatSearch(result map[string]any) string {
	issues := list(result, "issues")
	if len(issues) == 0 {
		return "No issues found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Search Results (%d issues)\n\n", len(issues)))
	for _, issue := range issues {
		fields := obj(issue, "fields")

		status := nameOf(fields, "status")
		if status == "" {
			status = "Unknown"
		}
		assignee := userLabel(obj(fields, "assignee"))
		if assignee == "" {
			assignee = "Unassigned"
		}

		sb.WriteString(fmt.Sprintf("- **%s** [%s] %s (%s) - %s\n",
			str(issue, "key"), nameOf(fields, "issuetype"), str(fields, "summary"), status, assignee))
	}

	if isLast, ok := result["isLast"].(bool); ok && !isLast {
		sb.WriteString(fmt.Sprintf("\nMore than %d issues match; narrow the query to see the rest.\n", maxResults))
	}
	return sb.String()
}
