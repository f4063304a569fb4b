// Package users finds Jira accounts by name or email.
package users

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const maxResults = 10

// Getter is the read side of the REST client.
type Getter interface {
	GetJSON(ctx context.Context, endpoint string) (map[string]any, error)
}

// SearchUsers queries the user picker and returns a Markdown table of the
// matches with their account ids.
func SearchUsers(ctx context.Context, client Getter, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", errors.New("search query is required")
	}

	endpoint := fmt.Sprintf("/rest/api/3/user/picker?query=%s&maxResults=%d", url.QueryEscape(query), maxResults)
	result, err := client.GetJSON(ctx, endpoint)
	if err != nil {
		return "", err
	}

	raw, _ := result["users"].([]any)
	var rows []string
	for _, u := range raw {
		user, ok := u.(map[string]any)
		if !ok {
			continue
		}
		name, _ := user["displayName"].(string)
		id, _ := user["accountId"].(string)
		if name == "" || id == "" {
			continue
		}
		rows = append(rows, fmt.Sprintf("| %s | %s | `{\"accountId\": \"%s\"}` |", escapeCell(name), id, id))
	}
	if len(rows) == 0 {
		return "No users found matching: " + query + "\n", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# User Search Results (%d found)\n\n", len(rows)))
	sb.WriteString("| Name | Account ID | Field Value |\n")
	sb.WriteString("|------|------------|-------------|\n")
	for _, row := range rows {
		sb.WriteString(row + "\n")
	}
	sb.WriteString("\n**Usage:** pass the field value as `assignee` in update_issue, or the account id in JQL, e.g. `assignee = <account id>`.\n")
	return sb.String(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
