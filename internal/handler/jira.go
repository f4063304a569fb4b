package handler

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"jira-mcp/internal/client"
	"jira-mcp/internal/config"
	"jira-mcp/internal/jira"
	"jira-mcp/internal/types"
	"jira-mcp/internal/users"
)

// tenant bundles what an operation needs to act for the caller.
type tenant struct {
	client *client.Client
	jira   *jira.Service
}

type operation func(ctx context.Context, t tenant, param string) (string, error)

var readOperations = map[string]operation{
	"get_issue": withIssueKey(func(ctx context.Context, t tenant, key string) (string, error) {
		return t.jira.FetchIssue(ctx, key)
	}),
	"get_comments": withIssueKey(func(ctx context.Context, t tenant, key string) (string, error) {
		return t.jira.FetchComments(ctx, key)
	}),
	"get_worklogs": withIssueKey(func(ctx context.Context, t tenant, key string) (string, error) {
		return t.jira.FetchWorklogs(ctx, key)
	}),
	"search": func(ctx context.Context, t tenant, jql string) (string, error) {
		if jql == "" {
			return "", errors.New("JQL query is required")
		}
		return t.jira.SearchIssues(ctx, jql)
	},
	"search_users": func(ctx context.Context, t tenant, query string) (string, error) {
		return users.SearchUsers(ctx, t.client, query)
	},
}

var writeOperations = map[string]operation{
	"add_comment":  addComment,
	"update_issue": updateIssue,
	"create_issue": createIssue,
	"add_worklog":  addWorklog,
}

func withIssueKey(fn func(ctx context.Context, t tenant, key string) (string, error)) operation {
	return func(ctx context.Context, t tenant, param string) (string, error) {
		key, err := config.ExtractIssueKey(param)
		if err != nil {
			return "", err
		}
		return fn(ctx, t, key)
	}
}

// decodeParams parses and validates the JSON param of a write verb. The
// verb's help is appended to any error.
func decodeParams[T interface{ Validate() error }](verb, param string) (T, error) {
	var p T
	if err := json.Unmarshal([]byte(param), &p); err != nil {
		return p, errors.Errorf("Invalid JSON params: %v\n\n%s", err, types.JiraWriteVerbHelp[verb])
	}
	if err := p.Validate(); err != nil {
		return p, errors.Errorf("Invalid params: %v\n\n%s", err, types.JiraWriteVerbHelp[verb])
	}
	return p, nil
}

func addComment(ctx context.Context, t tenant, param string) (string, error) {
	p, err := decodeParams[types.JiraAddCommentParams]("add_comment", param)
	if err != nil {
		return "", err
	}
	key, err := config.ExtractIssueKey(p.Issue)
	if err != nil {
		return "", err
	}
	return t.jira.AddComment(ctx, key, p.Body)
}

func updateIssue(ctx context.Context, t tenant, param string) (string, error) {
	p, err := decodeParams[types.JiraUpdateIssueParams]("update_issue", param)
	if err != nil {
		return "", err
	}
	key, err := config.ExtractIssueKey(p.Issue)
	if err != nil {
		return "", err
	}
	return t.jira.UpdateIssue(ctx, key, p.Fields, p.Checksums)
}

func createIssue(ctx context.Context, t tenant, param string) (string, error) {
	p, err := decodeParams[types.JiraCreateIssueParams]("create_issue", param)
	if err != nil {
		return "", err
	}
	in := jira.IssueInput{
		Project:     p.Project,
		IssueType:   p.IssueType,
		Summary:     p.Summary,
		Description: p.Description,
		Labels:      p.Labels,
	}
	if p.Parent != "" {
		if in.Parent, err = config.ExtractIssueKey(p.Parent); err != nil {
			return "", errors.Wrap(err, "parent")
		}
	}
	return t.jira.CreateIssue(ctx, in)
}

func addWorklog(ctx context.Context, t tenant, param string) (string, error) {
	p, err := decodeParams[types.JiraAddWorklogParams]("add_worklog", param)
	if err != nil {
		return "", err
	}
	key, err := config.ExtractIssueKey(p.Issue)
	if err != nil {
		return "", err
	}
	in := jira.WorklogInput{TimeSpent: p.TimeSpent, Comment: p.Comment}
	if p.Started != "" {
		if in.Started, err = jira.ParseStarted(p.Started); err != nil {
			return "", err
		}
	}
	return t.jira.AddWorklog(ctx, key, in)
}
