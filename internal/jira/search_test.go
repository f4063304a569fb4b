package jira

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchIssues(t *testing.T) {
	t.Parallel()
	fake := newFakeJira()
	fake.postResp = mustJSON(`{"isLast": false, "issues": [
		{"key": "PROJ-1", "fields": {"summary": "Fix login", "status": {"name": "Open"}, "issuetype": {"name": "Bug"},
		 "assignee": {"displayName": "Ada", "accountId": "a-1"}}},
		{"key": "PROJ-2", "fields": {"summary": "Docs", "issuetype": {"name": "Task"}}}
	]}`)

	out, err := NewService(fake).SearchIssues(context.Background(), "project = PROJ")
	require.NoError(t, err)

	require.Len(t, fake.posts, 1)
	assert.Equal(t, "/rest/api/3/search/jql", fake.posts[0].endpoint)
	assert.Equal(t, "project = PROJ", fake.posts[0].payload["jql"])
	assert.Equal(t, float64(50), fake.posts[0].payload["maxResults"])

	assert.Contains(t, out, "# Search Results (2 issues)\n")
	assert.Contains(t, out, "- **PROJ-1** [Bug] Fix login (Open) - Ada (accountId:a-1)\n")
	assert.Contains(t, out, "- **PROJ-2** [Task] Docs (Unknown) - Unassigned\n")
	assert.Contains(t, out, "More than 50 issues match")
}

func TestSearchIssues_NoResults(t *testing.T) {
	t.Parallel()
	fake := newFakeJira()
	fake.postResp = mustJSON(`{"issues": [], "isLast": true}`)

	out, err := NewService(fake).SearchIssues(context.Background(), "project = NONE")
	require.NoError(t, err)
	assert.Equal(t, "No issues found.\n", out)
}
