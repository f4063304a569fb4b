package types

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"jira-mcp/internal/config"
)

var timeSpentPattern = regexp.MustCompile(`^\s*(\d+[wdhm]\s*)+$`)

const maxSummaryLength = 255

var projectKeyRule = validation.By(func(value interface{}) error {
	key, _ := value.(string)
	return config.ValidateProjectKey(key)
})

// JiraAddCommentParams represents parameters for adding a comment to a Jira issue.
type JiraAddCommentParams struct {
	Issue string `json:"issue"`
	Body  string `json:"body"`
}

func (p JiraAddCommentParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Issue, validation.Required),
		validation.Field(&p.Body, validation.Required),
	)
}

// JiraUpdateIssueParams represents parameters for updating a Jira issue.
type JiraUpdateIssueParams struct {
	Issue     string            `json:"issue"`
	Fields    map[string]any    `json:"fields"`
	Checksums map[string]string `json:"checksums"`
}

func (p JiraUpdateIssueParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Issue, validation.Required),
		validation.Field(&p.Fields, validation.Required),
	)
}

// JiraCreateIssueParams represents parameters for creating a Jira issue.
type JiraCreateIssueParams struct {
	Project     string   `json:"project"`
	IssueType   string   `json:"issuetype"`
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Parent      string   `json:"parent,omitempty"`
}

func (p JiraCreateIssueParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Project, validation.Required, projectKeyRule),
		validation.Field(&p.IssueType, validation.Required),
		validation.Field(&p.Summary, validation.Required, validation.RuneLength(1, maxSummaryLength)),
		validation.Field(&p.Labels, validation.Each(validation.Required, validation.Match(regexp.MustCompile(`^\S+$`)))),
	)
}

// JiraAddWorklogParams represents parameters for logging time on an issue.
type JiraAddWorklogParams struct {
	Issue     string `json:"issue"`
	TimeSpent string `json:"timeSpent"`
	Comment   string `json:"comment,omitempty"`
	Started   string `json:"started,omitempty"`
}

func (p JiraAddWorklogParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Issue, validation.Required),
		validation.Field(&p.TimeSpent, validation.Required,
			validation.Match(timeSpentPattern).Error("must be Jira duration notation, e.g. 1h 30m")),
	)
}

// JiraReadVerbHelp maps read verbs to their help text.
var JiraReadVerbHelp = map[string]string{
	"get_issue": `Get issue details. Param: issue key or URL (e.g., PROJ-123)

Returns: summary, status, type, priority, assignee, reporter, labels, components, parent, dates, description, subtasks, linked issues.

Ends with a Checksums block for: summary, description, status, assignee, priority, labels, components. Required for update_issue.`,
	"get_comments": `Get issue comments. Param: issue key or URL

Returns up to 50 comments (oldest first) with author, timestamp, and body in markdown.`,
	"search": `Search issues with JQL. Param: JQL query string

Example: assignee=currentUser() AND status=Open
Returns up to 50 issues with: key, type, summary, status, assignee.

JQL Reference: https://support.atlassian.com/jira-software-cloud/docs/use-advanced-search-with-jira-query-language-jql/`,
	"get_worklogs": `Get time logged on an issue. Param: issue key or URL

Returns up to 50 worklogs with author, start time, time spent and comment, plus the total.`,
}

// JiraWriteVerbHelp maps write verbs to their help text.
var JiraWriteVerbHelp = map[string]string{
	"add_comment": `Add comment to issue. Param: {"issue": "PROJ-123", "body": "Comment text"}

Body may be Markdown (see get_format). Plain text is posted verbatim.`,
	"update_issue": `Update issue fields. Param: {"issue": "PROJ-123", "fields": {...}, "checksums": {...}}

Workflow:
1. Call get_issue to get current values and checksums
2. Include the checksum of each field you update
3. If a field changed since the read, the update is refused with a conflict error

Checksum fields: summary, description, status, assignee, priority, labels, components.
Fields outside that list use the checksum of an empty value: e3b0c44298fc1c14.
A string description may be Markdown (see get_format).

Returns fresh checksums on success.`,
	"create_issue": `Create new issue. Param: {"project": "PROJ", "issuetype": "Task", "summary": "Title", "description": "Details"}

Required: project (key), issuetype (name), summary (max 255 characters)
Optional: description (Markdown, see get_format), labels (array of strings without spaces), parent (issue key)

Returns created issue key.`,
	"add_worklog": `Log time on an issue. Param: {"issue": "PROJ-123", "timeSpent": "1h 30m", "comment": "What was done", "started": "2024-01-15T09:00:00Z"}

Required: issue, timeSpent (Jira notation: w, d, h, m)
Optional: comment (Markdown, see get_format), started (RFC 3339 or YYYY-MM-DD; defaults to now)`,
}
