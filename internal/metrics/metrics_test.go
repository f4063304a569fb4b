package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordToolCall(t *testing.T) {
	success := toolCallsCounter.WithLabelValues("jira_read", "get_issue", OutcomeSuccess)
	failure := toolCallsCounter.WithLabelValues("jira_read", "get_issue", OutcomeError)
	beforeOK, beforeErr := testutil.ToFloat64(success), testutil.ToFloat64(failure)

	RecordToolCall("jira_read", "get_issue", nil, time.Millisecond)
	RecordToolCall("jira_read", "get_issue", errors.New("boom"), time.Millisecond)
	RecordToolCall("jira_read", "get_issue", nil, time.Millisecond)

	assert.Equal(t, beforeOK+2, testutil.ToFloat64(success))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(failure))
}

func TestRecordJiraRequest(t *testing.T) {
	ok := jiraRequestsCounter.WithLabelValues("GET", "200")
	none := jiraRequestsCounter.WithLabelValues("GET", "none")
	beforeOK, beforeNone := testutil.ToFloat64(ok), testutil.ToFloat64(none)

	RecordJiraRequest("GET", 200)
	RecordJiraRequest("GET", 0)

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(ok))
	assert.Equal(t, beforeNone+1, testutil.ToFloat64(none))
}

func TestRecordConversion(t *testing.T) {
	md := markdownConversionsCounter.WithLabelValues(ModeMarkdown)
	plain := markdownConversionsCounter.WithLabelValues(ModePlain)
	beforeMD, beforePlain := testutil.ToFloat64(md), testutil.ToFloat64(plain)

	RecordConversion(true)
	RecordConversion(false)
	RecordConversion(false)

	assert.Equal(t, beforeMD+1, testutil.ToFloat64(md))
	assert.Equal(t, beforePlain+2, testutil.ToFloat64(plain))
}

func TestRecordRegistryLookup(t *testing.T) {
	hit := registryLookupsCounter.WithLabelValues(OutcomeHit)
	before := testutil.ToFloat64(hit)
	RecordRegistryLookup(OutcomeHit)
	assert.Equal(t, before+1, testutil.ToFloat64(hit))
}
