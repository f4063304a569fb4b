package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricPrefix = "jira_mcp_"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeUnknown = "unknown_key"
)

// Conversion mode label values.
const (
	ModeMarkdown = "markdown"
	ModePlain    = "plain"
)

var toolCallsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricPrefix + "tool_calls_total",
		Help: "Number of MCP tool calls by tool, verb and outcome",
	},
	[]string{"tool", "verb", "outcome"},
)

var toolCallDurationHist = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    MetricPrefix + "tool_call_duration_seconds",
		Help:    "Duration of MCP tool calls in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	},
	[]string{"tool"},
)

var registryLookupsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricPrefix + "registry_lookups_total",
		Help: "Number of tenant credential lookups by outcome",
	},
	[]string{"outcome"},
)

var jiraRequestsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricPrefix + "jira_requests_total",
		Help: "Number of Jira REST requests by method and HTTP status",
	},
	[]string{"method", "status"},
)

var markdownConversionsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricPrefix + "markdown_conversions_total",
		Help: "Number of text fields sent to Jira, by whether they were converted from Markdown",
	},
	[]string{"mode"},
)

func RecordToolCall(tool, verb string, err error, duration time.Duration) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	toolCallsCounter.WithLabelValues(tool, verb, outcome).Inc()
	toolCallDurationHist.WithLabelValues(tool).Observe(duration.Seconds())
}

func RecordRegistryLookup(outcome string) {
	registryLookupsCounter.WithLabelValues(outcome).Inc()
}

// RecordJiraRequest counts a request; status 0 means no response was received.
func RecordJiraRequest(method string, status int) {
	label := "none"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	jiraRequestsCounter.WithLabelValues(method, label).Inc()
}

func RecordConversion(markdown bool) {
	mode := ModePlain
	if markdown {
		mode = ModeMarkdown
	}
	markdownConversionsCounter.WithLabelValues(mode).Inc()
}
