// Package handler dispatches MCP JSON-RPC requests to the Jira tools.
package handler

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"jira-mcp/internal/client"
	"jira-mcp/internal/jira"
	"jira-mcp/internal/logging"
	"jira-mcp/internal/metrics"
	"jira-mcp/internal/registry"
	"jira-mcp/internal/types"
)

const (
	ToolRead  = "jira_read"
	ToolWrite = "jira_write"

	serverName = "jira-mcp"
)

// Server-defined JSON-RPC error codes.
const (
	CodeUnauthorized        = -32001
	CodeRegistryUnavailable = -32002
)

// Handler serves MCP requests for every tenant the resolver knows.
type Handler struct {
	resolver registry.Resolver
	pool     *client.Pool
	version  string
}

func New(resolver registry.Resolver, pool *client.Pool, version string) *Handler {
	return &Handler{resolver: resolver, pool: pool, version: version}
}

// HandleMessage decodes one JSON-RPC message and handles it. It returns nil
// when no response must be sent.
func (h *Handler) HandleMessage(ctx context.Context, apiKey string, data []byte) *types.Response {
	var req types.Request
	if err := json.Unmarshal(data, &req); err != nil {
		resp := types.NewError(nil, types.CodeParseError, "Parse error")
		return &resp
	}
	return h.Handle(ctx, apiKey, req)
}

// Handle routes a request. apiKey identifies the tenant and is only
// resolved for tool calls that reach Jira. It returns nil for
// notifications.
func (h *Handler) Handle(ctx context.Context, apiKey string, req types.Request) *types.Response {
	ctx, entry := logging.WithFields(ctx, log.Fields{"method": req.Method})

	if req.JSONRPC != types.JSONRPCVersion || req.Method == "" {
		if req.IsNotification() {
			return nil
		}
		resp := types.NewError(req.ID, types.CodeInvalidRequest, "Invalid Request")
		return &resp
	}

	if req.IsNotification() {
		entry.Debug("notification received")
		return nil
	}

	var resp types.Response
	switch req.Method {
	case "initialize":
		resp = types.NewResult(req.ID, map[string]any{
			"protocolVersion": types.ProtocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    serverName,
				"version": h.version,
			},
		})

	case "ping":
		resp = types.NewResult(req.ID, map[string]any{})

	case "tools/list":
		resp = types.NewResult(req.ID, map[string]any{"tools": Tools()})

	case "tools/call":
		var params types.ToolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
			resp = types.NewError(req.ID, types.CodeInvalidParams, "Invalid params")
			break
		}
		result, rpcErr := h.callTool(ctx, apiKey, params)
		if rpcErr != nil {
			resp = types.Response{JSONRPC: types.JSONRPCVersion, ID: req.ID, Error: rpcErr}
		} else {
			resp = types.NewResult(req.ID, result)
		}

	default:
		resp = types.NewError(req.ID, types.CodeMethodNotFound, "Method not found")
	}
	return &resp
}

// Tools returns the tool definitions listed by tools/list.
func Tools() []types.Tool {
	readVerbs := strings.Join(readVerbs(), ", ")
	writeVerbs := strings.Join(sortedKeys(types.JiraWriteVerbHelp), ", ")
	return []types.Tool{
		{
			Name:        ToolRead,
			Description: "Read from Jira. Verbs: " + readVerbs + ". IMPORTANT: Call with param=\"help\" first to learn verb usage.",
			InputSchema: verbSchema("Operation: "+readVerbs, "Issue key/URL, JQL, user query, or \"help\" for usage"),
		},
		{
			Name:        ToolWrite,
			Description: "Write to Jira. Verbs: " + writeVerbs + ". Text fields accept Markdown (see get_format). IMPORTANT: Call with param=\"help\" first to learn verb usage.",
			InputSchema: verbSchema("Operation: "+writeVerbs, "JSON params or \"help\" for usage"),
		},
	}
}

func verbSchema(verbDescription, paramDescription string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"verb": map[string]any{
				"type":        "string",
				"description": verbDescription,
			},
			"param": map[string]any{
				"type":        "string",
				"description": paramDescription,
			},
		},
		"required": []string{"verb", "param"},
	}
}

func readVerbs() []string {
	return append(sortedKeys(types.JiraReadVerbHelp), "search_users", "get_format")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// callTool runs a tool. Failures of the tool itself are reported in the
// result; a JSON-RPC error is returned only when the tenant cannot be
// resolved.
func (h *Handler) callTool(ctx context.Context, apiKey string, params types.ToolCallParams) (types.ToolResult, *types.Error) {
	var args types.VerbArgs
	if err := json.Unmarshal(params.Arguments, &args); err != nil {
		return types.ErrorResult("Invalid arguments: must provide verb and param"), nil
	}
	ctx, entry := logging.WithFields(ctx, log.Fields{logging.FieldTool: params.Name, logging.FieldVerb: args.Verb})

	var op operation
	switch params.Name {
	case ToolRead:
		if args.Param == "help" {
			return types.TextResult(readHelp(args.Verb)), nil
		}
		if args.Verb == "get_format" {
			return types.TextResult(types.FormatDocumentation), nil
		}
		op = readOperations[args.Verb]
		if op == nil {
			return types.ErrorResult("Unknown read verb: " + args.Verb + ". Valid: " + strings.Join(readVerbs(), ", ")), nil
		}
	case ToolWrite:
		if args.Param == "help" {
			return types.TextResult(writeHelp(args.Verb)), nil
		}
		op = writeOperations[args.Verb]
		if op == nil {
			return types.ErrorResult("Unknown write verb: " + args.Verb + ". Valid: " + strings.Join(sortedKeys(types.JiraWriteVerbHelp), ", ")), nil
		}
	default:
		return types.ErrorResult("Unknown tool: " + params.Name), nil
	}

	start := time.Now()
	creds, err := h.resolver.Resolve(ctx, apiKey)
	if err != nil {
		metrics.RecordToolCall(params.Name, args.Verb, err, time.Since(start))
		entry.WithError(err).Warn("tenant resolution failed")
		return types.ToolResult{}, resolveError(err)
	}

	ctx, entry = logging.WithFields(ctx, log.Fields{logging.FieldTenant: creds.Name()})
	c := h.pool.Get(*creds)
	text, err := op(ctx, tenant{client: c, jira: jira.NewService(c)}, args.Param)
	metrics.RecordToolCall(params.Name, args.Verb, err, time.Since(start))
	if err != nil {
		logging.WithStacktrace(entry, err).Info("tool call failed")
		return types.ErrorResult(err.Error()), nil
	}
	entry.WithField("duration", time.Since(start)).Debug("tool call succeeded")
	return types.TextResult(text), nil
}

func resolveError(err error) *types.Error {
	switch {
	case errors.Is(err, registry.ErrMissingAPIKey), errors.Is(err, registry.ErrUnknownAPIKey):
		return &types.Error{Code: CodeUnauthorized, Message: "Unauthorized: " + err.Error()}
	default:
		return &types.Error{Code: CodeRegistryUnavailable, Message: "Credential lookup failed, try again later"}
	}
}

func readHelp(verb string) string {
	switch verb {
	case "get_format":
		return types.GetFormatHelp
	case "search_users":
		return types.SearchUsersHelp
	}
	if help, ok := types.JiraReadVerbHelp[verb]; ok {
		return help
	}

	var sb strings.Builder
	sb.WriteString("Available read verbs:\n\n")
	for _, v := range readVerbs() {
		sb.WriteString("- " + v + "\n")
	}
	return sb.String()
}

func writeHelp(verb string) string {
	if help, ok := types.JiraWriteVerbHelp[verb]; ok {
		return help
	}

	var sb strings.Builder
	sb.WriteString("Available write verbs:\n\n")
	for _, v := range sortedKeys(types.JiraWriteVerbHelp) {
		sb.WriteString("- " + v + "\n")
	}
	sb.WriteString("\nText fields accept Markdown; call jira_read get_format for the syntax.\n")
	return sb.String()
}
