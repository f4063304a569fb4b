package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"jira-mcp/internal/handler"
	"jira-mcp/internal/logging"
)

const maxMessageSize = 1024 * 1024

func stdioCmd(a *app) *cobra.Command {
	var apiKey string
	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP over stdin/stdout for a single tenant",
		Long: `Reads one JSON-RPC message per line from stdin and writes responses to stdout.

With the env registry the tenant comes from ATLASSIAN_EMAIL, ATLASSIAN_API_TOKEN
and ATLASSIAN_DOMAIN. With the file or http registry, --api-key (or
JIRA_MCP_API_KEY) selects the tenant.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				apiKey = os.Getenv("JIRA_MCP_API_KEY")
			}
			h, err := a.newHandler()
			if err != nil {
				return err
			}
			return serveStdio(cmd.Context(), h, apiKey, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key of the tenant to act for")
	return cmd
}

// serveStdio handles one message per line until in is exhausted.
func serveStdio(ctx context.Context, h *handler.Handler, apiKey string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, maxMessageSize), maxMessageSize)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		reqCtx, _ := logging.WithFields(ctx, log.Fields{logging.FieldRequestID: uuid.NewString()})
		resp := h.HandleMessage(reqCtx, apiKey, line)
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return errors.Wrap(err, "writing response")
		}
	}
	return errors.Wrap(scanner.Err(), "reading stdin")
}
