package registry

import (
	"context"

	"github.com/pkg/errors"

	"jira-mcp/internal/config"
)

// EnvResolver serves a single tenant configured through ATLASSIAN_*
// variables. The API key is ignored.
type EnvResolver struct {
	creds Credentials
}

func NewEnvResolver(cfg config.AtlassianConfig) (*EnvResolver, error) {
	creds := Credentials{
		Tenant:   cfg.Domain,
		Email:    cfg.Email,
		APIToken: cfg.APIToken,
		Domain:   cfg.Domain,
	}
	if err := creds.Validate(); err != nil {
		return nil, errors.Wrap(err, "ATLASSIAN_EMAIL, ATLASSIAN_API_TOKEN and ATLASSIAN_DOMAIN")
	}
	return &EnvResolver{creds: creds}, nil
}

func (r *EnvResolver) Resolve(_ context.Context, _ string) (*Credentials, error) {
	creds := r.creds
	return &creds, nil
}
