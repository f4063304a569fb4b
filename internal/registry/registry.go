// Package registry resolves the Jira credentials of a tenant from the opaque
// API key presented by an MCP client.
package registry

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"

	"jira-mcp/internal/config"
)

var (
	ErrMissingAPIKey       = errors.New("missing API key")
	ErrUnknownAPIKey       = errors.New("unknown API key")
	ErrRegistryUnavailable = errors.New("credential registry unavailable")
)

// Resolver looks up the credentials bound to an API key.
type Resolver interface {
	Resolve(ctx context.Context, apiKey string) (*Credentials, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, apiKey string) (*Credentials, error)

func (f ResolverFunc) Resolve(ctx context.Context, apiKey string) (*Credentials, error) {
	return f(ctx, apiKey)
}

// Credentials is the bundle needed to call Jira Cloud on behalf of a tenant.
type Credentials struct {
	Tenant   string `json:"tenant" yaml:"tenant"`
	Email    string `json:"email" yaml:"email"`
	APIToken string `json:"apiToken" yaml:"apiToken"`
	Domain   string `json:"domain" yaml:"domain"`
}

func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required),
		validation.Field(&c.APIToken, validation.Required),
		validation.Field(&c.Domain, validation.Required, validation.By(func(value interface{}) error {
			domain, _ := value.(string)
			return config.ValidateDomain(domain)
		})),
	)
}

// BaseURL returns the root URL of the tenant's Jira site.
func (c Credentials) BaseURL() string {
	return "https://" + c.Domain
}

// Name returns the tenant label used in logs and cache keys, falling back
// to the domain.
func (c Credentials) Name() string {
	if c.Tenant != "" {
		return c.Tenant
	}
	return c.Domain
}

// String never includes the API token.
func (c Credentials) String() string {
	return fmt.Sprintf("%s <%s@%s>", c.Name(), c.Email, c.Domain)
}

// New builds the resolver selected by cfg. Lookups other than env mode are
// cached for cfg.CacheTTL when it is positive.
func New(cfg config.RegistryConfig, atlassian config.AtlassianConfig) (Resolver, error) {
	var resolver Resolver
	switch cfg.Mode {
	case config.RegistryEnv, "":
		return NewEnvResolver(atlassian)
	case config.RegistryFile:
		r, err := NewFileResolver(cfg.File)
		if err != nil {
			return nil, err
		}
		resolver = r
	case config.RegistryHTTP:
		resolver = NewHTTPResolver(cfg.URL, cfg.Token, cfg.Timeout)
	default:
		return nil, errors.Errorf("unknown registry mode %q", cfg.Mode)
	}

	if cfg.CacheTTL > 0 {
		resolver = NewCachingResolver(resolver, cfg.CacheTTL)
	}
	return resolver, nil
}
