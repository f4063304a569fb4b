package registry

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileResolver serves tenants from a YAML file of the form
//
//	keys:
//	  "<api key>":
//	    tenant: acme
//	    email: bot@acme.com
//	    apiToken: "..."
//	    domain: acme.atlassian.net
type FileResolver struct {
	keys map[string]Credentials
}

type registryFile struct {
	Keys map[string]Credentials `yaml:"keys"`
}

// NewFileResolver reads and validates every entry of path.
func NewFileResolver(path string) (*FileResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading registry file %s", path)
	}
	return ParseFileResolver(data)
}

// ParseFileResolver builds a FileResolver from YAML content.
func ParseFileResolver(data []byte) (*FileResolver, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parsing registry file")
	}
	for key, creds := range file.Keys {
		if key == "" {
			return nil, errors.New("registry file contains an empty API key")
		}
		if err := creds.Validate(); err != nil {
			return nil, errors.Wrapf(err, "tenant %q", creds.Name())
		}
	}
	return &FileResolver{keys: file.Keys}, nil
}

func (r *FileResolver) Resolve(_ context.Context, apiKey string) (*Credentials, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	creds, ok := r.keys[apiKey]
	if !ok {
		return nil, ErrUnknownAPIKey
	}
	return &creds, nil
}
