package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable viper reads,
// e.g. JIRA_MCP_SERVER_ADDRESS for server.address.
const EnvPrefix = "JIRA_MCP"

// Registry modes.
const (
	RegistryEnv  = "env"
	RegistryFile = "file"
	RegistryHTTP = "http"
)

// Pre-compiled regexes for input validation
var (
	issueKeyPattern   = regexp.MustCompile(`^[A-Z][A-Z0-9]+-\d+$`)
	issueURLPattern   = regexp.MustCompile(`^https://[a-zA-Z0-9-]+\.atlassian\.net/browse/([A-Z][A-Z0-9]+-\d+)$`)
	projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]+$`)
	httpURLPattern    = regexp.MustCompile(`^https?://[^\s/]+`)
)

const maxIssueKeyLength = 50

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Jira      JiraConfig      `mapstructure:"jira"`
	Atlassian AtlassianConfig `mapstructure:"atlassian"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	CorsOrigins  []string      `mapstructure:"corsOrigins"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RegistryConfig selects where per-tenant credentials come from.
type RegistryConfig struct {
	Mode     string        `mapstructure:"mode"`
	URL      string        `mapstructure:"url"`
	Token    string        `mapstructure:"token"`
	File     string        `mapstructure:"file"`
	CacheTTL time.Duration `mapstructure:"cacheTTL"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// JiraConfig tunes the per-tenant REST client.
type JiraConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"maxRetries"`
	RequestsPerSecond float64       `mapstructure:"requestsPerSecond"`
	Burst             int           `mapstructure:"burst"`
	ClientCacheSize   int           `mapstructure:"clientCacheSize"`
}

// AtlassianConfig holds the single-tenant credentials used by the env registry.
type AtlassianConfig struct {
	Email    string `mapstructure:"email"`
	APIToken string `mapstructure:"apiToken"`
	Domain   string `mapstructure:"domain"`
}

// SetDefaults registers every key with viper so that environment overrides
// are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.corsOrigins", []string{})
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("registry.mode", RegistryEnv)
	v.SetDefault("registry.url", "")
	v.SetDefault("registry.token", "")
	v.SetDefault("registry.file", "")
	v.SetDefault("registry.cacheTTL", 5*time.Minute)
	v.SetDefault("registry.timeout", 10*time.Second)

	v.SetDefault("jira.timeout", 30*time.Second)
	v.SetDefault("jira.maxRetries", 3)
	v.SetDefault("jira.requestsPerSecond", 10.0)
	v.SetDefault("jira.burst", 20)
	v.SetDefault("jira.clientCacheSize", 256)

	v.SetDefault("atlassian.email", "")
	v.SetDefault("atlassian.apiToken", "")
	v.SetDefault("atlassian.domain", "")
}

// Load reads configFile (or config.yaml from the standard search paths when
// empty), applies environment overrides and validates the result. A missing
// config file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"atlassian.email":    "ATLASSIAN_EMAIL",
		"atlassian.apiToken": "ATLASSIAN_API_TOKEN",
		"atlassian.domain":   "ATLASSIAN_DOMAIN",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "binding %s", env)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.jira-mcp")
		v.AddConfigPath("/etc/jira-mcp")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server),
		validation.Field(&c.Logging),
		validation.Field(&c.Registry),
		validation.Field(&c.Jira),
	)
}

func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Address, validation.Required),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.WriteTimeout, validation.Min(time.Duration(0))),
	)
}

func (c LoggingConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required,
			validation.In("trace", "debug", "info", "warn", "warning", "error", "fatal", "panic")),
		validation.Field(&c.Format, validation.Required, validation.In("text", "json")),
	)
}

func (c RegistryConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Mode, validation.Required, validation.In(RegistryEnv, RegistryFile, RegistryHTTP)),
		validation.Field(&c.URL,
			validation.When(c.Mode == RegistryHTTP, validation.Required),
			validation.Match(httpURLPattern)),
		validation.Field(&c.File, validation.When(c.Mode == RegistryFile, validation.Required)),
		validation.Field(&c.CacheTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.Timeout, validation.Required),
	)
}

func (c JiraConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Timeout, validation.Required),
		validation.Field(&c.MaxRetries, validation.Min(0)),
		validation.Field(&c.RequestsPerSecond, validation.Min(0.0)),
		validation.Field(&c.Burst, validation.Required, validation.Min(1)),
		validation.Field(&c.ClientCacheSize, validation.Required, validation.Min(1)),
	)
}

// DefaultEnvFile returns the path of the .env file next to the running binary.
func DefaultEnvFile() string {
	exe, err := os.Executable()
	if err != nil {
		return ".env"
	}
	return filepath.Join(filepath.Dir(exe), ".env")
}

// LoadEnvFile loads variables from path into the environment without
// overriding variables that are already set. A missing file is ignored; a
// file readable by group or others is refused.
func LoadEnvFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "stat %s", path)
	}

	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		return errors.Errorf(".env file has insecure permissions (%04o). Run: chmod 600 %s", mode, path)
	}

	return errors.Wrapf(godotenv.Load(path), "loading %s", path)
}

// ValidateDomain accepts a bare atlassian.net host name.
func ValidateDomain(domain string) error {
	if !strings.HasSuffix(domain, ".atlassian.net") {
		return errors.New("domain must be an atlassian.net domain")
	}
	if strings.Contains(domain, "/") || strings.Contains(domain, ":") {
		return errors.New("domain must be a domain only (no protocol or path)")
	}
	return nil
}

// ExtractIssueKey extracts issue key from URL or returns input if already a key.
// Supports: https://domain.atlassian.net/browse/PROJ-123 or just PROJ-123
func ExtractIssueKey(input string) (string, error) {
	input = strings.TrimSpace(input)

	key := ""
	if issueKeyPattern.MatchString(input) {
		key = input
	} else if matches := issueURLPattern.FindStringSubmatch(input); len(matches) == 2 {
		key = matches[1]
	} else {
		return "", errors.New("invalid input: must be PROJ-123 format or full Jira URL")
	}

	if len(key) > maxIssueKeyLength {
		return "", errors.Errorf("issue key too long (max %d characters)", maxIssueKeyLength)
	}
	return key, nil
}

// ValidateProjectKey checks a Jira project key such as PROJ.
func ValidateProjectKey(key string) error {
	if !projectKeyPattern.MatchString(key) {
		return errors.Errorf("invalid project key %q: must be uppercase letters and digits, e.g. PROJ", key)
	}
	return nil
}
