// Package config handles loading and validating the client configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/intellisearch-client/internal/find"
	domain "github.com/donaldgifford/intellisearch-client/pkg/types"
)

// Config is the top-level client configuration.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Auth     AuthConfig     `yaml:"auth"`
	Triggers TriggersConfig `yaml:"triggers"`
	Query    QueryConfig    `yaml:"query"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServiceConfig defines the search service endpoint.
type ServiceConfig struct {
	BaseURL string        `yaml:"base_url" validate:"required,http_url"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"  validate:"gte=0"`
}

// AuthConfig defines how requests are authenticated. Token is used as is;
// TokenURL enables a refreshing JWT handler instead.
type AuthConfig struct {
	Token         string        `yaml:"token"`
	TokenURL      string        `yaml:"token_url"      validate:"omitempty,http_url"`
	TokenPath     string        `yaml:"token_path"`
	RefreshBuffer time.Duration `yaml:"refresh_buffer" validate:"gte=0"`
}

// TriggersConfig overrides the find triggers. The instant regex is kept as
// a string here and compiled during validation; an empty string disables
// instant triggering.
type TriggersConfig struct {
	find.TriggerOverrides `yaml:",inline"`

	QueryChangeInstantRegex *string `yaml:"query_change_instant_regex"`

	instant *regexp.Regexp
}

// QueryConfig defines the initial query.
type QueryConfig struct {
	ClientID       string            `yaml:"client_id"`
	SearchType     domain.SearchType `yaml:"search_type"      validate:"omitempty,oneof=Keywords Relevance"`
	OrderBy        domain.OrderBy    `yaml:"order_by"         validate:"omitempty,oneof=Relevance Date"`
	PageSize       int               `yaml:"page_size"        validate:"gte=1"`
	MaxSuggestions int               `yaml:"max_suggestions"  validate:"gte=0"`
	UILanguageCode string            `yaml:"ui_language_code"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"  validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("yaml")
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		if tag == "" || tag == "-" {
			return fld.Name
		}
		return tag
	})
	return v
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a config with every default applied and no base URL.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	applyServiceDefaults(&cfg.Service)
	applyAuthDefaults(&cfg.Auth)
	applyQueryDefaults(&cfg.Query)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServiceDefaults(s *ServiceConfig) {
	if s.Path == "" {
		s.Path = find.DefaultPath
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
}

func applyAuthDefaults(a *AuthConfig) {
	if a.TokenPath == "" {
		a.TokenPath = "jwtToken"
	}
	if a.RefreshBuffer == 0 {
		a.RefreshBuffer = 60 * time.Second
	}
}

func applyQueryDefaults(q *QueryConfig) {
	if q.SearchType == "" {
		q.SearchType = domain.SearchKeywords
	}
	if q.OrderBy == "" {
		q.OrderBy = domain.OrderByRelevance
	}
	if q.PageSize == 0 {
		q.PageSize = 10
	}
	if q.MaxSuggestions == 0 {
		q.MaxSuggestions = 10
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

// Validate checks the config and compiles the instant trigger regex. All
// problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if err := structValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, fieldError(fe))
		}
	}

	if c.Auth.Token != "" && c.Auth.TokenURL != "" {
		errs = append(errs, fmt.Errorf("auth.token and auth.token_url are mutually exclusive"))
	}

	if d := c.Triggers.QueryChangeDelay; d != nil && *d < -1 {
		errs = append(errs, fmt.Errorf("triggers.query_change_delay must be -1 or greater (got %d)", *d))
	}

	c.Triggers.instant = nil
	if p := c.Triggers.QueryChangeInstantRegex; p != nil && *p != "" {
		re, err := regexp.Compile(*p)
		if err != nil {
			errs = append(errs, fmt.Errorf("triggers.query_change_instant_regex: %w", err))
		} else {
			c.Triggers.instant = re
		}
	}

	return errors.Join(errs...)
}

func fieldError(fe validator.FieldError) error {
	name := fe.Namespace()
	if _, rest, ok := strings.Cut(name, "."); ok {
		name = rest
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", name)
	case "http_url":
		return fmt.Errorf("%s must be an http or https URL (got %q)", name, fe.Value())
	case "oneof":
		return fmt.Errorf(
			"%s must be one of: %s (got %q)",
			name,
			strings.ReplaceAll(fe.Param(), " ", ", "),
			fmt.Sprint(fe.Value()),
		)
	case "gte":
		return fmt.Errorf("%s must be at least %s (got %v)", name, fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s failed %s validation", name, fe.Tag())
	}
}

// FindTriggers merges the trigger overrides onto the find defaults. Call it
// after Validate.
func (c *Config) FindTriggers() find.FindTriggers {
	t := find.NewFindTriggers(c.Triggers.TriggerOverrides)
	if p := c.Triggers.QueryChangeInstantRegex; p != nil {
		t.QueryChangeInstantRegex = c.Triggers.instant
		if *p == "" {
			t.QueryChangeInstantRegex = nil
		}
	}
	return t
}

// InitialQuery builds the starting query from the query section.
func (c *Config) InitialQuery() *domain.Query {
	q := domain.NewQuery()
	q.ClientID = c.Query.ClientID
	q.SearchType = c.Query.SearchType
	q.MatchOrderBy = c.Query.OrderBy
	q.MatchPageSize = c.Query.PageSize
	q.MaxSuggestions = c.Query.MaxSuggestions
	q.UILanguageCode = c.Query.UILanguageCode
	return q
}
