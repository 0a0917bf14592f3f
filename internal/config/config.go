// Package config loads the run configuration from the environment, the way the GitHub Actions
// runner exposes action inputs (INPUT_<NAME>), with an optional .env file for local runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

var (
	// ErrMissingToken is returned when no access token was configured.
	ErrMissingToken = errors.New("token is required")
	// ErrMissingOrganisation is returned when the organisation is neither configured nor derivable.
	ErrMissingOrganisation = errors.New("organisation is required")
)

// Config is everything a report run needs.
type Config struct {
	Token             string        `envconfig:"TOKEN"`
	Organisation      string        `envconfig:"ORGANISATION"`
	ExcludeUsers      []string      `envconfig:"EXCLUDEUSERS"`
	TargetPath        string        `envconfig:"TARGETPATH" default:"CONTRIBUTORS.md" validate:"required"`
	JSONPath          string        `envconfig:"JSONPATH"`
	CommitTargetFiles bool          `envconfig:"COMMITTARGETFILES" default:"false"`
	IncludeForks      bool          `envconfig:"INCLUDEFORKS" default:"true"`
	MaxRetries        int           `envconfig:"MAXRETRIES" default:"10" validate:"gte=0"`
	RetryDelay        time.Duration `envconfig:"RETRYDELAY" default:"1s" validate:"gte=0"`
	TopContributors   int           `envconfig:"TOPCONTRIBUTORS" default:"15" validate:"gt=0"`
	ProfileSource     string        `envconfig:"PROFILESOURCE" default:"rest" validate:"oneof=rest graphql"`
	RequestsPerMinute int           `envconfig:"REQUESTSPERMINUTE" default:"0" validate:"gte=0"`
	HTTPTimeout       time.Duration `envconfig:"HTTPTIMEOUT" default:"30s" validate:"gt=0"`

	// Filled from the runner environment (GITHUB_*).
	APIURL    string `ignored:"true" validate:"omitempty,url"`
	ServerURL string `ignored:"true" validate:"required,url"`
}

// runnerEnv holds the variables every GitHub Actions job carries.
type runnerEnv struct {
	Token      string `envconfig:"TOKEN"`
	Repository string `envconfig:"REPOSITORY"`
	APIURL     string `envconfig:"API_URL"`
	ServerURL  string `envconfig:"SERVER_URL" default:"https://github.com"`
}

// Loader reads a Config from environment variables carrying Prefix.
type Loader struct {
	Prefix   string
	Validate *validator.Validate
	logger   logrus.FieldLogger
}

func NewLoader(prefix string, logger logrus.FieldLogger) *Loader {
	return &Loader{Prefix: prefix, Validate: validator.New(), logger: logger}
}

// Load reads the configuration. It does not validate it, so that command-line flags can still
// be applied on top; call Check afterwards.
func (l *Loader) Load() (Config, error) {
	var cfg Config

	if err := loadDotEnv(); err != nil {
		l.logger.Debugf("dotenv: %v", err)
	}
	if err := envconfig.Process(l.Prefix, &cfg); err != nil {
		return cfg, fmt.Errorf("env load: %w", err)
	}

	var runner runnerEnv
	if err := envconfig.Process("GITHUB", &runner); err != nil {
		return cfg, fmt.Errorf("env load: %w", err)
	}
	if cfg.Token == "" {
		cfg.Token = runner.Token
	}
	if cfg.Organisation == "" {
		cfg.Organisation = OwnerFromRepository(runner.Repository)
	}
	cfg.APIURL = runner.APIURL
	cfg.ServerURL = runner.ServerURL

	return cfg, nil
}

// Check normalises cfg and validates it. Missing credentials are reported before anything else.
func (l *Loader) Check(cfg *Config) error {
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.Organisation = strings.TrimSpace(cfg.Organisation)
	cfg.ExcludeUsers = normaliseLogins(cfg.ExcludeUsers)

	if cfg.Token == "" {
		return ErrMissingToken
	}
	if cfg.Organisation == "" {
		return ErrMissingOrganisation
	}
	if err := l.Validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	l.logger.Debugf("config loaded org=%s targetPath=%s excluded=%d maxRetries=%d retryDelay=%s",
		cfg.Organisation, cfg.TargetPath, len(cfg.ExcludeUsers), cfg.MaxRetries, cfg.RetryDelay)
	return nil
}

// OwnerFromRepository returns the owner part of an "owner/name" repository slug.
func OwnerFromRepository(repository string) string {
	owner, _, _ := strings.Cut(strings.TrimSpace(repository), "/")
	return owner
}

func normaliseLogins(logins []string) []string {
	out := make([]string, 0, len(logins))
	for _, login := range logins {
		if login = strings.TrimSpace(login); login != "" {
			out = append(out, login)
		}
	}
	return out
}

func loadDotEnv() error {
	const file = ".env"
	if !fileExists(file) {
		return fmt.Errorf("no .env file found")
	}
	// Variables already present in the environment win over the file.
	if err := godotenv.Load(file); err != nil {
		return fmt.Errorf("failed loading %s: %w", file, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
