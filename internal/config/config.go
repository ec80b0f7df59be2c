// Package config loads the harness configuration: built-in defaults, then an
// optional YAML file, then a .env file, then WEBQA_* environment variables.
// The resulting Config is validated once and handed to every component.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/v0xg/webqa/internal/api"
	"github.com/v0xg/webqa/internal/page"
)

const (
	// DefaultPath is read when no config file is given; its absence is not an error
	DefaultPath = "config/config.yaml"
	// DefaultEnvFile is read for secrets when present
	DefaultEnvFile = ".env"

	defaultStoreURL = "https://www.saucedemo.com"
)

// Config holds all harness configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Store   StoreConfig   `yaml:"store"`
	Browser BrowserConfig `yaml:"browser"`
	Logging LoggingConfig `yaml:"logging"`
	Reports ReportsConfig `yaml:"reports"`
}

// APIConfig targets the Airport Gap service
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	ProbePath    string        `yaml:"probe_path"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	Timeout      time.Duration `yaml:"timeout"`
}

// StoreConfig targets the web store
type StoreConfig struct {
	URL      string                   `yaml:"url"`
	Username string                   `yaml:"username"`
	Password string                   `yaml:"password"`
	Locators map[string]LocatorConfig `yaml:"locators"`
}

// LocatorConfig is a locator override as written in YAML, e.g. {by: css, value: "#user"}
type LocatorConfig struct {
	By    string `yaml:"by"`
	Value string `yaml:"value"`
}

// BrowserConfig controls the Chromium session
type BrowserConfig struct {
	Headless      bool          `yaml:"headless"`
	Width         int           `yaml:"width"`
	Height        int           `yaml:"height"`
	Bin           string        `yaml:"bin"`
	ProfileDir    string        `yaml:"profile_dir"`
	Wait          time.Duration `yaml:"wait"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	ActionTimeout time.Duration `yaml:"action_timeout"`
}

// LoggingConfig controls the console and file logs
type LoggingConfig struct {
	File  string `yaml:"file"` // empty: logs/test_execution_<timestamp>.log
	Level string `yaml:"level"`
}

// ReportsConfig controls the pass/fail log and failure screenshots
type ReportsConfig struct {
	Dir             string `yaml:"dir"`
	Screenshots     bool   `yaml:"screenshots"`
	ScreenshotWidth int    `yaml:"screenshot_width"`
}

// envOverrides lists the variables that may replace file values. Unset
// variables leave the field nil.
type envOverrides struct {
	APIBaseURL      *string        `envconfig:"WEBQA_API_BASE_URL"`
	APIProbePath    *string        `envconfig:"WEBQA_API_PROBE_PATH"`
	APIProbeTimeout *time.Duration `envconfig:"WEBQA_API_PROBE_TIMEOUT"`
	StoreURL        *string        `envconfig:"WEBQA_STORE_URL"`
	StoreUsername   *string        `envconfig:"WEBQA_STORE_USERNAME"`
	StorePassword   *string        `envconfig:"WEBQA_STORE_PASSWORD"`
	BrowserHeadless *bool          `envconfig:"WEBQA_BROWSER_HEADLESS"`
	BrowserBin      *string        `envconfig:"WEBQA_BROWSER_BIN"`
	LogFile         *string        `envconfig:"WEBQA_LOG_FILE"`
	LogLevel        *string        `envconfig:"WEBQA_LOG_LEVEL"`
	ReportsDir      *string        `envconfig:"WEBQA_REPORTS_DIR"`
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:      api.DefaultAirportGapURL,
			ProbePath:    "/airports",
			ProbeTimeout: 5 * time.Second,
			Timeout:      api.DefaultTimeout,
		},
		Store: StoreConfig{
			URL:      defaultStoreURL,
			Username: "standard_user",
			Password: "secret_sauce",
		},
		Browser: BrowserConfig{
			Headless:      true,
			Width:         1280,
			Height:        720,
			Wait:          page.DefaultWait,
			PollInterval:  page.DefaultPollInterval,
			ActionTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "debug"},
		Reports: ReportsConfig{
			Dir:             "reports",
			Screenshots:     true,
			ScreenshotWidth: 1024,
		},
	}
}

// Load reads path (DefaultPath when empty), applies DefaultEnvFile and the
// process environment, and validates the result.
func Load(path string) (*Config, error) {
	return load(path, DefaultEnvFile, os.LookupEnv)
}

func load(path, envFile string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	dotenv, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	// the process environment wins over .env
	merged := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	var env envOverrides
	if err := envconfig.Process("", &env, merged); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.apply(env)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return env, nil
}

func (c *Config) apply(env envOverrides) {
	setString(&c.API.BaseURL, env.APIBaseURL)
	setString(&c.API.ProbePath, env.APIProbePath)
	if env.APIProbeTimeout != nil {
		c.API.ProbeTimeout = *env.APIProbeTimeout
	}
	setString(&c.Store.URL, env.StoreURL)
	setString(&c.Store.Username, env.StoreUsername)
	setString(&c.Store.Password, env.StorePassword)
	if env.BrowserHeadless != nil {
		c.Browser.Headless = *env.BrowserHeadless
	}
	setString(&c.Browser.Bin, env.BrowserBin)
	setString(&c.Logging.File, env.LogFile)
	setString(&c.Logging.Level, env.LogLevel)
	setString(&c.Reports.Dir, env.ReportsDir)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks every field and reports all problems at once
func (c *Config) Validate() error {
	var errs []string

	if err := checkURL(c.API.BaseURL); err != "" {
		errs = append(errs, "api.base_url "+err)
	}
	if !strings.HasPrefix(c.API.ProbePath, "/") {
		errs = append(errs, fmt.Sprintf("api.probe_path %q must start with /", c.API.ProbePath))
	}
	if c.API.ProbeTimeout <= 0 {
		errs = append(errs, "api.probe_timeout must be positive")
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, "api.timeout must be positive")
	}

	if err := checkURL(c.Store.URL); err != "" {
		errs = append(errs, "store.url "+err)
	}
	if _, err := c.StoreLocators(); err != nil {
		errs = append(errs, err.Error())
	}

	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		errs = append(errs, fmt.Sprintf("browser size %dx%d must be positive", c.Browser.Width, c.Browser.Height))
	}
	if c.Browser.Wait <= 0 {
		errs = append(errs, "browser.wait must be positive")
	}
	if c.Browser.PollInterval <= 0 {
		errs = append(errs, "browser.poll_interval must be positive")
	}
	if c.Browser.ActionTimeout <= 0 {
		errs = append(errs, "browser.action_timeout must be positive")
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Sprintf("logging.level %q is not a valid level", c.Logging.Level))
	}
	if c.Reports.Dir == "" {
		errs = append(errs, "reports.dir is required")
	}
	if c.Reports.ScreenshotWidth < 0 {
		errs = append(errs, "reports.screenshot_width must not be negative")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// StoreLocators converts the YAML locator overrides into a page.LocatorSet.
// Names are processed in sorted order so errors are stable.
func (c *Config) StoreLocators() (page.LocatorSet, error) {
	names := make([]string, 0, len(c.Store.Locators))
	for name := range c.Store.Locators {
		names = append(names, name)
	}
	sort.Strings(names)

	set := make(page.LocatorSet, len(names))
	for _, name := range names {
		lc := c.Store.Locators[name]
		by, err := page.ParseStrategy(lc.By)
		if err != nil {
			return nil, fmt.Errorf("store.locators.%s: %w", name, err)
		}
		if lc.Value == "" {
			return nil, fmt.Errorf("store.locators.%s: empty value", name)
		}
		set[name] = page.Locator{By: by, Value: lc.Value}
	}
	return set, nil
}

func checkURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("%q is not a URL: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("%q must be an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Sprintf("%q has no host", raw)
	}
	return ""
}
