// Package config loads the sheets-gateway startup configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mauzo/sheets-gateway/sheets"
)

const (
	DEFAULT_PORT        = 3000
	DEFAULT_RANGE       = "Mauzo!A1:J"
	DEFAULT_CREDENTIALS = "service-account.json"
	DEFAULT_WINDOW      = 15 * time.Minute
	DEFAULT_MAX         = 100
	DEFAULT_BODY_LIMIT  = 100 * 1024
)

var (
	ErrMissingSpreadsheet = errors.New("missing spreadsheet ID - set SHEET_ID")
	ErrInvalidSpreadsheet = errors.New("invalid spreadsheet ID")
)

type Config struct {
	Port           int
	Spreadsheet    string
	Range          string
	Credentials    string
	TrustProxy     bool
	CORSOrigins    []string
	RateLimit      RateLimit
	BodyLimit      int64
	MaxConnections int
	Metrics        bool
	Tracing        string
	Debug          bool
}

// RateLimit admits at most Max requests per client in each Window.
type RateLimit struct {
	Window time.Duration
	Max    int
}

// Default returns a configuration with every optional field set to its default value.
func Default() Config {
	return Config{
		Port:        DEFAULT_PORT,
		Range:       DEFAULT_RANGE,
		Credentials: DEFAULT_CREDENTIALS,
		CORSOrigins: []string{"*"},
		RateLimit: RateLimit{
			Window: DEFAULT_WINDOW,
			Max:    DEFAULT_MAX,
		},
		BodyLimit: DEFAULT_BODY_LIMIT,
		Metrics:   true,
	}
}

// LoadDotEnv loads environment variables from a .env file without overriding variables that are
// already set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error loading %v (%w)", file, err)
		}
	}

	return nil
}

// Load builds a validated configuration from the environment lookup function (typically os.Getenv).
func Load(getenv func(string) string) (*Config, error) {
	c := Default()

	var errs []error

	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err != nil {
			errs = append(errs, fmt.Errorf("invalid PORT '%v' (%w)", v, err))
		} else {
			c.Port = port
		}
	}

	c.Spreadsheet = strings.TrimSpace(getenv("SHEET_ID"))

	if v := strings.TrimSpace(getenv("SHEET_RANGE")); v != "" {
		c.Range = v
	}

	if v := strings.TrimSpace(getenv("GOOGLE_CREDENTIALS")); v != "" {
		c.Credentials = v
	}

	if v := strings.TrimSpace(getenv("CORS_ORIGINS")); v != "" {
		c.CORSOrigins = split(v)
	}

	if v := strings.TrimSpace(getenv("RATE_LIMIT_WINDOW")); v != "" {
		if window, err := time.ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_WINDOW '%v' (%w)", v, err))
		} else {
			c.RateLimit.Window = window
		}
	}

	if v := strings.TrimSpace(getenv("RATE_LIMIT_MAX")); v != "" {
		if n, err := strconv.Atoi(v); err != nil {
			errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_MAX '%v' (%w)", v, err))
		} else {
			c.RateLimit.Max = n
		}
	}

	if v := strings.TrimSpace(getenv("BODY_LIMIT")); v != "" {
		if limit, err := strconv.ParseInt(v, 10, 64); err != nil {
			errs = append(errs, fmt.Errorf("invalid BODY_LIMIT '%v' (%w)", v, err))
		} else {
			c.BodyLimit = limit
		}
	}

	if v := strings.TrimSpace(getenv("MAX_CONNECTIONS")); v != "" {
		if n, err := strconv.Atoi(v); err != nil {
			errs = append(errs, fmt.Errorf("invalid MAX_CONNECTIONS '%v' (%w)", v, err))
		} else {
			c.MaxConnections = n
		}
	}

	c.TrustProxy = flag(getenv, "TRUST_PROXY", c.TrustProxy, &errs)
	c.Metrics = flag(getenv, "METRICS", c.Metrics, &errs)
	c.Debug = flag(getenv, "DEBUG", c.Debug, &errs)
	c.Tracing = strings.ToLower(strings.TrimSpace(getenv("TRACING")))

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate checks the configuration and normalises the spreadsheet URL to a spreadsheet ID.
func (c *Config) Validate() error {
	id, err := SpreadsheetID(c.Spreadsheet)
	if err != nil {
		return err
	}

	c.Spreadsheet = id

	if _, err := sheets.ParseRange(c.Range); err != nil {
		return err
	}

	if strings.TrimSpace(c.Credentials) == "" {
		return fmt.Errorf("missing service account credentials file")
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %v", c.Port)
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("invalid rate limit window %v", c.RateLimit.Window)
	}

	if c.RateLimit.Max < 1 {
		return fmt.Errorf("invalid rate limit %v - expected at least 1 request per window", c.RateLimit.Max)
	}

	if c.BodyLimit < 1 {
		return fmt.Errorf("invalid body limit %v", c.BodyLimit)
	}

	if c.MaxConnections < 0 {
		return fmt.Errorf("invalid max connections %v", c.MaxConnections)
	}

	switch c.Tracing {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("unsupported tracing exporter '%v' - expected 'stdout' or 'none'", c.Tracing)
	}

	return nil
}

var (
	urlRegex = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)
	idRegex  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// SpreadsheetID accepts either a spreadsheet ID or a Google Sheets URL and returns the spreadsheet ID.
func SpreadsheetID(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ErrMissingSpreadsheet
	}

	if match := urlRegex.FindStringSubmatch(v); len(match) > 1 {
		v = match[1]
	}

	if !idRegex.MatchString(v) {
		return "", fmt.Errorf("%w '%v' - expected something like '1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'", ErrInvalidSpreadsheet, v)
	}

	return v, nil
}

func flag(getenv func(string) string, key string, defval bool, errs *[]error) bool {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return defval
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %v '%v' (%w)", key, v, err))
		return defval
	}

	return b
}

func split(v string) []string {
	list := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			list = append(list, s)
		}
	}

	return list
}
