package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"biosync/internal/core/domain"
)

const (
	DeviceModeZK  = "zk"
	DeviceModeCSV = "csv"

	SinkJSON     = "json"
	SinkCSV      = "csv"
	SinkDocstore = "docstore"
	SinkSQL      = "sql"
)

// Config is the process configuration, read from the environment.
type Config struct {
	DeviceMode    string         `validate:"oneof=zk csv"`
	DeviceIP      string         `validate:"required_if=DeviceMode zk"`
	DevicePort    int            `validate:"min=1,max=65535"`
	DeviceID      string         `validate:"required"`
	DeviceTimeout time.Duration  `validate:"gt=0"`
	DeviceCSV     string         `validate:"required_if=DeviceMode csv"`
	Location      *time.Location `validate:"required"`

	StartDate time.Time
	Strategy  string   `validate:"oneof=clock-hour status-code day-positional"`
	Sinks     []string `validate:"dive,oneof=json csv docstore sql"`

	DataDir   string `validate:"required"`
	CSVLayout string `validate:"oneof=basic detailed"`

	MongoURI string `validate:"required_if_sink=docstore"`
	MongoDB  string
	SQLDSN   string `validate:"required_if_sink=sql"`

	Port string `validate:"required,numeric"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		DeviceMode: get("DEVICE_MODE", DeviceModeZK),
		DeviceIP:   get("DEVICE_IP", get("VITE_DEVICE_IP", "10.10.1.127")),
		DeviceID:   get("DEVICE_ID", "uFace800-Main"),
		DeviceCSV:  get("DEVICE_CSV", ""),
		Strategy:   get("STRATEGY", domain.StrategyDayPositional),
		Sinks:      SplitList(get("SINKS", SinkJSON)),
		DataDir:    get("DATA_DIR", "data"),
		CSVLayout:  get("CSV_LAYOUT", "detailed"),
		MongoURI:   get("MONGO_URI", ""),
		MongoDB:    get("MONGO_DB", "biosync"),
		SQLDSN:     get("SQL_DSN", ""),
		Port:       get("PORT", "5000"),
	}

	var err error
	if cfg.DevicePort, err = strconv.Atoi(get("DEVICE_PORT", "4370")); err != nil {
		return nil, fmt.Errorf("DEVICE_PORT: %w", err)
	}
	if cfg.DeviceTimeout, err = time.ParseDuration(get("DEVICE_TIMEOUT", "15s")); err != nil {
		return nil, fmt.Errorf("DEVICE_TIMEOUT: %w", err)
	}
	if cfg.Location, err = time.LoadLocation(get("DEVICE_TZ", "Local")); err != nil {
		return nil, fmt.Errorf("DEVICE_TZ: %w", err)
	}
	if cfg.StartDate, err = ParseDate(get("START_DATE", "2025-12-01"), cfg.Location); err != nil {
		return nil, fmt.Errorf("START_DATE: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseDate reads YYYY-MM-DD as midnight in loc. An empty string is the zero
// time, which disables the start filter.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(domain.DateLayout, s, loc)
}

// SplitList splits a comma separated list, dropping blanks and repeats.
func SplitList(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// required_if_sink=<name> requires the field when <name> is in Sinks.
	_ = v.RegisterValidation("required_if_sink", func(fl validator.FieldLevel) bool {
		var cfg *Config
		switch top := fl.Top().Interface().(type) {
		case *Config:
			cfg = top
		case Config:
			cfg = &top
		default:
			return true
		}
		if !cfg.HasSink(fl.Param()) {
			return true
		}
		return strings.TrimSpace(fl.Field().String()) != ""
	}, true)
	return v
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) HasSink(name string) bool {
	for _, s := range c.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

// DeviceAddress is host:port for the ZK client.
func (c *Config) DeviceAddress() string {
	return net.JoinHostPort(c.DeviceIP, strconv.Itoa(c.DevicePort))
}
