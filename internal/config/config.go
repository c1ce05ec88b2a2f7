// Package config loads the run configuration from an optional YAML file and
// environment variables.
//
// Environment variables always win over the file. The file is read only when
// CONFIG_PATH is set; ${VAR} references inside it are expanded first, so
// secrets can stay in the environment:
//
//	job: nightly
//	db:
//	  kind: postgres
//	  host: db
//	  port: "5432"
//	  name: rewards
//	  username: etl
//	  password: ${DB_PASSWORD}
//	metrics:
//	  backend: pushgateway
//	  pushgateway_url: http://pushgateway:9091
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

// Defaults applied by Load.
const (
	DefaultJob     = "rewardsetl"
	DefaultDBKind  = "postgres"
	DefaultMetrics = "none"
)

// Config is the full run configuration.
type Config struct {
	// Job labels logs and metrics.
	Job string `yaml:"job"`
	// BaseDir holds the data/ directory with the NDJSON files.
	BaseDir string `yaml:"base_dir"`

	Source  Source  `yaml:"source"`
	DB      DB      `yaml:"db"`
	Metrics Metrics `yaml:"metrics"`
}

// Source optionally fetches the datasets over HTTP instead of from BaseDir.
type Source struct {
	// URL is the base URL the three NDJSON files live under. Empty means
	// read from BaseDir/data.
	URL string `yaml:"url"`
	// Token, when set, is sent as a bearer token.
	Token string `yaml:"token"`
	// Retries is the number of retries for transient HTTP failures.
	Retries int `yaml:"retries"`
}

// DB selects and addresses the destination database.
type DB struct {
	Kind     string `yaml:"kind"` // postgres | sqlite | mssql | mysql
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Name     string `yaml:"name"` // database name; the file path for sqlite
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// BatchSize is the number of rows per COPY / INSERT batch. Zero means the
	// storage default.
	BatchSize int `yaml:"batch_size"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	Backend        string `yaml:"backend"` // none | pushgateway | datadog
	PushgatewayURL string `yaml:"pushgateway_url"`
	DogStatsDAddr  string `yaml:"dogstatsd_addr"`
}

// Load builds a Config from CONFIG_PATH (if set) and the environment. It only
// fails when the file cannot be read or parsed; missing settings are reported
// by Validate.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		// Expand ${VAR} references in the YAML
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config YAML %s: %w", path, err)
		}
	}

	cfg.Job = firstNonEmpty(os.Getenv("ETL_JOB"), cfg.Job, DefaultJob)
	cfg.BaseDir = firstNonEmpty(os.Getenv("ETL_BASE_DIR"), cfg.BaseDir, defaultBaseDir())

	cfg.Source.URL = firstNonEmpty(os.Getenv("ETL_SOURCE_URL"), cfg.Source.URL)
	cfg.Source.Token = firstNonEmpty(os.Getenv("ETL_SOURCE_TOKEN"), cfg.Source.Token)
	if v := os.Getenv("ETL_SOURCE_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("ETL_SOURCE_RETRIES=%q: %w", v, err)
		}
		cfg.Source.Retries = n
	}

	cfg.DB.Kind = strings.ToLower(firstNonEmpty(os.Getenv("DB_KIND"), cfg.DB.Kind, DefaultDBKind))
	cfg.DB.Host = firstNonEmpty(os.Getenv("DB_HOST"), cfg.DB.Host)
	cfg.DB.Port = firstNonEmpty(os.Getenv("DB_PORT"), cfg.DB.Port)
	cfg.DB.Name = firstNonEmpty(os.Getenv("DB_NAME"), cfg.DB.Name)
	cfg.DB.Username = firstNonEmpty(os.Getenv("DB_USERNAME"), cfg.DB.Username)
	cfg.DB.Password = firstNonEmpty(os.Getenv("DB_PASSWORD"), cfg.DB.Password)
	if v := os.Getenv("ETL_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("ETL_BATCH_SIZE=%q: %w", v, err)
		}
		cfg.DB.BatchSize = n
	}

	cfg.Metrics.Backend = strings.ToLower(firstNonEmpty(os.Getenv("METRICS_BACKEND"), cfg.Metrics.Backend, DefaultMetrics))
	cfg.Metrics.PushgatewayURL = firstNonEmpty(os.Getenv("PUSHGATEWAY_URL"), cfg.Metrics.PushgatewayURL)
	cfg.Metrics.DogStatsDAddr = firstNonEmpty(os.Getenv("DOGSTATSD_ADDR"), cfg.Metrics.DogStatsDAddr)

	return cfg, nil
}

// DSN renders the connection string for the configured backend.
func (d DB) DSN() (string, error) {
	switch d.Kind {
	case "postgres":
		u := url.URL{
			Scheme: "postgresql",
			User:   url.UserPassword(d.Username, d.Password),
			Host:   net.JoinHostPort(d.Host, d.Port),
			Path:   "/" + d.Name,
		}
		return u.String(), nil
	case "mssql":
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(d.Username, d.Password),
			Host:     net.JoinHostPort(d.Host, d.Port),
			RawQuery: url.Values{"database": {d.Name}}.Encode(),
		}
		return u.String(), nil
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = d.Username
		mc.Passwd = d.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(d.Host, d.Port)
		mc.DBName = d.Name
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	case "sqlite":
		return d.Name, nil
	default:
		return "", fmt.Errorf("unsupported db kind %q", d.Kind)
	}
}

// defaultBaseDir is the parent of the working directory: the job is usually
// started from a scripts/ directory next to data/.
func defaultBaseDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return ".."
	}
	return filepath.Dir(wd)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
