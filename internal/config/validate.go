package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrConfig matches every configuration failure returned by Check.
var ErrConfig = errors.New("config error")

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "db.host"). Message is
// human-readable and names the environment variable that sets the field.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

var knownDBKinds = map[string]struct{}{
	"postgres": {},
	"sqlite":   {},
	"mssql":    {},
	"mysql":    {},
}

// Validate performs static validation of cfg. It does not mutate cfg or
// touch the filesystem or network.
func Validate(cfg Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(cfg.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics (ETL_JOB)",
		})
	}
	if strings.TrimSpace(cfg.BaseDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "base_dir",
			Message:  "base directory must not be empty (ETL_BASE_DIR)",
		})
	}

	issues = append(issues, validateSource(cfg.Source)...)
	issues = append(issues, validateDB(cfg.DB)...)
	issues = append(issues, validateMetrics(cfg.Metrics)...)
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue
	if s.URL != "" {
		u, err := url.Parse(s.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.url",
				Message:  fmt.Sprintf("source URL %q must be an absolute http(s) URL (ETL_SOURCE_URL)", s.URL),
			})
		}
	} else if s.Token != "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.token",
			Message:  "source token is ignored without a source URL (ETL_SOURCE_TOKEN)",
		})
	}
	if s.Retries < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.retries",
			Message:  fmt.Sprintf("retries must be >= 0, got %d (ETL_SOURCE_RETRIES)", s.Retries),
		})
	}
	return issues
}

func validateDB(d DB) []Issue {
	var issues []Issue

	if _, ok := knownDBKinds[d.Kind]; !ok {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "db.kind",
			Message:  fmt.Sprintf("unknown db kind %q; want postgres, sqlite, mssql, or mysql (DB_KIND)", d.Kind),
		})
	}

	required := []struct {
		path, env, value string
	}{
		{"db.name", "DB_NAME", d.Name},
	}
	if d.Kind != "sqlite" {
		required = append(required,
			struct{ path, env, value string }{"db.host", "DB_HOST", d.Host},
			struct{ path, env, value string }{"db.port", "DB_PORT", d.Port},
			struct{ path, env, value string }{"db.username", "DB_USERNAME", d.Username},
			struct{ path, env, value string }{"db.password", "DB_PASSWORD", d.Password},
		)
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     r.path,
				Message:  fmt.Sprintf("%s must be set", r.env),
			})
		}
	}

	if d.Kind != "sqlite" && d.Port != "" {
		if p, err := strconv.Atoi(d.Port); err != nil || p < 1 || p > 65535 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "db.port",
				Message:  fmt.Sprintf("DB_PORT=%q is not a valid TCP port", d.Port),
			})
		}
	}
	if d.Kind == "sqlite" && (d.Host != "" || d.Username != "") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "db",
			Message:  "sqlite ignores DB_HOST/DB_PORT/DB_USERNAME/DB_PASSWORD; DB_NAME is the database file",
		})
	}

	if d.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "db.batch_size",
			Message:  "batch size must be >= 0 (ETL_BATCH_SIZE)",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
		return nil
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires PUSHGATEWAY_URL",
			}}
		}
	case "datadog":
		if strings.TrimSpace(m.DogStatsDAddr) == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.dogstatsd_addr",
				Message:  "datadog backend requires DOGSTATSD_ADDR",
			}}
		}
	default:
		return []Issue{{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; want none, pushgateway, or datadog (METRICS_BACKEND)", m.Backend),
		}}
	}
	return nil
}

// Check runs Validate and joins the error-severity issues into one error
// matching ErrConfig. Warnings are returned separately for logging.
func Check(cfg Config) (warnings []Issue, err error) {
	var errs []error
	for _, iss := range Validate(cfg) {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
			continue
		}
		warnings = append(warnings, iss)
	}
	if len(errs) > 0 {
		return warnings, fmt.Errorf("%w: %w", ErrConfig, errors.Join(errs...))
	}
	return warnings, nil
}
