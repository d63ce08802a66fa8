package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	BackendPostgres = "postgres"
	BackendRemote   = "remote"
)

type Config struct {
	Port                  string
	Env                   string // either prod or dev, will disable https and few other bits
	SessionKey            []byte
	JwtSigningKey         []byte
	SavedJobsBackend      string // postgres or remote
	DatabaseUser          string
	DatabasePassword      string
	DatabaseHost          string
	DatabasePort          string
	DatabaseName          string
	DatabaseSSLMode       string
	RemoteAPIBaseURL      string        // job seeker API serving saved jobs when backend is remote
	RemoteAPITimeout      time.Duration // per request timeout against the remote API
	SavedJobsPerPage      int           // configures how many saved jobs are shown per page
	SavedJobsSettleAfter  time.Duration // how long a request waits on a fetch before rendering the loading page
	SavedJobsFetchTimeout time.Duration // bound on a shared fetch, which outlives the request that started it
	SiteName              string
	SiteHost              string
	SupportEmail          string // displayed on the site for support queries
	SentryDSN             string
}

func LoadConfig() (Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		return Config{}, fmt.Errorf("PORT cannot be empty")
	}
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		return Config{}, fmt.Errorf("ENV cannot be empty")
	}
	sessionKeyString := os.Getenv("SESSION_KEY")
	if sessionKeyString == "" {
		return Config{}, fmt.Errorf("SESSION_KEY cannot be empty")
	}
	sessionKeyBytes, err := base64.StdEncoding.DecodeString(sessionKeyString)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to decode session key to bytes")
	}
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		return Config{}, fmt.Errorf("JWT_SIGNING_KEY cannot be empty")
	}
	jwtSigningKeyBytes, err := base64.StdEncoding.DecodeString(jwtSigningKey)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to decode jwt signing key to bytes")
	}

	backend := strings.ToLower(os.Getenv("SAVED_JOBS_BACKEND"))
	if backend == "" {
		backend = BackendPostgres
	}
	if backend != BackendPostgres && backend != BackendRemote {
		return Config{}, fmt.Errorf("SAVED_JOBS_BACKEND must be %s or %s, got %q", BackendPostgres, BackendRemote, backend)
	}

	cfg := Config{
		Port:             port,
		Env:              env,
		SessionKey:       sessionKeyBytes,
		JwtSigningKey:    jwtSigningKeyBytes,
		SavedJobsBackend: backend,
		RemoteAPIBaseURL: os.Getenv("REMOTE_API_BASE_URL"),
		SiteName:         os.Getenv("SITE_NAME"),
		SiteHost:         os.Getenv("SITE_HOST"),
		SupportEmail:     os.Getenv("SUPPORT_EMAIL"),
		SentryDSN:        os.Getenv("SENTRY_DSN"),
	}
	if cfg.RemoteAPIBaseURL == "" {
		cfg.RemoteAPIBaseURL = "https://localhost:7100/api"
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "Saved Jobs"
	}

	if backend == BackendPostgres {
		for _, v := range []struct {
			name string
			dst  *string
		}{
			{"DATABASE_USER", &cfg.DatabaseUser},
			{"DATABASE_PASSWORD", &cfg.DatabasePassword},
			{"DATABASE_HOST", &cfg.DatabaseHost},
			{"DATABASE_PORT", &cfg.DatabasePort},
			{"DATABASE_NAME", &cfg.DatabaseName},
			{"DATABASE_SSL_MODE", &cfg.DatabaseSSLMode},
		} {
			*v.dst = os.Getenv(v.name)
			if *v.dst == "" {
				return Config{}, fmt.Errorf("%s cannot be empty", v.name)
			}
		}
	}

	cfg.RemoteAPITimeout, err = durationFromEnv("REMOTE_API_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.SavedJobsSettleAfter, err = durationFromEnv("SAVED_JOBS_SETTLE_TIMEOUT", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.SavedJobsFetchTimeout, err = durationFromEnv("SAVED_JOBS_FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.SavedJobsPerPage = 6
	if perPage := os.Getenv("SAVED_JOBS_PER_PAGE"); perPage != "" {
		cfg.SavedJobsPerPage, err = strconv.Atoi(perPage)
		if err != nil {
			return Config{}, errors.Wrapf(err, "unable to convert SAVED_JOBS_PER_PAGE to int")
		}
		if cfg.SavedJobsPerPage < 1 {
			return Config{}, fmt.Errorf("SAVED_JOBS_PER_PAGE must be positive")
		}
	}

	return cfg, nil
}

func durationFromEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to parse %s", name)
	}
	return d, nil
}
