package main

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/willemschots/quill/internal/email"
	"github.com/willemschots/quill/internal/krypto"
)

// httpConfig is the configuration for the HTTP server.
type httpConfig struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	secureCookie    bool
	allowedOrigins  []string
}

// dbConfig is the configuration for the database.
type dbConfig struct {
	file    string
	migrate bool
}

// sessionConfig is the configuration for session credentials.
type sessionConfig struct {
	key    krypto.Key
	ttl    time.Duration
	issuer string
}

// emailConfig is the configuration for outgoing email.
type emailConfig struct {
	driver        string // "log" or "postmark"
	from          email.Address
	baseURL       *url.URL
	postmarkURL   *url.URL
	postmarkToken krypto.Secret
	messageStream string
}

// config is the configuration for the server command.
type config struct {
	http    httpConfig
	db      dbConfig
	session sessionConfig
	email   emailConfig
}

// defaultConfig returns a config with sane default values.
// Note that the required fields remain zero values.
func defaultConfig() config {
	return config{
		http: httpConfig{
			addr:            ":8888",
			readTimeout:     time.Second * 5,
			writeTimeout:    time.Second * 10,
			idleTimeout:     time.Second * 120,
			shutdownTimeout: time.Second * 15,
			secureCookie:    true,
			allowedOrigins:  []string{"http://localhost:3000"},
		},
		db: dbConfig{
			file:    "./quill.db",
			migrate: true,
		},
		session: sessionConfig{
			ttl:    time.Hour * 3,
			issuer: "quill",
		},
		email: emailConfig{
			driver:        "log",
			baseURL:       mustURL("http://localhost:8888"),
			postmarkURL:   mustURL("https://api.postmarkapp.com/email"),
			messageStream: "outbound",
		},
	}
}

// requiredKeys are env variables that must be provided, there is no
// safe default for them.
var requiredKeys = []string{
	"SESSION_KEY",
	"EMAIL_FROM",
}

// envMap maps environment variable names to fields in the config struct.
var envMap = map[string]func(v string, c *config) error{
	"HTTP_ADDR": func(v string, c *config) error {
		c.http.addr = v
		return nil
	},
	"HTTP_READ_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.readTimeout, 0, math.MaxInt64)
	},
	"HTTP_WRITE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.writeTimeout, 0, math.MaxInt64)
	},
	"HTTP_IDLE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.idleTimeout, 0, math.MaxInt64)
	},
	"HTTP_SHUTDOWN_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.shutdownTimeout, 0, math.MaxInt64)
	},
	"HTTP_SECURE_COOKIE": func(v string, c *config) error {
		return confBool(v, &c.http.secureCookie)
	},
	"HTTP_ALLOWED_ORIGINS": func(v string, c *config) error {
		c.http.allowedOrigins = strings.Split(v, ",")
		return nil
	},
	"DB_FILE": func(v string, c *config) error {
		c.db.file = v
		return nil
	},
	"DB_MIGRATE": func(v string, c *config) error {
		return confBool(v, &c.db.migrate)
	},
	"SESSION_KEY": func(v string, c *config) error {
		key, err := krypto.ParseKey(v)
		if err != nil {
			return err
		}
		c.session.key = key
		return nil
	},
	"SESSION_TTL": func(v string, c *config) error {
		return confDuration(v, &c.session.ttl, time.Minute, math.MaxInt64)
	},
	"SESSION_ISSUER": func(v string, c *config) error {
		c.session.issuer = v
		return nil
	},
	"EMAIL_DRIVER": func(v string, c *config) error {
		if v != "log" && v != "postmark" {
			return fmt.Errorf("unknown email driver %q", v)
		}
		c.email.driver = v
		return nil
	},
	"EMAIL_FROM": func(v string, c *config) error {
		from, err := email.ParseAddress(v)
		if err != nil {
			return err
		}
		c.email.from = from
		return nil
	},
	"BASE_URL": func(v string, c *config) error {
		return confURL(v, &c.email.baseURL)
	},
	"POSTMARK_API_URL": func(v string, c *config) error {
		return confURL(v, &c.email.postmarkURL)
	},
	"POSTMARK_SERVER_TOKEN": func(v string, c *config) error {
		c.email.postmarkToken = krypto.NewSecret(v)
		return nil
	},
	"POSTMARK_MESSAGE_STREAM": func(v string, c *config) error {
		c.email.messageStream = v
		return nil
	},
}

// configFromEnv returns a config with values from the environment. It falls
// back to default values for any missing non-required environment variables.
//
// It does a best effort to validate provided values, so that mistakes are
// caught ASAP. However, there is no guarantee that the returned config
// is valid and will work.
func configFromEnv() (config, error) {
	c := defaultConfig()

	var errs []error

	for key, mf := range envMap {
		val, ok := os.LookupEnv(key)
		if !ok {
			continue
		}

		if err := mf(val, &c); err != nil {
			errs = append(errs, fmt.Errorf("invalid env variable %s: %w", key, err))
		}
	}

	for _, key := range requiredKeys {
		if _, ok := os.LookupEnv(key); !ok {
			errs = append(errs, fmt.Errorf("missing required env variable %s", key))
		}
	}

	if c.email.driver == "postmark" && len(c.email.postmarkToken.SecretValue()) == 0 {
		errs = append(errs, errors.New("POSTMARK_SERVER_TOKEN is required for the postmark email driver"))
	}

	return c, errors.Join(errs...)
}

// confDuration attempts to parse v into tgt and checks if the result is in
// the provided range (inclusive).
func confDuration(v string, tgt *time.Duration, min, max time.Duration) error {
	dur, err := time.ParseDuration(v)
	if err != nil {
		return err
	}

	if dur < min || dur > max {
		return fmt.Errorf("duration %s not in range [%s, %s] (inclusive)", dur, min, max)
	}

	*tgt = dur

	return nil
}

func confBool(v string, tgt *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}

	*tgt = b

	return nil
}

func confURL(v string, tgt **url.URL) error {
	u, err := url.Parse(v)
	if err != nil {
		return err
	}

	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url %q is missing a scheme or host", v)
	}

	*tgt = u

	return nil
}

func mustURL(v string) *url.URL {
	u, err := url.Parse(v)
	if err != nil {
		panic(err)
	}
	return u
}
