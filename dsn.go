// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package pgadaptor

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Config is a set of connection parameters.
type Config struct {
	Host     string // Host name or socket directory
	Port     int    // Port (optional)
	Database string // Database name
	User     string // Username
	Password string // Password (requires User)

	// ConnectString is used verbatim when set and all other connection
	// fields are ignored.
	ConnectString string
	// Params are additional keyword/value pairs, e.g. sslmode or
	// application_name.
	Params map[string]string

	ConnectTimeout time.Duration // Dial timeout, whole seconds

	LogSQL           bool   // Log every statement at info level
	ClientConfigFile string // Path of the client (logging) configuration
}

// DSN renders the configuration as a keyword/value connect string.
func (c *Config) DSN() string {
	if c.ConnectString != "" {
		return c.ConnectString
	}
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+quoteConnValue(value))
		}
	}
	add("host", c.Host)
	if c.Port > 0 {
		add("port", strconv.Itoa(c.Port))
	}
	add("dbname", c.Database)
	add("user", c.User)
	add("password", c.Password)
	if c.ConnectTimeout > 0 {
		add("connect_timeout", strconv.Itoa(int(c.ConnectTimeout/time.Second)))
	}

	keys := make([]string, 0, len(c.Params))
	for k := range c.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(k, c.Params[k])
	}
	return strings.Join(parts, " ")
}

// quoteConnValue quotes a value the way libpq expects in a keyword/value
// connect string.
func quoteConnValue(value string) string {
	if value != "" && !strings.ContainsAny(value, " '\\\t\n") {
		return value
	}
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range value {
		if r == '\'' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('\'')
	return sb.String()
}

// ParseDSN parses a URL or keyword/value connect string. The returned Config
// keeps dsn as its ConnectString, so settings without a Config field (TLS for
// example) survive a round trip.
func ParseDSN(dsn string) (*Config, error) {
	pc, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return nil, &AdaptorError{
			Number:  ErrCodeCouldNotConnect,
			Message: errMsgCouldNotConnect,
			cause:   err,
		}
	}
	cfg := &Config{
		Host:           pc.Host,
		Port:           int(pc.Port),
		Database:       pc.Database,
		User:           pc.User,
		Password:       pc.Password,
		ConnectString:  dsn,
		ConnectTimeout: pc.ConnectTimeout,
	}
	if len(pc.RuntimeParams) > 0 {
		cfg.Params = make(map[string]string, len(pc.RuntimeParams))
		for k, v := range pc.RuntimeParams {
			cfg.Params[k] = v
		}
	}
	return cfg, nil
}
