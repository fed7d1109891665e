// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cfg1 makes it possible to load configuration settings with
// version 1.x.y since all minor and patch versions (which are known)
// with the same major version, can be loaded with one implementation.
package cfg1

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/momeni/libweb/pkg/adapter/config/settings"
	"github.com/momeni/libweb/pkg/adapter/config/vers"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/schemarp"
	"github.com/momeni/libweb/pkg/adapter/hash/scram"
	"github.com/momeni/libweb/pkg/adapter/restful/gin"
	"github.com/momeni/libweb/pkg/core/log"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/repo"
	scrami "github.com/momeni/libweb/pkg/core/scram"
	"github.com/momeni/libweb/pkg/core/usecase/migrationuc"
	"github.com/momeni/libweb/pkg/core/usecase/rentaluc"
	"gopkg.in/yaml.v3"
)

// These constants define the major, minor, and patch version of the
// configuration settings which are supported by the Config struct.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the semantic version of Config struct.
var Version = model.SemVer{Major, Minor, Patch}

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultSQLitePath is used when the sqlite driver is selected without
// a database file path.
const DefaultSQLitePath = "libweb.db"

// Config contains all settings which are required by different parts
// of the project following the v1.x.y format, such as adapters or
// use cases. It is implemented with primitive fields or structs which
// are defined locally, so the configuration format is kept intact
// while other layers can change freely.
type Config struct {
	Database Database // database connection settings
	Gin      Gin      // Gin-Gonic instantiation settings
	Logging  Logging  // slog handler settings
	Usecases Usecases // Configuration settings for supported use cases

	// Vers contains the configuration file and database schema version
	// strings corresponding to this Config instance and its Database
	// target.
	Vers vers.Config `yaml:",inline"`
}

// Database contains the database related configuration settings.
// The Path is only used by the sqlite driver, while Host, Port, Name,
// PassDir, RoleSuffix, and AuthMethod are only used by the postgres
// driver.
type Database struct {
	Driver  string // sqlite (default) or postgres
	Path    string // path of the sqlite database file
	Host    string // domain name or IP address of the DBMS server
	Port    int    // port number of the DBMS server
	Name    string // database name, like libweb
	PassDir string `yaml:"pass-dir"` // path of the passwords dir

	// RoleSuffix specifies a possibly empty suffix for the database
	// role names. Normally, repo.AdminRole and repo.NormalRole roles
	// are used. Tests which share a database cluster may use distinct
	// suffixes in order to create non-colliding roles.
	RoleSuffix repo.Role `yaml:"role-suffix,omitempty"`

	// AuthMethod specifies the database authentication method name,
	// that is, scram-sha-1 or scram-sha-256 (default). It indicates
	// how passwords should be hashed before being sent to the DBMS.
	AuthMethod string `yaml:"auth-method,omitempty"`

	MaxOpenConns    int                `yaml:"max-open-conns,omitempty"`
	ConnMaxLifetime *settings.Duration `yaml:"conn-max-lifetime,omitempty"`

	// hasher is instantiated based on the AuthMethod and is used by
	// the NewSchemaRepo method.
	hasher scrami.Hasher `yaml:"-"`
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `c` settings.
func (c *Config) ConnectionPool(
	ctx context.Context, r repo.Role,
) (migrationuc.Pool, error) {
	p, err := c.Database.ConnectionPool(ctx, r)
	if err != nil {
		return nil, fmt.Errorf(
			"creating connection pool for %q role: %w", r, err,
		)
	}
	return p, nil
}

// ManagesRoles reports if the configured database has login roles.
func (c *Config) ManagesRoles() bool {
	return c.Database.Driver == DriverPostgres
}

// NewSchemaRepo instantiates a fresh Schema repository.
func (c *Config) NewSchemaRepo() repo.Schema {
	return c.Database.NewSchemaRepo()
}

// RenewPasswords generates new passwords for the given roles, records
// them, and asks the change function to update them in the database.
// See the Database.RenewPasswords method.
func (c *Config) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	return c.Database.RenewPasswords(ctx, change, roles...)
}

// SchemaVersion returns the database schema version which is expected
// by these settings.
func (c *Config) SchemaVersion() model.SemVer {
	return c.Vers.Versions.Database
}

func (d Database) poolOptions() gormdb.PoolOptions {
	return gormdb.PoolOptions{
		MaxOpenConns:    d.MaxOpenConns,
		ConnMaxLifetime: d.ConnMaxLifetime.Std(0),
	}
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `d` settings.
// A sqlite database file is opened directly and `r` is ignored.
//
// For postgres, the .pgpass file in the d.PassDir folder is checked
// which should conform with the pgpass format with lines like this:
//
//	host:port:dbname:role:password
//
// If a database connection could not be established, passwords might
// have been updated during a previous incomplete initialization. So the
// .pgpass.new file in the same folder is checked too. If it works,
// the .pgpass.new is moved to the .pgpass file.
//
// The `d.RoleSuffix` will be appended to the given `r` role name too.
func (d Database) ConnectionPool(
	ctx context.Context, r repo.Role,
) (*gormdb.Pool, error) {
	if d.Driver == DriverSQLite {
		return gormdb.NewSQLitePool(ctx, d.Path, d.poolOptions())
	}
	path := filepath.Join(d.PassDir, ".pgpass")
	u, err := d.ConnectionURL(r, path)
	if err != nil {
		return nil, fmt.Errorf("using %q pass-file: %w", path, err)
	}
	p, err := gormdb.NewPostgresPool(ctx, u, d.poolOptions())
	if err == nil {
		return p, nil
	}
	newPath := filepath.Join(d.PassDir, ".pgpass.new")
	log.Warn(
		ctx, "cannot connect, trying the new pass-file",
		slog.String("path", path), slog.String("new_path", newPath),
		log.Err("err", err),
	)
	u, err = d.ConnectionURL(r, newPath)
	if err != nil {
		return nil, fmt.Errorf("using %q pass-file: %w", newPath, err)
	}
	p, err = gormdb.NewPostgresPool(ctx, u, d.poolOptions())
	if err != nil {
		return nil, fmt.Errorf("can use neither pass-file: %w", err)
	}
	if err = os.Rename(newPath, path); err != nil {
		p.Close()
		return nil, fmt.Errorf("os.Rename: %w", err)
	}
	return p, nil
}

// ConnectionURL returns the postgresql connection URL embedding the
// host, port, role name, database name, and password value. The role
// name is specified by the `r` argument (and suffixed by d.RoleSuffix)
// and the password value is read from the given `path` file which
// may contain empty or `#`-commented lines in addition to the pgpass
// formatted lines.
func (d Database) ConnectionURL(
	r repo.Role, path string,
) (string, error) {
	passLines, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	r = r + d.RoleSuffix
	prfx := fmt.Sprintf("%s:%d:%s:%s:", d.Host, d.Port, d.Name, r)
	var pass string
	for _, line := range strings.Split(string(passLines), "\n") {
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, prfx) {
			pass = line[len(prfx):]
			break
		}
	}
	if pass == "" {
		return "", errors.New("no matching password line")
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(string(r), pass),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String(), nil
}

// NewSchemaRepo instantiates a fresh Schema repository which suffixes
// role names by d.RoleSuffix and hashes passwords based on the
// d.AuthMethod. The ValidateAndNormalize method is expected to be
// called beforehand, so the hasher is instantiated.
func (d Database) NewSchemaRepo() repo.Schema {
	return schemarp.New(d.RoleSuffix, d.hasher)
}

// RenewPasswords generates new secure passwords for the given roles
// and after recording them in the .pgpass.new file in the d.PassDir
// directory, will use the `change` function in order to update the
// passwords of those `roles` in the database too. The returned
// finalizer moves .pgpass.new over the .pgpass file and should be
// called after the `change` transaction is committed.
//
// A sqlite database has no roles, so nothing is recorded or changed.
func (d Database) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	if d.Driver == DriverSQLite {
		return func() error { return nil }, nil
	}
	passwords := make([]string, len(roles))
	b := make([]byte, 16) // 128 bits
	enc := base64.RawStdEncoding
	p := make([]byte, enc.EncodedLen(len(b)))
	prfx := fmt.Sprintf("%s:%d:%s", d.Host, d.Port, d.Name)
	lines := make([]string, len(passwords))
	for i, r := range roles {
		if _, err = rand.Read(b); err != nil {
			return nil, fmt.Errorf("rand.Read for i=%d: %w", i, err)
		}
		enc.Encode(p, b)
		passwords[i] = string(p)
		r = r + d.RoleSuffix
		lines[i] = fmt.Sprintf("%s:%s:%s\n", prfx, r, passwords[i])
	}
	orgPath := filepath.Join(d.PassDir, ".pgpass")
	newPath := filepath.Join(d.PassDir, ".pgpass.new")
	finalizer = func() error {
		return os.Rename(newPath, orgPath)
	}
	err = os.WriteFile(newPath, []byte(strings.Join(lines, "")), 0o600)
	if err != nil {
		return nil, fmt.Errorf("writing %q file: %w", newPath, err)
	}
	if err = change(ctx, roles, passwords); err != nil {
		return nil, fmt.Errorf("passwords change callback: %w", err)
	}
	return finalizer, nil
}

// ValidateAndNormalize validates the database settings and fills
// the missing driver, path, and auth method by their defaults.
func (d *Database) ValidateAndNormalize() error {
	switch d.Driver {
	case "":
		d.Driver = DriverSQLite
		fallthrough
	case DriverSQLite:
		if d.Path == "" {
			d.Path = DefaultSQLitePath
		}
	case DriverPostgres:
		if d.Host == "" || d.Name == "" || d.Port <= 0 {
			return errors.New("postgres needs host, port, and name")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", d.Driver)
	}
	if d.MaxOpenConns < 0 {
		return fmt.Errorf("negative max-open-conns: %d", d.MaxOpenConns)
	}
	if d.AuthMethod == "" {
		d.AuthMethod = scram.DefaultMethod
	}
	h, err := scram.Named(d.AuthMethod)
	if err != nil {
		return err
	}
	d.hasher = h
	return nil
}

// Gin contains the gin-gonic related configuration settings.
// Fields are defined as pointers, so it is possible to detect if they
// are or are not initialized and fill them with their defaults.
type Gin struct {
	Logger   *bool   // Whether to register the access log middleware
	Recovery *bool   // Whether to register the gin.Recovery() middleware
	Address  *string // Listening address, like 127.0.0.1:8080

	// RateLimit configures the per-client requests rate limiter.
	// A missing RPS disables the limiter.
	RateLimit struct {
		RPS   *float64 `yaml:"rps"`
		Burst *int     `yaml:"burst"`
	} `yaml:"rate-limit"`
}

// DefaultAddress is the listening address when none is configured.
const DefaultAddress = "127.0.0.1:8080"

// NewEngine instantiates a new gin-gonic engine instance based on
// the `g` settings. The l logger is used for access logs.
func (g Gin) NewEngine(l *slog.Logger) *gin.Engine {
	middlewares := make([]gin.HandlerFunc, 0, 4)
	middlewares = append(middlewares, gin.RequestID())
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger(l))
	}
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery())
	}
	if rps := g.RateLimit.RPS; rps != nil {
		middlewares = append(middlewares, gin.RateLimit(
			*rps, *g.RateLimit.Burst,
		))
	}
	return gin.New(middlewares...)
}

// Logging contains the slog handler settings.
type Logging struct {
	Level  string // debug, info (default), warn, or error
	Format string // text (default) or json
}

// NewLogger creates a logger which writes to w.
func (lg Logging) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	// validated by ValidateAndNormalize
	_ = level.UnmarshalText([]byte(lg.Level))
	opts := &slog.HandlerOptions{Level: level}
	if lg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (lg *Logging) ValidateAndNormalize() error {
	if lg.Level == "" {
		lg.Level = "info"
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(lg.Level)); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	switch lg.Format {
	case "":
		lg.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %q", lg.Format)
	}
	return nil
}

// Usecases contains the configuration settings for all use cases.
type Usecases struct {
	Rentals Rentals // rentals use cases related settings
}

// Rentals contains the configuration settings for the rentals
// use cases.
type Rentals struct {
	// Limit is the maximum number of open rentals per member.
	// A nil value lets the use cases layer select its default value.
	Limit *int `yaml:"limit"`
	// MinLimit is the inclusive minimum acceptable value for the
	// Limit setting. A missing value indicates no lower bound.
	MinLimit *int `yaml:"limit-minimum"`
	// MaxLimit is the inclusive maximum acceptable value for the
	// Limit setting. A missing value indicates no upper bound.
	MaxLimit *int `yaml:"limit-maximum"`
}

// NewUseCase instantiates a new rentals use case based on the settings
// in the `r` struct.
func (r Rentals) NewUseCase(
	p repo.Pool,
	members repo.Members,
	books repo.Books,
	copies repo.Copies,
	rentals repo.Rentals,
) (*rentaluc.UseCase, error) {
	opts := make([]rentaluc.Option, 0, 1)
	if r.Limit != nil {
		opts = append(opts, rentaluc.WithRentalLimit(*r.Limit))
	}
	return rentaluc.New(p, members, books, copies, rentals, opts...)
}

// Load unmarshals the data byte slice and loads a Config instance
// assuming that it contains the Config settings. Extra items in the
// data will be ignored and missing items will take their default
// values. Thereafter, loaded Config will be validated and normalized.
func Load(data []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. It can also modify
// settings in order to normalize them or replace some zero values with
// their expected default values (if any).
func (c *Config) ValidateAndNormalize() error {
	if err := c.Vers.Validate(Major, Minor); err != nil {
		return fmt.Errorf(
			"expecting version v%d.%d: %w", Major, Minor, err,
		)
	}
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	if err := c.Logging.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating logging settings: %w", err)
	}
	if c.Gin.Logger == nil {
		t := true
		c.Gin.Logger = &t
	}
	settings.Nil2Zero(&c.Gin.Recovery)
	if c.Gin.Address == nil {
		a := DefaultAddress
		c.Gin.Address = &a
	}
	rl := &c.Gin.RateLimit
	if rl.RPS != nil {
		if *rl.RPS <= 0 {
			return fmt.Errorf("non-positive rate-limit rps: %v", *rl.RPS)
		}
		if rl.Burst == nil {
			b := max(1, int(*rl.RPS))
			rl.Burst = &b
		}
	}
	r := &c.Usecases.Rentals
	err := settings.VerifyRange(
		"rental limit", &r.Limit, r.MinLimit, r.MaxLimit,
	)
	if err != nil {
		return err
	}
	if r.Limit != nil && *r.Limit <= 0 {
		return fmt.Errorf("non-positive rental limit: %d", *r.Limit)
	}
	return nil
}

// Version returns the semantic version of this Config struct contents.
func (c *Config) Version() model.SemVer {
	return c.Vers.Versions.Config
}
