// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the libweb
// project. Commands are organized using the cobra library.
// The root command starts the web server itself while the "db"
// sub-command can be used for the database initialization actions.
//
//	./libweb [-c /path/of/main/config.yaml]           # start web server
//	./libweb db init-dev [-c /path/of/main/config.yaml]
//	./libweb db init-prod [-c /path/of/main/config.yaml]
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momeni/libweb/pkg/adapter/config"
	"github.com/momeni/libweb/pkg/adapter/config/cfg1"
	"github.com/momeni/libweb/pkg/adapter/restful/gin/routes"
	"github.com/momeni/libweb/pkg/core/log"
	"github.com/momeni/libweb/pkg/core/repo"
	"github.com/momeni/libweb/pkg/core/usecase/migrationuc"
	"github.com/spf13/cobra"
)

var cfgPath string

// shutdownTimeout bounds the time which in-flight requests may take
// after an interrupt signal.
const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "libweb",
	Short: "A library books, copies, members, and rentals web service",
	Long: `A library management web service which keeps a catalogue of
books and their physical copies, registers members, and lets members
rent and return copies while keeping the copies availability flags
consistent with the open rentals, even under concurrent requests.
It serves a REST API under /api/libweb/v1 and a few HTML pages, and
stores its data in a SQLite file or a PostgreSQL database.
Use the "db init-dev" or "db init-prod" sub-commands in order to
create the database schema before starting the web server.`,
	RunE: startWebServer,
	Args: cobra.NoArgs,
}

func startWebServer(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := c.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	err = migrationuc.CheckSchema(
		ctx, p, c.NewSchemaRepo(), c.SchemaVersion(),
	)
	if err != nil {
		return fmt.Errorf("checking database schema: %w", err)
	}
	e := c.Gin.NewEngine(slog.Default())
	if err = routes.Register(ctx, e, p, c); err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	srv := &http.Server{Addr: *c.Gin.Address, Handler: e}
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", slog.String("address", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err = <-errCh:
		return fmt.Errorf("running Gin engine: %w", err)
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down")
	sctx, cancel := context.WithTimeout(
		context.Background(), shutdownTimeout,
	)
	defer cancel()
	if err = srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err = <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("running Gin engine: %w", err)
	}
	return nil
}

// loadConfig loads the cfgPath file and installs the configured
// logger as the default slog logger.
func loadConfig() (*cfg1.Config, error) {
	c, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	slog.SetDefault(c.Logging.NewLogger(os.Stderr))
	log.Debug(
		context.Background(), "configs are loaded",
		slog.String("path", cfgPath),
		slog.String("driver", c.Database.Driver),
		slog.Int("max_open_conns", c.Database.MaxOpenConns),
		log.Valuer("conn_max_lifetime", c.Database.ConnMaxLifetime),
	)
	return c, nil
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. The exit code is
// non-zero for failures.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		// the default path should usually be in the /etc directory
		cfgPath = "configs/sample-config.yaml"
	}
}
