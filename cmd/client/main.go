// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-auth-service/internal/adapter"
	"github.com/MKhiriev/go-auth-service/internal/config"
	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	fs := flag.NewFlagSet("auth-client", flag.ExitOnError)
	logLevel := fs.String("log-level", "warn", "client log level (debug, info, warn, error)")
	showBuild := fs.Bool("build-info", false, "print build information and exit")
	fs.Usage = func() { usage(fs) }
	_ = fs.Parse(os.Args[1:])

	if *showBuild {
		fmt.Print(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))
		return
	}

	log := logger.NewConsoleLogger("go-auth-client")
	if err := logger.SetLevel(*logLevel); err != nil {
		log.Fatal().Err(err).Str("level", *logLevel).Msg("unknown log level")
	}

	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create server adapter")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, fs.Args(), serverAdapter, os.Stdout); err != nil {
		stop()
		if errors.Is(err, errUsage) {
			usage(fs)
			os.Exit(2)
		}
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintf(out, "Usage: auth-client [flags] <command> [command flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(out, "\nFlags:\n")
	fs.PrintDefaults()
}
