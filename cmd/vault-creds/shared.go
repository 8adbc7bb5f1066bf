// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hashicorp/vault-credentials-resolver/internal/config"
	"github.com/hashicorp/vault-credentials-resolver/internal/consts"
	"github.com/hashicorp/vault-credentials-resolver/internal/credentials"
	"github.com/hashicorp/vault-credentials-resolver/internal/metrics"
	"github.com/hashicorp/vault-credentials-resolver/internal/options"
	"github.com/hashicorp/vault-credentials-resolver/internal/resolver"
	"github.com/hashicorp/vault-credentials-resolver/internal/vault"
	"github.com/hashicorp/vault-credentials-resolver/internal/version"
)

const defaultCredentialsFile = "credentials.yaml"

var (
	credentialsFile    string
	connectionFile     string
	logFormat          string
	logLevel           string
	metricsAddr        string
	clientPoolSize     int
	cacheTTL           time.Duration
	maxRetries         uint64
	envOptionsParseErr error
)

func bindRootFlags(cmd *cobra.Command) {
	// environment variables provide the flag defaults
	envOptions := &options.VCREnvOptions{}
	envOptionsParseErr = envOptions.Parse()

	poolSize := vault.DefaultPoolSize
	if envOptions.ClientPoolSize != nil {
		poolSize = *envOptions.ClientPoolSize
	}
	var retries uint64
	if envOptions.MaxRetries != nil {
		retries = *envOptions.MaxRetries
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&credentialsFile, "credentials-file", stringOr(envOptions.CredentialsFile, defaultCredentialsFile),
		"Path to the YAML credentials file.")
	flags.StringVar(&connectionFile, "connection-file", envOptions.ConnectionFile,
		"Path to a YAML Vault connection file, read before every request. "+
			"The VAULT_* environment variables are used when unset.")
	flags.StringVar(&logFormat, "log-format", stringOr(envOptions.LogFormat, "console"),
		"Log encoding, choices=[console json]")
	flags.StringVar(&logLevel, "log-level", stringOr(envOptions.LogLevel, "info"),
		"Log verbosity, choices=[info debug trace] or a numeric V-level")
	flags.StringVar(&metricsAddr, "metrics-bind-address", "",
		"The address the metric endpoint binds to, disabled when empty.")
	flags.IntVar(&clientPoolSize, "client-pool-size", poolSize,
		"Maximum number of distinct Vault connections kept in memory.")
	flags.DurationVar(&cacheTTL, "cache-ttl", envOptions.CacheTTL,
		"Default time a resolved secret is reused, 0 disables caching.")
	flags.Uint64Var(&maxRetries, "max-retries", retries,
		"Number of retries for unreachable Vault servers and 5xx responses.")
}

// app holds everything a command needs to resolve credentials.
type app struct {
	logger        logr.Logger
	zapLogger     *zap.Logger
	client        vault.Client
	store         *credentials.Store
	metricsServer *http.Server
}

func newApp(ctx context.Context) (context.Context, *app, error) {
	if envOptionsParseErr != nil {
		return ctx, nil, fmt.Errorf("failed to process environment variable options: %w", envOptionsParseErr)
	}

	zapLogger, err := newLogger(logFormat, logLevel)
	if err != nil {
		return ctx, nil, err
	}
	logger := zapr.NewLogger(zapLogger)
	ctx = logr.NewContext(ctx, logger)

	client, err := vault.NewClient(&vault.ClientOptions{
		PoolSize: clientPoolSize,
	})
	if err != nil {
		return ctx, nil, err
	}

	var provider config.Provider = &config.EnvProvider{}
	if connectionFile != "" {
		provider = &config.FileProvider{Path: connectionFile}
	}

	var opts []resolver.Option
	if cacheTTL > 0 {
		opts = append(opts, resolver.WithCacheTTL(cacheTTL))
	}
	if maxRetries > 0 {
		opts = append(opts, resolver.WithMaxRetries(maxRetries))
	}

	store, err := credentials.LoadStore(credentialsFile, provider, client, opts...)
	if err != nil {
		client.Close()
		return ctx, nil, err
	}

	a := &app{
		logger:    logger,
		zapLogger: zapLogger,
		client:    client,
		store:     store,
	}
	if metricsAddr != "" {
		a.startMetricsServer(metricsAddr)
	}

	logger.V(consts.LogLevelDebug).Info("Loaded credentials",
		"file", credentialsFile, "count", store.Len())

	return ctx, a, nil
}

func (a *app) startMetricsServer(addr string) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.NewBuildInfoGauge(version.Get()),
	)
	vault.MustRegisterClientMetrics(registry)
	resolver.MustRegisterResolverMetrics(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	a.metricsServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("Starting metrics server", "address", addr)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(err, "Metrics server failed")
		}
	}()
}

func (a *app) Close() {
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.logger.Error(err, "Failed to shut down metrics server")
		}
	}
	a.client.Close()
	_ = a.zapLogger.Sync()
}

func newLogger(format, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}

	v, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}
	// logr V-levels map onto negative zap levels
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-v))
	cfg.OutputPaths = []string{"stderr"}

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return z, nil
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return 0, nil
	case "debug":
		return consts.LogLevelDebug, nil
	case "trace":
		return consts.LogLevelTrace, nil
	}

	v, err := strconv.Atoi(level)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("unsupported log level %q", level)
	}
	return v, nil
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
