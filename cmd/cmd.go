// Package cmd provides the scaffolding shared by this module's tool
// binaries: config loading, logging and metrics setup, and fatal error
// handling.
package cmd

import (
	"fmt"
	"log/syslog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	blog "github.com/cairnpki/cairn/log"
	"github.com/cairnpki/cairn/strictyaml"
)

// ReadConfigFile loads a YAML config file into the provided struct,
// rejecting unknown keys.
func ReadConfigFile(filename string, out interface{}) error {
	configData, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading config file %q: %w", filename, err)
	}
	return strictyaml.Unmarshal(configData, out)
}

// Fail raises an error and exits nonzero.
func Fail(msg string) {
	FailOnError(fmt.Errorf("%s", msg), "")
}

// FailOnError exits nonzero after logging the error when err is
// non-nil, and does nothing otherwise.
func FailOnError(err error, msg string) {
	if err == nil {
		return
	}
	logger := blog.Get()
	if msg != "" {
		logger.AuditErrf("%s: %s", msg, err)
	} else {
		logger.AuditErr(err.Error())
	}
	os.Exit(1)
}

// StatsAndLogging sets up the singleton stdout logger at the given
// level and constructs a metrics registry. When debugAddr is non-empty
// it also starts serving /metrics there in a background goroutine.
func StatsAndLogging(level syslog.Priority, debugAddr string) (prometheus.Registerer, blog.Logger) {
	logger := blog.New(level)
	_ = blog.Set(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if debugAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		server := &http.Server{
			Addr:        debugAddr,
			Handler:     mux,
			ReadTimeout: 30 * time.Second,
		}
		go func() {
			err := server.ListenAndServe()
			if err != nil {
				logger.Errf("debug server on %s: %s", debugAddr, err)
			}
		}()
	}

	return registry, logger
}
