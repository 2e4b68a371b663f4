package main

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"log/syslog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/idna"

	"github.com/cairnpki/cairn/certview"
	"github.com/cairnpki/cairn/cmd"
	"github.com/cairnpki/cairn/constraints"
	cerrors "github.com/cairnpki/cairn/errors"
	blog "github.com/cairnpki/cairn/log"
	"github.com/cairnpki/cairn/seclevel"
)

// Config holds the chain-checker tool configuration.
type Config struct {
	// ChainFile is the path of a PEM file holding the certificate chain
	// to check, leaf first.
	ChainFile string `yaml:"chainFile"`

	// Hostname, when set, must be covered by one of the leaf
	// certificate's DNS names. It is normalized with IDNA before
	// comparison, so a U-label form is accepted.
	Hostname string `yaml:"hostname"`

	// SecurityLevel is the minimum security level (0 through 5) every
	// public key in the chain must satisfy. Level 0 disables the check.
	SecurityLevel int `yaml:"securityLevel"`

	// DebugAddr, when set, serves prometheus metrics over HTTP.
	DebugAddr string `yaml:"debugAddr"`
}

type checker struct {
	policy seclevel.Policy
	logger blog.Logger
	checks *prometheus.CounterVec
}

func newChecker(policy seclevel.Policy, stats prometheus.Registerer, logger blog.Logger) *checker {
	checks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chain_checks",
		Help: "Chain checks performed, labelled by result.",
	}, []string{"result"})
	stats.MustRegister(checks)

	return &checker{
		policy: policy,
		logger: logger,
		checks: checks,
	}
}

// loadChain reads a PEM file and returns the certificates it contains,
// in file order.
func loadChain(path string) ([]*x509.Certificate, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chain file: %w", err)
	}

	var certs []*x509.Certificate
	rest := pemBytes
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			return nil, fmt.Errorf("chain file contains a %q block, expected only CERTIFICATE", block.Type)
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing certificate %d: %w", len(certs), err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates found in %q", path)
	}
	return certs, nil
}

// hostnameMatches reports whether hostname is covered by one of the
// leaf's DNS SAN entries, honoring a single leading wildcard label.
func hostnameMatches(hostname string, sans []constraints.GeneralName) bool {
	for _, gn := range sans {
		if gn.Type != constraints.GeneralNameDNS {
			continue
		}
		san := string(gn.Bytes)
		if strings.HasPrefix(san, "*.") {
			dot := strings.IndexByte(hostname, '.')
			if dot > 0 && strings.EqualFold(hostname[dot:], san[1:]) {
				return true
			}
			continue
		}
		if strings.EqualFold(san, hostname) {
			return true
		}
	}
	return false
}

// resultLabel maps a chain-check error to its metric label.
func resultLabel(err error) string {
	var ce *cerrors.CairnError
	if errors.As(err, &ce) {
		return ce.Type.String()
	}
	return "internal"
}

func (c *checker) check(certs []*x509.Certificate, hostname string) error {
	c.logger.Debugf("checking chain of %d certificates", len(certs))

	chain, err := certview.NewChain(certs)
	if err != nil {
		c.checks.WithLabelValues("malformed").Inc()
		return err
	}

	err = constraints.CheckChain(chain)
	if err != nil {
		c.checks.WithLabelValues(resultLabel(err)).Inc()
		return err
	}

	if hostname != "" {
		ascii, err := idna.Lookup.ToASCII(strings.ToLower(strings.TrimSuffix(hostname, ".")))
		if err != nil {
			c.checks.WithLabelValues("badHostname").Inc()
			return fmt.Errorf("normalizing hostname %q: %w", hostname, err)
		}
		if !constraints.ValidHost([]byte(ascii)) {
			c.checks.WithLabelValues("badHostname").Inc()
			return fmt.Errorf("hostname %q is not a valid host", hostname)
		}
		if !hostnameMatches(ascii, chain[0].SubjectAltNames()) {
			c.checks.WithLabelValues("hostnameMismatch").Inc()
			return fmt.Errorf("hostname %q is not covered by the leaf certificate", hostname)
		}
	}

	for i, cert := range certs {
		err := c.policy.PermitsKey(cert.PublicKey)
		if err != nil {
			c.checks.WithLabelValues("weakKey").Inc()
			return fmt.Errorf("certificate %d: %w", i, err)
		}
	}

	c.checks.WithLabelValues("ok").Inc()
	return nil
}

func main() {
	configFile := flag.String("config", "", "Path to the configuration file")
	flag.Parse()
	if *configFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	var config Config
	err := cmd.ReadConfigFile(*configFile, &config)
	cmd.FailOnError(err, "Failed to read configuration")

	stats, logger := cmd.StatsAndLogging(syslog.LOG_INFO, config.DebugAddr)

	certs, err := loadChain(config.ChainFile)
	cmd.FailOnError(err, "Failed to load chain")

	policy := seclevel.NewPolicy(seclevel.Level(config.SecurityLevel), nil)
	c := newChecker(policy, stats, logger)

	err = c.check(certs, config.Hostname)
	cmd.FailOnError(err, fmt.Sprintf("Chain of %d certificates failed", len(certs)))

	logger.AuditInfof("Chain of %d certificates passed all checks", len(certs))
}
