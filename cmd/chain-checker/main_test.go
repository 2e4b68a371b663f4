package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cairnpki/cairn/certview"
	"github.com/cairnpki/cairn/constraints"
	blog "github.com/cairnpki/cairn/log"
	"github.com/cairnpki/cairn/seclevel"
	"github.com/cairnpki/cairn/test"
)

type testChain struct {
	leaf, ca, root *x509.Certificate
}

// newTestChain issues a three-certificate chain whose intermediate
// permits DNS names under .example.com.
func newTestChain(t *testing.T, leafDNSNames []string) testChain {
	t.Helper()

	newKey := func() *ecdsa.PrivateKey {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		test.AssertNotError(t, err, "generating key")
		return key
	}
	issue := func(template, parent *x509.Certificate, parentKey *ecdsa.PrivateKey) (*x509.Certificate, *ecdsa.PrivateKey) {
		key := newKey()
		if parent == nil {
			parent = template
			parentKey = key
		}
		der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, parentKey)
		test.AssertNotError(t, err, "issuing certificate")
		cert, err := x509.ParseCertificate(der)
		test.AssertNotError(t, err, "parsing certificate")
		return cert, key
	}
	template := func(cn string) *x509.Certificate {
		return &x509.Certificate{
			SerialNumber: big.NewInt(1),
			Subject:      pkix.Name{CommonName: cn},
			NotBefore:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			NotAfter:     time.Date(2034, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	rootTemplate := template("Test Root")
	rootTemplate.BasicConstraintsValid = true
	rootTemplate.IsCA = true
	root, rootKey := issue(rootTemplate, nil, nil)

	ncExt, err := certview.MarshalNameConstraints(&constraints.NameConstraints{
		Permitted: []constraints.Subtree{
			{Base: constraints.GeneralName{Type: constraints.GeneralNameDNS, Bytes: []byte(".example.com")}, Maximum: -1},
		},
	}, true)
	test.AssertNotError(t, err, "marshalling name constraints")

	caTemplate := template("Test Issuing CA")
	caTemplate.BasicConstraintsValid = true
	caTemplate.IsCA = true
	caTemplate.ExtraExtensions = []pkix.Extension{ncExt}
	ca, _ := issue(caTemplate, root, rootKey)

	leafTemplate := template(leafDNSNames[0])
	leafTemplate.DNSNames = leafDNSNames
	leaf, _ := issue(leafTemplate, root, rootKey)

	return testChain{leaf: leaf, ca: ca, root: root}
}

func (tc testChain) certs() []*x509.Certificate {
	return []*x509.Certificate{tc.leaf, tc.ca, tc.root}
}

func newTestChecker(t *testing.T, level seclevel.Level) *checker {
	t.Helper()
	return newChecker(seclevel.NewPolicy(level, nil), prometheus.NewRegistry(), blog.NewMock())
}

func TestLoadChain(t *testing.T) {
	chain := newTestChain(t, []string{"www.example.com"})

	var pemBytes []byte
	for _, cert := range chain.certs() {
		pemBytes = append(pemBytes, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})...)
	}
	path := filepath.Join(t.TempDir(), "chain.pem")
	err := os.WriteFile(path, pemBytes, 0o644)
	test.AssertNotError(t, err, "writing chain file")

	certs, err := loadChain(path)
	test.AssertNotError(t, err, "loading chain")
	test.AssertEquals(t, len(certs), 3)
	test.AssertByteEquals(t, certs[0].Raw, chain.leaf.Raw)
}

func TestLoadChainRejectsNonCertificates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.pem")
	err := os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: []byte{1}}), 0o644)
	test.AssertNotError(t, err, "writing key file")

	_, err = loadChain(path)
	test.AssertError(t, err, "expected error for non-certificate block")
	test.AssertContains(t, err.Error(), "EC PRIVATE KEY")
}

func TestLoadChainEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pem")
	err := os.WriteFile(path, nil, 0o644)
	test.AssertNotError(t, err, "writing empty file")

	_, err = loadChain(path)
	test.AssertError(t, err, "expected error for empty chain file")
}

func TestHostnameMatches(t *testing.T) {
	sans := []constraints.GeneralName{
		{Type: constraints.GeneralNameEmail, Bytes: []byte("user@example.com")},
		{Type: constraints.GeneralNameDNS, Bytes: []byte("www.example.com")},
		{Type: constraints.GeneralNameDNS, Bytes: []byte("*.wild.example.com")},
	}

	for _, tc := range []struct {
		hostname string
		want     bool
	}{
		{"www.example.com", true},
		{"WWW.Example.Com", true},
		{"mail.example.com", false},
		{"a.wild.example.com", true},
		{"a.b.wild.example.com", false},
		{"wild.example.com", false},
		{"user@example.com", false},
	} {
		test.AssertEquals(t, hostnameMatches(tc.hostname, sans), tc.want)
	}
}

func TestCheckPasses(t *testing.T) {
	c := newTestChecker(t, seclevel.Level3)
	chain := newTestChain(t, []string{"www.example.com"})

	err := c.check(chain.certs(), "www.example.com")
	test.AssertNotError(t, err, "chain should pass")
	test.AssertMetricWithLabelsEquals(t, c.checks, prometheus.Labels{"result": "ok"}, 1)
}

func TestCheckIDNAHostname(t *testing.T) {
	c := newTestChecker(t, seclevel.LevelNone)
	chain := newTestChain(t, []string{"xn--bcher-kva.example.com"})

	err := c.check(chain.certs(), "bücher.example.com")
	test.AssertNotError(t, err, "U-label hostname should normalize and match")
	test.AssertMetricWithLabelsEquals(t, c.checks, prometheus.Labels{"result": "ok"}, 1)
}

func TestCheckConstraintViolation(t *testing.T) {
	c := newTestChecker(t, seclevel.LevelNone)
	chain := newTestChain(t, []string{"www.example.org"})

	err := c.check(chain.certs(), "")
	test.AssertError(t, err, "out-of-tree chain should fail")
	test.AssertMetricWithLabelsEquals(t, c.checks, prometheus.Labels{"result": "permittedViolation"}, 1)
}

func TestCheckHostnameMismatch(t *testing.T) {
	c := newTestChecker(t, seclevel.LevelNone)
	chain := newTestChain(t, []string{"www.example.com"})

	err := c.check(chain.certs(), "mail.example.com")
	test.AssertError(t, err, "uncovered hostname should fail")
	test.AssertMetricWithLabelsEquals(t, c.checks, prometheus.Labels{"result": "hostnameMismatch"}, 1)
}

func TestCheckWeakKey(t *testing.T) {
	c := newTestChecker(t, seclevel.Level4)
	chain := newTestChain(t, []string{"www.example.com"})

	err := c.check(chain.certs(), "")
	test.AssertError(t, err, "P-256 keys should not satisfy level 4")
	test.AssertMetricWithLabelsEquals(t, c.checks, prometheus.Labels{"result": "weakKey"}, 1)
}
