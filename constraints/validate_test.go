package constraints

import (
	"strings"
	"testing"
)

func TestValidHost(t *testing.T) {
	cases := []struct {
		host  string
		valid bool
	}{
		{"www.example.com", true},
		{"example.com", true},
		{"eXaMpLe.CoM", true},
		{"x", true},
		{"under_score.example.com", true},
		{"a-b.example.com", true},
		{strings.Repeat("a", 63) + ".example.com", true},

		{"", false},
		{"*", false},
		{"*.example.com", false},
		{".example.com", false},
		{"example.com.", false},
		{"-example.com", false},
		{"example-.com", false},
		{"example.-com", false},
		{"example.com-", false},
		{"exa..mple.com", false},
		{"exam ple.com", false},
		{"ex\x00ample.com", false},
		{"éxample.com", false},
		{strings.Repeat("a", 64) + ".example.com", false},
		{strings.Repeat("a.", 127) + strings.Repeat("a", 64), false},

		// Literal addresses are not hostnames.
		{"10.0.0.1", false},
		{"192.168.1.1", false},
		{"::1", false},
		{"2001:db8::1", false},
	}
	for _, tc := range cases {
		if got := ValidHost([]byte(tc.host)); got != tc.valid {
			t.Errorf("ValidHost(%q) = %v, want %v", tc.host, got, tc.valid)
		}
	}
}

func TestValidHostLengthCap(t *testing.T) {
	// 255 bytes of labels passes; 256 does not.
	label := strings.Repeat("a", 62)
	name := label + "." + label + "." + label + "." + label + "." + "aaa" // 4*63 + 3 = 255
	if len(name) != 255 {
		t.Fatalf("test name is %d bytes, want 255", len(name))
	}
	if !ValidHost([]byte(name)) {
		t.Errorf("ValidHost rejected a 255-byte name")
	}
	if ValidHost([]byte(name + "a")) {
		t.Errorf("ValidHost accepted a 256-byte name")
	}
}

func TestValidDomain(t *testing.T) {
	cases := []struct {
		domain string
		valid  bool
	}{
		{"example.com", true},
		{".example.com", true},
		{".ab", true},
		{"10.0.0.1", true}, // domains are not checked for address syntax

		{"", false},
		{".a", false},
		{".", false},
		{"*.example.com", false},
		{"*", false},
	}
	for _, tc := range cases {
		if got := ValidDomain([]byte(tc.domain)); got != tc.valid {
			t.Errorf("ValidDomain(%q) = %v, want %v", tc.domain, got, tc.valid)
		}
	}
}

func TestValidSANDNS(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
	}{
		{"www.example.com", true},
		{"*.example.com", true},
		{"*.ab", true},

		{"", false},
		{".example.com", false},
		{"*", false},
		{"*.", false},
		{"*.a", false},
		{"*example.com", false},
		{"w*.example.com", false},
		{"www.*.com", false},
	}
	for _, tc := range cases {
		if got := ValidSANDNS([]byte(tc.name)); got != tc.valid {
			t.Errorf("ValidSANDNS(%q) = %v, want %v", tc.name, got, tc.valid)
		}
	}
}

func TestValidDomainConstraint(t *testing.T) {
	cases := []struct {
		constraint string
		valid      bool
	}{
		// The empty constraint matches everything, so it is valid here
		// even though ValidDomain and ValidHost reject empty input.
		{"", true},
		{"example.com", true},
		{".example.com", true},
		{".ab", true},

		{".a", false},
		{"*.example.com", false},
		{"*", false},
		{"example.com.", false},
	}
	for _, tc := range cases {
		if got := ValidDomainConstraint([]byte(tc.constraint)); got != tc.valid {
			t.Errorf("ValidDomainConstraint(%q) = %v, want %v", tc.constraint, got, tc.valid)
		}
	}
}

func TestParseMailbox(t *testing.T) {
	cases := []struct {
		input  string
		local  string
		domain string
	}{
		{"user@example.com", "user", "example.com"},
		{"postmaster@mail.example.com", "postmaster", "mail.example.com"},
		{"us.er@example.com", "us.er", "example.com"},
		{"user+tag@example.com", "user+tag", "example.com"},
		{`"quoted user"@example.com`, `"quoted user"`, "example.com"},
		{`"quoted\"escape"@example.com`, `"quoted"escape"`, "example.com"},
		// An escape outside a quoted string drops the backslash but
		// keeps the escaped character.
		{`us\er@example.com`, "user", "example.com"},
		{strings.Repeat("a", 64) + "@example.com", strings.Repeat("a", 64), "example.com"},
	}
	for _, tc := range cases {
		mailbox, ok := ParseMailbox([]byte(tc.input))
		if !ok {
			t.Errorf("ParseMailbox(%q) failed, expected success", tc.input)
			continue
		}
		if mailbox.Type() != TypeEmail {
			t.Errorf("ParseMailbox(%q) returned type %s", tc.input, mailbox.Type())
		}
		if mailbox.local != tc.local || mailbox.host != tc.domain {
			t.Errorf("ParseMailbox(%q) = %q @ %q, want %q @ %q",
				tc.input, mailbox.local, mailbox.host, tc.local, tc.domain)
		}
	}
}

func TestParseMailboxFailures(t *testing.T) {
	bad := []string{
		"",
		"user",
		"user@",
		"@example.com",
		".user@example.com",
		"user@.example.com",
		"user@example.com.",
		"user@exa mple.com",
		"user@10.0.0.1",
		"us er@example.com",
		"user@b@example.com",
		`"unterminated@example.com`,
		`"quoted"x@example.com`,
		"\"tab\there\"@example.com",
		"user\r@example.com",
		"user\n@example.com",
		`trailing\`,
		"üser@example.com",
		strings.Repeat("a", 65) + "@example.com",
		"user@" + strings.Repeat("a.", 130) + "com",
		strings.Repeat("a", 64) + "@" + strings.Repeat("b", 256),
	}
	for _, input := range bad {
		if _, ok := ParseMailbox([]byte(input)); ok {
			t.Errorf("ParseMailbox(%q) succeeded, expected failure", input)
		}
	}
}

func TestURIHost(t *testing.T) {
	cases := []struct {
		uri  string
		host string
	}{
		{"https://www.example.com", "www.example.com"},
		{"https://user@host.example.com:443/path", "host.example.com"},
		{"http://example.com/a?b#c", "example.com"},
		{"//example.com", "example.com"},
		{"ftp://example.com#frag", "example.com"},
		{"spiffe://trust.example.com/workload", "trust.example.com"},
	}
	for _, tc := range cases {
		host, ok := URIHost([]byte(tc.uri))
		if !ok {
			t.Errorf("URIHost(%q) failed, expected success", tc.uri)
			continue
		}
		if host != tc.host {
			t.Errorf("URIHost(%q) = %q, want %q", tc.uri, host, tc.host)
		}
	}
}

func TestURIHostFailures(t *testing.T) {
	bad := []string{
		"",
		"//",
		"/x",
		"https:example.com",
		"https://",
		"https:///path",
		"https://a@b@example.com/",
		"https://:443",
		"https://*.example.com",
		"https://.example.com",
		"https://10.0.0.1/",
		"https://éxample.com",
		"https://exa mple.com",
	}
	for _, uri := range bad {
		if host, ok := URIHost([]byte(uri)); ok {
			t.Errorf("URIHost(%q) = %q, expected failure", uri, host)
		}
	}
}
