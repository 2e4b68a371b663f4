package constraints

import (
	"bytes"
	"strings"
)

// sandnsMatch reports whether constraint matches a SAN DNS name as a
// case-insensitive suffix, per the RFC 5280 sub-domain semantics. An
// empty constraint matches everything.
func sandnsMatch(name, constraint string) bool {
	if len(constraint) == 0 {
		return true
	}
	if len(name) < len(constraint) {
		return false
	}
	suffix := name[len(name)-len(constraint):]
	return strings.EqualFold(suffix, constraint)
}

// domainMatch matches a pre-validated domain against a pre-validated
// constraint.
//
// An empty constraint matches everything. A constraint starting with
// '.' must be a suffix of the domain. A domain starting with '.' must
// be a suffix of the constraint. Otherwise the two must match exactly,
// case-insensitively.
func domainMatch(domain, constraint string) bool {
	if len(constraint) == 0 {
		return true
	}

	if constraint[0] == '.' {
		// Match the end of the domain.
		if len(domain) < len(constraint) {
			return false
		}
		return strings.EqualFold(domain[len(domain)-len(constraint):], constraint)
	}
	if domain[0] == '.' {
		// Match the end of the constraint.
		if len(constraint) < len(domain) {
			return false
		}
		return strings.EqualFold(constraint[len(constraint)-len(domain):], domain)
	}
	// Otherwise we must exactly match the constraint.
	if len(domain) != len(constraint) {
		return false
	}
	return strings.EqualFold(domain, constraint)
}

// ipMatch matches an address name of 4 or 16 bytes against a
// constraint of 8 or 32 bytes, where the constraint's second half is
// the network mask.
func ipMatch(name, constraint *Name) bool {
	alen := len(name.addr)
	if alen != 4 && alen != 16 {
		return false
	}
	if len(constraint.addr) != 2*alen {
		return false
	}

	mask := constraint.addr[alen:]
	for i := 0; i < alen; i++ {
		if name.addr[i]&mask[i] != constraint.addr[i]&mask[i] {
			return false
		}
	}
	return true
}

// Match reports whether a validated name matches a validated
// constraint. Names and constraints of different types never match.
func Match(name, constraint *Name) bool {
	if name.typ != constraint.typ {
		return false
	}
	switch name.typ {
	case TypeDNS:
		return sandnsMatch(name.host, constraint.host)
	case TypeURI:
		return domainMatch(name.host, constraint.host)
	case TypeIP:
		return ipMatch(name, constraint)
	case TypeEmail:
		if constraint.local != "" {
			// The mailbox local and domain parts must exactly match.
			return name.local == constraint.local && name.host == constraint.host
		}
		// Otherwise match the constraint to the domain part.
		return domainMatch(name.host, constraint.host)
	case TypeDirName:
		return bytes.Equal(name.der, constraint.der)
	}
	return false
}
