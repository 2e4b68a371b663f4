package constraints

import "net"

// RFC 2821 section 4.5.3.1
const (
	localPartMaxLen  = 64
	domainPartMaxLen = 255
)

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

// validDomainInternal checks that name contains only a hostname
// consisting of RFC 5890 compliant A-labels (see RFC 6066 section 3).
// It is more permissive than a strict hostname check to allow for a
// leading '*' for a SAN DNS wildcard, or a leading '.' for a
// subdomain-based constraint, as well as allowing '_' which is commonly
// accepted by nonconformant DNS implementations.
func validDomainInternal(name []byte) bool {
	if len(name) > domainPartMaxLen {
		return false
	}

	var prev, c byte
	component := 0
	for i := 0; i < len(name); i++ {
		prev = c
		c = name[i]
		first := i == 0

		// Everything has to be ASCII, with no NUL byte.
		if c >= 0x80 || c == 0 {
			return false
		}
		// It must be alphanumeric, a '-', '.', '_' or '*'.
		if !isAlnum(c) && c != '-' && c != '.' && c != '_' && c != '*' {
			return false
		}

		// '*' can only be the first thing.
		if c == '*' && !first {
			return false
		}

		// '-' must not start a component or be at the end.
		if c == '-' && (component == 0 || i == len(name)-1) {
			return false
		}

		// '.' must not be at the end. It may be first overall but must
		// not otherwise start a component.
		if c == '.' && ((component == 0 && !first) || i == len(name)-1) {
			return false
		}

		if c == '.' {
			// Components can not end with a dash.
			if prev == '-' {
				return false
			}
			// Start new component.
			component = 0
			continue
		}
		// Components must be 63 chars or less.
		component++
		if component > 63 {
			return false
		}
	}
	return true
}

// ValidDomain reports whether name is a syntactically valid domain
// name, where a leading '.' marks a subdomain constraint.
func ValidDomain(name []byte) bool {
	if len(name) == 0 {
		return false
	}
	// Wildcards are not allowed in a domain name.
	if name[0] == '*' {
		return false
	}
	// A domain may not be less than two characters, so you can't have
	// a required subdomain name with less than that.
	if len(name) < 3 && name[0] == '.' {
		return false
	}
	return validDomainInternal(name)
}

// ValidHost reports whether name is a syntactically valid hostname.
// Hostnames and IP addresses are distinct name types, so anything that
// parses as a literal IPv4 or IPv6 address is rejected.
func ValidHost(name []byte) bool {
	if len(name) == 0 {
		return false
	}
	// Wildcards and leading dots are not allowed in a hostname.
	if name[0] == '*' || name[0] == '.' {
		return false
	}
	if net.ParseIP(string(name)) != nil {
		return false
	}
	return validDomainInternal(name)
}

// ValidSANDNS reports whether name is a syntactically valid SAN DNS
// entry, where a wildcard is permitted only as a leading "*." label.
func ValidSANDNS(name []byte) bool {
	if len(name) == 0 {
		return false
	}
	// A leading dot is not allowed in a SAN DNS name.
	if name[0] == '.' {
		return false
	}
	// A domain may not be less than two characters, so you can't
	// wildcard a single domain of less than that.
	if len(name) < 4 && name[0] == '*' {
		return false
	}
	// A wildcard may only be followed by a '.'.
	if len(name) >= 4 && name[0] == '*' && name[1] != '.' {
		return false
	}
	return validDomainInternal(name)
}

// ValidDomainConstraint reports whether constraint is a syntactically
// valid domain constraint. Unlike ValidDomain, the empty constraint is
// valid: it matches everything.
func ValidDomainConstraint(constraint []byte) bool {
	if len(constraint) == 0 {
		return true
	}
	// Wildcards are not allowed in a constraint.
	if constraint[0] == '*' {
		return false
	}
	// A domain may not be less than two characters, so you can't match
	// a single domain of less than that.
	if len(constraint) < 3 && constraint[0] == '.' {
		return false
	}
	return validDomainInternal(constraint)
}
