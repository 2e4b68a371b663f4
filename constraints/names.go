// Package constraints implements RFC 5280 name-constraint validation
// for X.509 certificate chains: syntactic validation of DNS names,
// mailboxes, URI hosts and IP addresses, extraction of those identities
// from certificates, and the leaf-to-root chain walk that tests every
// extracted identity against the NameConstraints asserted by issuing
// CAs.
package constraints

import (
	"fmt"
	"net"
)

// NameType identifies the kind of identity a Name carries.
type NameType int

const (
	// TypeDNS is a DNS hostname.
	TypeDNS NameType = iota + 1
	// TypeEmail is an RFC 2821 mailbox, or a domain-only email
	// constraint.
	TypeEmail
	// TypeURI is the host part of a URI.
	TypeURI
	// TypeDirName is a DER-encoded X.501 directory name.
	TypeDirName
	// TypeIP is an IP address, or an address-and-mask constraint.
	TypeIP
)

func (t NameType) String() string {
	switch t {
	case TypeDNS:
		return "DNS"
	case TypeEmail:
		return "email"
	case TypeURI:
		return "URI"
	case TypeDirName:
		return "directory name"
	case TypeIP:
		return "IP address"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Name is a single validated identity extracted from a certificate, or
// a single validated constraint extracted from a NameConstraints
// subtree. Names are immutable once constructed: the byte content has
// already passed the corresponding syntax validator, so the matcher and
// chain checker only ever compare, never re-validate.
type Name struct {
	typ NameType

	// host is the hostname for DNS names, the host part for URI names,
	// and the domain part for email names.
	host string
	// local is the local part of an email name. It is empty for
	// domain-only email constraints; a parsed mailbox always has a
	// non-empty local part.
	local string
	// der is the DER encoding of a directory name.
	der []byte
	// addr holds 4 or 16 address bytes for an IP name, or 8 or 32
	// address-then-mask bytes for an IP constraint.
	addr []byte
}

// Type returns the kind of identity the name carries.
func (n *Name) Type() NameType {
	return n.typ
}

// String renders the name for diagnostics.
func (n *Name) String() string {
	switch n.typ {
	case TypeDNS, TypeURI:
		return n.host
	case TypeEmail:
		if n.local == "" {
			return n.host
		}
		return n.local + "@" + n.host
	case TypeDirName:
		return fmt.Sprintf("dirname:%x", n.der)
	case TypeIP:
		switch len(n.addr) {
		case net.IPv4len, net.IPv6len:
			return net.IP(n.addr).String()
		case 2 * net.IPv4len, 2 * net.IPv6len:
			half := len(n.addr) / 2
			return fmt.Sprintf("%s/%s", net.IP(n.addr[:half]), net.IP(n.addr[half:]))
		}
	}
	return fmt.Sprintf("invalid name type %d", int(n.typ))
}

// Dup returns a deep copy of the name, so ownership can move between
// accumulation buffers without sharing backing storage.
func (n *Name) Dup() *Name {
	dup := &Name{
		typ:   n.typ,
		host:  n.host,
		local: n.local,
	}
	if n.der != nil {
		dup.der = append([]byte(nil), n.der...)
	}
	if n.addr != nil {
		dup.addr = append([]byte(nil), n.addr...)
	}
	return dup
}

func newDNSName(host string) *Name {
	return &Name{typ: TypeDNS, host: host}
}

func newEmailName(local, domain string) *Name {
	return &Name{typ: TypeEmail, local: local, host: domain}
}

func newURIName(host string) *Name {
	return &Name{typ: TypeURI, host: host}
}

func newDirName(der []byte) *Name {
	return &Name{typ: TypeDirName, der: append([]byte(nil), der...)}
}

func newIPName(addr []byte) *Name {
	return &Name{typ: TypeIP, addr: append([]byte(nil), addr...)}
}

// NameSet is an ordered, growable collection of names. Insertion order
// is irrelevant to the matching semantics but preserved for
// determinism. Duplicates are allowed; they are matched independently.
type NameSet struct {
	names []*Name
}

// NewNameSet returns an empty name set.
func NewNameSet() *NameSet {
	return &NameSet{}
}

// Add appends a name to the set.
func (s *NameSet) Add(name *Name) {
	s.names = append(s.names, name)
}

// Len returns the number of names in the set.
func (s *NameSet) Len() int {
	return len(s.names)
}

// Names returns the names in insertion order. The returned slice is
// shared with the set and must not be modified.
func (s *NameSet) Names() []*Name {
	return s.names
}

// Dup returns a deep copy of the set.
func (s *NameSet) Dup() *NameSet {
	dup := &NameSet{names: make([]*Name, 0, len(s.names))}
	for _, name := range s.names {
		dup.names = append(dup.names, name.Dup())
	}
	return dup
}
