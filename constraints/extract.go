package constraints

import (
	cerrors "github.com/cairnpki/cairn/errors"
)

// GeneralNameType is an RFC 5280 GeneralName CHOICE tag.
type GeneralNameType int

const (
	GeneralNameOther GeneralNameType = iota
	GeneralNameEmail
	GeneralNameDNS
	GeneralNameX400
	GeneralNameDirName
	GeneralNameEDIParty
	GeneralNameURI
	GeneralNameIP
	GeneralNameRegisteredID
)

// GeneralName is a single SAN entry or constraint subtree base, as
// handed to us by the certificate-decoding layer.
type GeneralName struct {
	Type GeneralNameType

	// Bytes holds the raw name: ASCII text for DNS, email and URI
	// names, the DER-encoded X.501 Name for directory names, and the
	// raw address bytes (address then mask, for constraints) for IP
	// names.
	Bytes []byte
}

// Subtree is one permitted or excluded entry of a NameConstraints
// extension.
type Subtree struct {
	Base GeneralName

	// Minimum and Maximum are the subtree's optional depth bounds.
	// Minimum defaults to zero; a negative Maximum means absent.
	// Non-default bounds are unsupported and rejected.
	Minimum int
	Maximum int
}

// NameConstraints is a decoded NameConstraints extension.
type NameConstraints struct {
	Permitted []Subtree
	Excluded  []Subtree
}

// Cert is the narrow view of a decoded certificate needed for name
// constraint checking. It decouples this package from any particular
// certificate-decoding representation; certview provides the standard
// implementation.
type Cert interface {
	// SubjectAltNames returns the certificate's SAN entries in order.
	SubjectAltNames() []GeneralName
	// SubjectDER returns the DER encoding of the subject Name, or nil
	// if the subject is empty.
	SubjectDER() []byte
	// SubjectCommonNames returns the raw values of the subject's
	// commonName attributes.
	SubjectCommonNames() [][]byte
	// SubjectEmailAddresses returns the raw values of the subject's
	// emailAddress attributes.
	SubjectEmailAddresses() [][]byte
	// NameConstraints returns the certificate's NameConstraints
	// extension, or nil if absent.
	NameConstraints() *NameConstraints
}

// ExtractNames extracts the identities relevant for constraint
// checking from cert, validates them, and adds them to names.
//
// A DNS SAN entry disables the later use of subject common names as
// fallback hostnames; an email SAN entry likewise disables fallback
// extraction of subject email attributes. Both fallbacks apply only to
// the leaf certificate.
func ExtractNames(names *NameSet, cert Cert, isLeaf bool) error {
	includeCN := isLeaf
	includeEmail := isLeaf

	for _, gn := range cert.SubjectAltNames() {
		switch gn.Type {
		case GeneralNameDNS:
			if !ValidSANDNS(gn.Bytes) {
				return cerrors.NameSyntaxError("invalid SAN DNS name %q", gn.Bytes)
			}
			names.Add(newDNSName(string(gn.Bytes)))
			// Don't use the CN from the subject.
			includeCN = false
		case GeneralNameEmail:
			mailbox, ok := ParseMailbox(gn.Bytes)
			if !ok {
				return cerrors.NameSyntaxError("invalid SAN email address %q", gn.Bytes)
			}
			names.Add(mailbox)
			// Don't use email addresses from the subject.
			includeEmail = false
		case GeneralNameURI:
			host, ok := URIHost(gn.Bytes)
			if !ok {
				return cerrors.NameSyntaxError("invalid SAN URI %q", gn.Bytes)
			}
			names.Add(newURIName(host))
		case GeneralNameDirName:
			if len(gn.Bytes) == 0 {
				return cerrors.NameSyntaxError("empty SAN directory name")
			}
			names.Add(newDirName(gn.Bytes))
		case GeneralNameIP:
			if len(gn.Bytes) != 4 && len(gn.Bytes) != 16 {
				return cerrors.NameSyntaxError("SAN IP address of invalid length %d", len(gn.Bytes))
			}
			names.Add(newIPName(gn.Bytes))
		default:
			// Ignore this name.
		}
	}

	subject := cert.SubjectDER()
	if len(subject) == 0 {
		return nil
	}

	// This cert has a non-empty subject, so we must add the subject as
	// a dirname to be compared against any dirname constraints.
	names.Add(newDirName(subject))

	// Get any email addresses from the subject line and add them as
	// mailbox names to be compared against any email constraints.
	if includeEmail {
		for _, email := range cert.SubjectEmailAddresses() {
			mailbox, ok := ParseMailbox(email)
			if !ok {
				return cerrors.NameSyntaxError("invalid subject email address %q", email)
			}
			names.Add(mailbox)
		}
	}

	// Include the CN as a hostname to be checked against name
	// constraints if it looks like a hostname.
	if includeCN {
		for _, cn := range cert.SubjectCommonNames() {
			if !ValidHost(cn) {
				// Ignore it if not a hostname.
				continue
			}
			names.Add(newDNSName(string(cn)))
		}
	}

	return nil
}

// validateConstraint validates a single subtree base and normalizes it
// into a Name. A base whose general-name type is unrecognized
// contributes nothing: the result is (nil, nil).
func validateConstraint(base GeneralName) (*Name, error) {
	switch base.Type {
	case GeneralNameDirName:
		if len(base.Bytes) == 0 {
			return nil, cerrors.ConstraintSyntaxError("empty directory name constraint")
		}
		return newDirName(base.Bytes), nil
	case GeneralNameDNS:
		if !ValidDomainConstraint(base.Bytes) {
			return nil, cerrors.ConstraintSyntaxError("invalid DNS constraint %q", base.Bytes)
		}
		return newDNSName(string(base.Bytes)), nil
	case GeneralNameEmail:
		if containsAt(base.Bytes) {
			mailbox, ok := ParseMailbox(base.Bytes)
			if !ok {
				return nil, cerrors.ConstraintSyntaxError("invalid email constraint %q", base.Bytes)
			}
			return mailbox, nil
		}
		if !ValidDomainConstraint(base.Bytes) {
			return nil, cerrors.ConstraintSyntaxError("invalid email constraint %q", base.Bytes)
		}
		return newEmailName("", string(base.Bytes)), nil
	case GeneralNameIP:
		// Constraints are address then mask.
		if len(base.Bytes) != 8 && len(base.Bytes) != 32 {
			return nil, cerrors.ConstraintSyntaxError("IP constraint of invalid length %d", len(base.Bytes))
		}
		return newIPName(base.Bytes), nil
	case GeneralNameURI:
		if !ValidDomainConstraint(base.Bytes) {
			return nil, cerrors.ConstraintSyntaxError("invalid URI constraint %q", base.Bytes)
		}
		return newURIName(string(base.Bytes)), nil
	default:
		return nil, nil
	}
}

func containsAt(b []byte) bool {
	for _, c := range b {
		if c == '@' {
			return true
		}
	}
	return false
}

// ExtractConstraints reads cert's NameConstraints extension, if
// present, into validated permitted and excluded name sets. Absence of
// the extension yields empty sets. Subtrees carrying non-default
// minimum or maximum depth bounds are rejected.
func ExtractConstraints(cert Cert) (permitted, excluded *NameSet, err error) {
	permitted = NewNameSet()
	excluded = NewNameSet()

	nc := cert.NameConstraints()
	if nc == nil {
		return permitted, excluded, nil
	}

	for _, subtree := range nc.Permitted {
		if subtree.Minimum != 0 || subtree.Maximum >= 0 {
			return nil, nil, cerrors.SubtreeMinMaxError("permitted subtree with depth bounds")
		}
		name, err := validateConstraint(subtree.Base)
		if err != nil {
			return nil, nil, err
		}
		if name == nil {
			continue
		}
		permitted.Add(name)
	}

	for _, subtree := range nc.Excluded {
		if subtree.Minimum != 0 || subtree.Maximum >= 0 {
			return nil, nil, cerrors.SubtreeMinMaxError("excluded subtree with depth bounds")
		}
		name, err := validateConstraint(subtree.Base)
		if err != nil {
			return nil, nil, err
		}
		if name == nil {
			continue
		}
		excluded.Add(name)
	}

	return permitted, excluded, nil
}
