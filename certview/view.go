// Package certview adapts parsed X.509 certificates to the narrow
// accessor interface that the constraints package checks against. It
// re-walks the raw SubjectAltName and NameConstraints extensions with
// cryptobyte so that every GeneralName type is visible, including
// directoryName entries and the subtree depth bounds that crypto/x509
// drops during parsing.
package certview

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/cairnpki/cairn/constraints"
)

var (
	oidExtensionSubjectAltName  = asn1.ObjectIdentifier{2, 5, 29, 17}
	oidExtensionNameConstraints = asn1.ObjectIdentifier{2, 5, 29, 30}
	oidCommonName               = asn1.ObjectIdentifier{2, 5, 4, 3}
	oidEmailAddress             = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}
)

// View is the constraints.Cert view of a single parsed certificate.
type View struct {
	sans        []constraints.GeneralName
	subjectDER  []byte
	commonNames [][]byte
	emails      [][]byte
	nc          *constraints.NameConstraints
}

var _ constraints.Cert = (*View)(nil)

// New builds a View from a parsed certificate.
func New(cert *x509.Certificate) (*View, error) {
	v := &View{}

	if err := v.parseSubject(cert.RawSubject); err != nil {
		return nil, fmt.Errorf("parsing subject: %w", err)
	}

	for _, ext := range cert.Extensions {
		switch {
		case ext.Id.Equal(oidExtensionSubjectAltName):
			sans, err := parseGeneralNames(ext.Value)
			if err != nil {
				return nil, fmt.Errorf("parsing subjectAltName: %w", err)
			}
			v.sans = sans
		case ext.Id.Equal(oidExtensionNameConstraints):
			nc, err := parseNameConstraints(ext.Value)
			if err != nil {
				return nil, fmt.Errorf("parsing nameConstraints: %w", err)
			}
			v.nc = nc
		}
	}
	return v, nil
}

// NewChain builds views for an ordered certificate chain (leaf first),
// ready to hand to constraints.CheckChain.
func NewChain(certs []*x509.Certificate) ([]constraints.Cert, error) {
	chain := make([]constraints.Cert, 0, len(certs))
	for i, cert := range certs {
		view, err := New(cert)
		if err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i, err)
		}
		chain = append(chain, view)
	}
	return chain, nil
}

func (v *View) SubjectAltNames() []constraints.GeneralName { return v.sans }

func (v *View) SubjectDER() []byte { return v.subjectDER }

func (v *View) SubjectCommonNames() [][]byte { return v.commonNames }

func (v *View) SubjectEmailAddresses() [][]byte { return v.emails }

func (v *View) NameConstraints() *constraints.NameConstraints { return v.nc }

func (v *View) parseSubject(rawSubject []byte) error {
	var rdns pkix.RDNSequence
	rest, err := asn1.Unmarshal(rawSubject, &rdns)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return errors.New("trailing data after subject")
	}
	if len(rdns) == 0 {
		return nil
	}

	v.subjectDER = append([]byte(nil), rawSubject...)
	for _, rdn := range rdns {
		for _, atv := range rdn {
			value, ok := atv.Value.(string)
			if !ok {
				continue
			}
			switch {
			case atv.Type.Equal(oidCommonName):
				v.commonNames = append(v.commonNames, []byte(value))
			case atv.Type.Equal(oidEmailAddress):
				v.emails = append(v.emails, []byte(value))
			}
		}
	}
	return nil
}

// generalNameFromTag classifies one tagged GeneralName CHOICE element.
// For directoryName entries the tag is explicit, so contents is the
// complete DER encoding of the inner Name.
func generalNameFromTag(tag cryptobyte_asn1.Tag, contents []byte) (constraints.GeneralName, error) {
	if tag&0xc0 != 0x80 {
		return constraints.GeneralName{}, fmt.Errorf("GeneralName with non-context-specific tag %#x", uint8(tag))
	}
	number := int(tag & 0x1f)
	if number > int(constraints.GeneralNameRegisteredID) {
		return constraints.GeneralName{}, fmt.Errorf("GeneralName with unknown tag %d", number)
	}
	return constraints.GeneralName{
		Type:  constraints.GeneralNameType(number),
		Bytes: append([]byte(nil), contents...),
	}, nil
}

func parseGeneralNames(der []byte) ([]constraints.GeneralName, error) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) || !input.Empty() {
		return nil, errors.New("invalid GeneralNames sequence")
	}

	var names []constraints.GeneralName
	for !seq.Empty() {
		var entry cryptobyte.String
		var tag cryptobyte_asn1.Tag
		if !seq.ReadAnyASN1(&entry, &tag) {
			return nil, errors.New("truncated GeneralName")
		}
		gn, err := generalNameFromTag(tag, entry)
		if err != nil {
			return nil, err
		}
		names = append(names, gn)
	}
	return names, nil
}

func parseSubtrees(list cryptobyte.String) ([]constraints.Subtree, error) {
	var subtrees []constraints.Subtree
	for !list.Empty() {
		var st cryptobyte.String
		if !list.ReadASN1(&st, cryptobyte_asn1.SEQUENCE) {
			return nil, errors.New("invalid GeneralSubtree")
		}

		var entry cryptobyte.String
		var tag cryptobyte_asn1.Tag
		if !st.ReadAnyASN1(&entry, &tag) {
			return nil, errors.New("truncated GeneralSubtree base")
		}
		base, err := generalNameFromTag(tag, entry)
		if err != nil {
			return nil, err
		}

		minimum := 0
		maximum := -1
		if !st.ReadOptionalASN1Integer(&minimum, cryptobyte_asn1.Tag(0).ContextSpecific(), 0) {
			return nil, errors.New("invalid GeneralSubtree minimum")
		}
		if !st.ReadOptionalASN1Integer(&maximum, cryptobyte_asn1.Tag(1).ContextSpecific(), -1) {
			return nil, errors.New("invalid GeneralSubtree maximum")
		}
		if !st.Empty() {
			return nil, errors.New("trailing data in GeneralSubtree")
		}

		subtrees = append(subtrees, constraints.Subtree{
			Base:    base,
			Minimum: minimum,
			Maximum: maximum,
		})
	}
	return subtrees, nil
}

func parseNameConstraints(der []byte) (*constraints.NameConstraints, error) {
	input := cryptobyte.String(der)
	var outer cryptobyte.String
	if !input.ReadASN1(&outer, cryptobyte_asn1.SEQUENCE) || !input.Empty() {
		return nil, errors.New("invalid NameConstraints sequence")
	}

	nc := &constraints.NameConstraints{}

	var permitted, excluded cryptobyte.String
	var havePermitted, haveExcluded bool
	if !outer.ReadOptionalASN1(&permitted, &havePermitted, cryptobyte_asn1.Tag(0).ContextSpecific().Constructed()) {
		return nil, errors.New("invalid permitted subtrees")
	}
	if !outer.ReadOptionalASN1(&excluded, &haveExcluded, cryptobyte_asn1.Tag(1).ContextSpecific().Constructed()) {
		return nil, errors.New("invalid excluded subtrees")
	}
	if !outer.Empty() {
		return nil, errors.New("trailing data in NameConstraints")
	}

	var err error
	if havePermitted {
		if nc.Permitted, err = parseSubtrees(permitted); err != nil {
			return nil, err
		}
	}
	if haveExcluded {
		if nc.Excluded, err = parseSubtrees(excluded); err != nil {
			return nil, err
		}
	}
	return nc, nil
}

// isConstructed reports whether a GeneralName type is DER-encoded as a
// constructed element.
func isConstructed(typ constraints.GeneralNameType) bool {
	switch typ {
	case constraints.GeneralNameOther,
		constraints.GeneralNameX400,
		constraints.GeneralNameDirName,
		constraints.GeneralNameEDIParty:
		return true
	}
	return false
}

func addSubtrees(b *cryptobyte.Builder, subtrees []constraints.Subtree) {
	for _, st := range subtrees {
		st := st
		b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			tag := cryptobyte_asn1.Tag(uint8(st.Base.Type)).ContextSpecific()
			if isConstructed(st.Base.Type) {
				tag = tag.Constructed()
			}
			b.AddASN1(tag, func(b *cryptobyte.Builder) {
				b.AddBytes(st.Base.Bytes)
			})
			if st.Minimum != 0 {
				b.AddASN1Int64WithTag(int64(st.Minimum), cryptobyte_asn1.Tag(0).ContextSpecific())
			}
			if st.Maximum >= 0 {
				b.AddASN1Int64WithTag(int64(st.Maximum), cryptobyte_asn1.Tag(1).ContextSpecific())
			}
		})
	}
}

// MarshalNameConstraints builds a NameConstraints extension from typed
// subtrees. It is primarily useful when generating CA certificates for
// tests, since crypto/x509 templates cannot express directoryName
// subtrees or depth bounds.
func MarshalNameConstraints(nc *constraints.NameConstraints, critical bool) (pkix.Extension, error) {
	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		if len(nc.Permitted) > 0 {
			b.AddASN1(cryptobyte_asn1.Tag(0).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
				addSubtrees(b, nc.Permitted)
			})
		}
		if len(nc.Excluded) > 0 {
			b.AddASN1(cryptobyte_asn1.Tag(1).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
				addSubtrees(b, nc.Excluded)
			})
		}
	})
	der, err := b.Bytes()
	if err != nil {
		return pkix.Extension{}, err
	}
	return pkix.Extension{
		Id:       oidExtensionNameConstraints,
		Critical: critical,
		Value:    der,
	}, nil
}

// MarshalGeneralNames builds a SubjectAltName extension from typed
// entries, complementing MarshalNameConstraints for test certificate
// generation.
func MarshalGeneralNames(names []constraints.GeneralName, critical bool) (pkix.Extension, error) {
	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, gn := range names {
			gn := gn
			tag := cryptobyte_asn1.Tag(uint8(gn.Type)).ContextSpecific()
			if isConstructed(gn.Type) {
				tag = tag.Constructed()
			}
			b.AddASN1(tag, func(b *cryptobyte.Builder) {
				b.AddBytes(gn.Bytes)
			})
		}
	})
	der, err := b.Bytes()
	if err != nil {
		return pkix.Extension{}, err
	}
	return pkix.Extension{
		Id:       oidExtensionSubjectAltName,
		Critical: critical,
		Value:    der,
	}, nil
}
