// Package seclevel implements security-level policy for certificate
// chains. A level from 0 to 5 maps to a minimum number of security
// bits, and a Policy decides whether individual keys and signature
// digests clear that minimum.
package seclevel

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"
)

// Level is a security level from 0 through 5. Values outside that
// range are clamped when converted to minimum bits.
type Level int

const (
	// LevelNone imposes no minimum.
	LevelNone Level = 0
	// Level1 through Level5 correspond to 80, 112, 128, 192 and 256
	// bits of security.
	Level1 Level = 1
	Level2 Level = 2
	Level3 Level = 3
	Level4 Level = 4
	Level5 Level = 5
)

var minimumBits = [...]int{0, 80, 112, 128, 192, 256}

// clamp bounds a level to the supported range.
func (l Level) clamp() Level {
	if l < LevelNone {
		return LevelNone
	}
	if l > Level5 {
		return Level5
	}
	return l
}

// MinimumBits returns the number of security bits a key or digest must
// provide to satisfy the level.
func (l Level) MinimumBits() int {
	return minimumBits[l.clamp()]
}

// Operation identifies what a Policy is being asked about.
type Operation int

const (
	// OpKeyStrength asks whether a public key is strong enough.
	OpKeyStrength Operation = iota
	// OpSignatureDigest asks whether a signature digest is strong
	// enough.
	OpSignatureDigest
)

// Callback allows a caller to override individual policy decisions.
// Returning true permits the operation regardless of the level's
// minimum. The bits argument is the measured strength of the key or
// digest under consideration.
type Callback func(op Operation, level Level, bits int) bool

// Policy is an immutable security policy. The zero value permits
// everything.
type Policy struct {
	level    Level
	override Callback
}

// NewPolicy returns a Policy enforcing the given level. The optional
// override, when non-nil, is consulted instead of the minimum-bits
// comparison.
func NewPolicy(level Level, override Callback) Policy {
	return Policy{level: level.clamp(), override: override}
}

// Level returns the policy's clamped level.
func (p Policy) Level() Level {
	return p.level
}

// Permits reports whether an operation measured at the given number of
// security bits satisfies the policy.
func (p Policy) Permits(op Operation, bits int) bool {
	if p.override != nil {
		return p.override(op, p.level, bits)
	}
	return bits >= p.level.MinimumBits()
}

// PermitsKey reports whether a public key satisfies the policy.
func (p Policy) PermitsKey(pub crypto.PublicKey) error {
	bits, err := KeyStrength(pub)
	if err != nil {
		return err
	}
	if !p.Permits(OpKeyStrength, bits) {
		return fmt.Errorf("key provides %d bits of security, level %d requires %d",
			bits, p.level, p.level.MinimumBits())
	}
	return nil
}

// KeyStrength measures a public key in security bits. RSA moduli map
// to the NIST equivalences used by TLS security levels, ECDSA keys
// count half the field size, and Ed25519 keys count 128.
func KeyStrength(pub crypto.PublicKey) (int, error) {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		bits := k.N.BitLen()
		switch {
		case bits >= 15360:
			return 256, nil
		case bits >= 7680:
			return 192, nil
		case bits >= 3072:
			return 128, nil
		case bits >= 2048:
			return 112, nil
		case bits >= 1024:
			return 80, nil
		default:
			return 0, nil
		}
	case *ecdsa.PublicKey:
		return k.Curve.Params().BitSize / 2, nil
	case ed25519.PublicKey:
		return 128, nil
	default:
		return 0, fmt.Errorf("unsupported public key type %T", pub)
	}
}
