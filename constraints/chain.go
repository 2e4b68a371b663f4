package constraints

import (
	cerrors "github.com/cairnpki/cairn/errors"
)

// Ceilings on the work an adversarial chain can make us do. Exceeding
// either is reported as an out-of-resources failure.
const (
	maxChainNames       = 512
	maxChainConstraints = 512
)

// check tests every accumulated name against one certificate's
// permitted and excluded constraint sets. A name matching any excluded
// entry fails. A name whose type appears among the permitted entries
// must match at least one of them; if no permitted entry of that type
// exists, the name is implicitly allowed.
func check(names, permitted, excluded *NameSet) error {
	for _, name := range names.Names() {
		for _, constraint := range excluded.Names() {
			if Match(name, constraint) {
				return cerrors.ExcludedViolationError(
					"%s name %q matches an excluded constraint", name.Type(), name)
			}
		}

		permittedSeen := false
		permittedMatched := false
		for _, constraint := range permitted.Names() {
			if constraint.Type() == name.Type() {
				permittedSeen = true
			}
			if Match(name, constraint) {
				permittedMatched = true
				break
			}
		}
		if permittedSeen && !permittedMatched {
			return cerrors.PermittedViolationError(
				"%s name %q matches no permitted constraint", name.Type(), name)
		}
	}
	return nil
}

// CheckChain walks a verified certificate chain, ordered from the leaf
// at index 0 toward the root, and validates the name constraints in
// the chain: the names of every certificate must satisfy the
// NameConstraints of every issuer above it.
//
// On failure the returned error is a *cerrors.CairnError carrying the
// error kind and the chain depth at which the failure was detected.
func CheckChain(chain []Cert) error {
	if len(chain) == 0 {
		return cerrors.At(cerrors.MalformedError("empty certificate chain"), 0)
	}
	// A chain of one is a self-signed leaf; there are no issuer
	// constraints to apply.
	if len(chain) == 1 {
		return nil
	}

	names := NewNameSet()
	if err := ExtractNames(names, chain[0], true); err != nil {
		return cerrors.At(err, 0)
	}

	constraintsCount := 0
	for i := 1; i < len(chain); i++ {
		cert := chain[i]
		if cert.NameConstraints() != nil {
			permitted, excluded, err := ExtractConstraints(cert)
			if err != nil {
				return cerrors.At(err, i)
			}
			constraintsCount += permitted.Len() + excluded.Len()
			if constraintsCount > maxChainConstraints {
				return cerrors.At(cerrors.OutOfResourcesError(
					"more than %d constraints in chain", maxChainConstraints), i)
			}
			if err := check(names, permitted, excluded); err != nil {
				return cerrors.At(err, i)
			}
		}
		if err := ExtractNames(names, cert, false); err != nil {
			return cerrors.At(err, i)
		}
		if names.Len() > maxChainNames {
			return cerrors.At(cerrors.OutOfResourcesError(
				"more than %d names in chain", maxChainNames), i)
		}
	}
	return nil
}
