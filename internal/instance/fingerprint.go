package instance

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/graphspan/splice/internal/attr"
)

// DomainInstance is the domain-separation prefix for instance
// fingerprints. The version suffix enables future algorithm migration.
const DomainInstance = "splice/instance/v1"

// Fingerprint computes a content address for the instance:
// SHA-256(domain + 0x00 + canonical JSON). Two instances with identical
// tables over the same schema fingerprint identically; construction order
// and aliasing are invisible. Requires a validated instance.
func (x *Instance) Fingerprint() (string, error) {
	canonical, err := attr.MarshalCanonical(x.Canonical())
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainInstance, canonical), nil
}

// hashWithDomain computes SHA-256 with domain separation. The null byte
// separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Same reports whether two instances have identical tables, comparing by
// fingerprint. Both instances must be valid.
func Same(a, b *Instance) (bool, error) {
	fa, err := a.Fingerprint()
	if err != nil {
		return false, err
	}
	fb, err := b.Fingerprint()
	if err != nil {
		return false, err
	}
	return fa == fb, nil
}
