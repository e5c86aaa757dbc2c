package domain

import (
	"fmt"
	"strings"
)

// Stance is what a commitment policy says about key commitment for one direction.
type Stance uint8

const (
	// StanceForbid rejects committing suites.
	StanceForbid Stance = iota + 1
	// StanceAllow accepts both committing and non-committing suites.
	StanceAllow
	// StanceRequire rejects non-committing suites.
	StanceRequire
)

// String returns the lowercase stance name used in configuration.
func (s Stance) String() string {
	switch s {
	case StanceForbid:
		return "forbid"
	case StanceAllow:
		return "allow"
	case StanceRequire:
		return "require"
	default:
		return "unknown"
	}
}

func parseStance(value string) (Stance, error) {
	switch value {
	case "forbid":
		return StanceForbid, nil
	case "allow":
		return StanceAllow, nil
	case "require":
		return StanceRequire, nil
	default:
		return 0, fmt.Errorf("%w: unknown stance %q", ErrInvalidCommitmentPolicy, value)
	}
}

// CommitmentPolicy gates which suites may be used to encrypt and to decrypt. It is
// configured once per client and never changes.
type CommitmentPolicy struct {
	Encrypt Stance
	Decrypt Stance
}

// Standard policies.
var (
	ForbidEncryptAllowDecrypt    = CommitmentPolicy{Encrypt: StanceForbid, Decrypt: StanceAllow}
	RequireEncryptAllowDecrypt   = CommitmentPolicy{Encrypt: StanceRequire, Decrypt: StanceAllow}
	RequireEncryptRequireDecrypt = CommitmentPolicy{Encrypt: StanceRequire, Decrypt: StanceRequire}
)

// DefaultCommitmentPolicy is applied when nothing is configured.
var DefaultCommitmentPolicy = RequireEncryptRequireDecrypt

// ParseCommitmentPolicy parses "<stance>-encrypt-<stance>-decrypt", for example
// "require-encrypt-allow-decrypt".
func ParseCommitmentPolicy(value string) (CommitmentPolicy, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	enc, dec, ok := strings.Cut(value, "-encrypt-")
	if !ok || !strings.HasSuffix(dec, "-decrypt") {
		return CommitmentPolicy{}, fmt.Errorf("%w: %q", ErrInvalidCommitmentPolicy, value)
	}
	encStance, err := parseStance(enc)
	if err != nil {
		return CommitmentPolicy{}, err
	}
	decStance, err := parseStance(strings.TrimSuffix(dec, "-decrypt"))
	if err != nil {
		return CommitmentPolicy{}, err
	}
	return CommitmentPolicy{Encrypt: encStance, Decrypt: decStance}, nil
}

// String returns the configuration form of the policy.
func (p CommitmentPolicy) String() string {
	return fmt.Sprintf("%s-encrypt-%s-decrypt", p.Encrypt, p.Decrypt)
}

// Validate rejects the zero value and unknown stances.
func (p CommitmentPolicy) Validate() error {
	if p.Encrypt < StanceForbid || p.Encrypt > StanceRequire ||
		p.Decrypt < StanceForbid || p.Decrypt > StanceRequire {
		return fmt.Errorf("%w: %s", ErrInvalidCommitmentPolicy, p)
	}
	return nil
}

// CheckEncrypt runs before any ciphertext is produced.
func (p CommitmentPolicy) CheckEncrypt(suite AlgorithmSuite) error {
	return check(p.Encrypt, suite, "encrypt")
}

// CheckDecrypt runs against the header suite before materials are requested and
// against the materials suite afterwards.
func (p CommitmentPolicy) CheckDecrypt(suite AlgorithmSuite) error {
	return check(p.Decrypt, suite, "decrypt")
}

// DefaultSuite is the suite used to encrypt when the caller does not ask for one.
func (p CommitmentPolicy) DefaultSuite() SuiteID {
	if p.Encrypt == StanceForbid {
		return AES256GCMHKDFSHA384P384
	}
	return AES256GCMHKDFSHA512CommitP384
}

func check(stance Stance, suite AlgorithmSuite, direction string) error {
	switch stance {
	case StanceRequire:
		if !suite.Committing() {
			return fmt.Errorf("%w: %s requires a committing suite, got %s", ErrCommitmentRequired, direction, suite)
		}
	case StanceForbid:
		if suite.Committing() {
			return fmt.Errorf("%w: %s forbids committing suite %s", ErrCommitmentForbidden, direction, suite)
		}
	case StanceAllow:
	default:
		return fmt.Errorf("%w: unknown %s stance", ErrInvalidCommitmentPolicy, direction)
	}
	return nil
}
