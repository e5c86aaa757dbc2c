// Package domain defines the value types of the envelope message format: algorithm
// suites, encryption contexts, headers, frames, derived key material, commitment
// policies and the materials exchanged with a materials manager.
//
// Every value here is built complete by a constructor or looked up from a static table
// and is not mutated afterwards, so it can be shared freely between goroutines.
package domain

import (
	"crypto"
	"crypto/elliptic"
	_ "crypto/sha256" // register SHA-256 for crypto.Hash.New
	_ "crypto/sha512" // register SHA-384 and SHA-512 for crypto.Hash.New
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// SuiteID is the 16-bit algorithm suite identifier carried in every header.
type SuiteID uint16

// Registered algorithm suites.
const (
	AES128GCMNoKDF            SuiteID = 0x0014
	AES192GCMNoKDF            SuiteID = 0x0046
	AES256GCMNoKDF            SuiteID = 0x0078
	AES128GCMHKDFSHA256       SuiteID = 0x0114
	AES192GCMHKDFSHA256       SuiteID = 0x0146
	AES256GCMHKDFSHA256       SuiteID = 0x0178
	AES128GCMHKDFSHA256P256   SuiteID = 0x0214
	AES192GCMHKDFSHA384P384   SuiteID = 0x0346
	AES256GCMHKDFSHA384P384   SuiteID = 0x0378
	AES256GCMHKDFSHA512Commit SuiteID = 0x0478
	// AES256GCMHKDFSHA512CommitP384 is the recommended suite: key commitment plus
	// message signature.
	AES256GCMHKDFSHA512CommitP384 SuiteID = 0x0578
)

// String formats the identifier the way it is usually written, e.g. 0x0578.
func (id SuiteID) String() string {
	return fmt.Sprintf("0x%04X", uint16(id))
}

// KDF names the key derivation applied to the data key.
type KDF uint8

const (
	// KDFNone uses the data key directly as the frame key.
	KDFNone KDF = iota
	// KDFHKDF derives the frame key with HKDF.
	KDFHKDF
)

// Commitment names the key commitment capability of a suite.
type Commitment uint8

const (
	// CommitmentNone suites carry no commitment value.
	CommitmentNone Commitment = iota
	// CommitmentKey suites bind the data key to the message with a commitment value.
	CommitmentKey
)

// AlgorithmSuite holds the parameters of one algorithm suite.
// The identifier determines every other field.
type AlgorithmSuite struct {
	ID                  SuiteID
	Name                string
	MessageFormat       MessageFormat
	EncryptionKeyLength int
	IVLength            int
	TagLength           int
	KDF                 KDF
	KDFHash             crypto.Hash
	Curve               elliptic.Curve // nil for unsigned suites
	SignatureHash       crypto.Hash
	SignatureLength     int // fixed DER signature length for signed suites
	Commitment          Commitment
	SuiteDataLength     int
	CommitmentKeyLength int
}

// Signed reports whether messages of this suite end with a signature footer.
func (s AlgorithmSuite) Signed() bool {
	return s.Curve != nil
}

// Committing reports whether the suite carries a key commitment value.
func (s AlgorithmSuite) Committing() bool {
	return s.Commitment == CommitmentKey
}

// MessageIDLength returns the message id width pinned by the suite's format version.
func (s AlgorithmSuite) MessageIDLength() int {
	return s.MessageFormat.MessageIDLength()
}

// SignatureComponentLength is the width of r and s in the raw signature encoding.
func (s AlgorithmSuite) SignatureComponentLength() int {
	if s.Curve == nil {
		return 0
	}
	return (s.Curve.Params().BitSize + 7) / 8
}

// String returns the suite name followed by its identifier.
func (s AlgorithmSuite) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.ID)
}

func gcmSuite(id SuiteID, name string, keyLen int) AlgorithmSuite {
	return AlgorithmSuite{
		ID:                  id,
		Name:                name,
		MessageFormat:       FormatV1,
		EncryptionKeyLength: keyLen,
		IVLength:            12,
		TagLength:           16,
		KDF:                 KDFNone,
	}
}

func hkdfSuite(id SuiteID, name string, keyLen int, hash crypto.Hash) AlgorithmSuite {
	s := gcmSuite(id, name, keyLen)
	s.KDF = KDFHKDF
	s.KDFHash = hash
	return s
}

func signedSuite(s AlgorithmSuite, curve elliptic.Curve, hash crypto.Hash, sigLen int) AlgorithmSuite {
	s.Curve = curve
	s.SignatureHash = hash
	s.SignatureLength = sigLen
	return s
}

func committingSuite(s AlgorithmSuite) AlgorithmSuite {
	s.MessageFormat = FormatV2
	s.Commitment = CommitmentKey
	s.SuiteDataLength = 32
	s.CommitmentKeyLength = 32
	return s
}

var registry = map[SuiteID]AlgorithmSuite{
	AES128GCMNoKDF: gcmSuite(AES128GCMNoKDF, "AES_128_GCM_IV12_TAG16_NO_KDF", 16),
	AES192GCMNoKDF: gcmSuite(AES192GCMNoKDF, "AES_192_GCM_IV12_TAG16_NO_KDF", 24),
	AES256GCMNoKDF: gcmSuite(AES256GCMNoKDF, "AES_256_GCM_IV12_TAG16_NO_KDF", 32),
	AES128GCMHKDFSHA256: hkdfSuite(
		AES128GCMHKDFSHA256, "AES_128_GCM_IV12_TAG16_HKDF_SHA256", 16, crypto.SHA256,
	),
	AES192GCMHKDFSHA256: hkdfSuite(
		AES192GCMHKDFSHA256, "AES_192_GCM_IV12_TAG16_HKDF_SHA256", 24, crypto.SHA256,
	),
	AES256GCMHKDFSHA256: hkdfSuite(
		AES256GCMHKDFSHA256, "AES_256_GCM_IV12_TAG16_HKDF_SHA256", 32, crypto.SHA256,
	),
	AES128GCMHKDFSHA256P256: signedSuite(
		hkdfSuite(AES128GCMHKDFSHA256P256, "AES_128_GCM_IV12_TAG16_HKDF_SHA256_ECDSA_P256", 16, crypto.SHA256),
		elliptic.P256(), crypto.SHA256, 71,
	),
	AES192GCMHKDFSHA384P384: signedSuite(
		hkdfSuite(AES192GCMHKDFSHA384P384, "AES_192_GCM_IV12_TAG16_HKDF_SHA384_ECDSA_P384", 24, crypto.SHA384),
		elliptic.P384(), crypto.SHA384, 103,
	),
	AES256GCMHKDFSHA384P384: signedSuite(
		hkdfSuite(AES256GCMHKDFSHA384P384, "AES_256_GCM_IV12_TAG16_HKDF_SHA384_ECDSA_P384", 32, crypto.SHA384),
		elliptic.P384(), crypto.SHA384, 103,
	),
	AES256GCMHKDFSHA512Commit: committingSuite(
		hkdfSuite(AES256GCMHKDFSHA512Commit, "AES_256_GCM_HKDF_SHA512_COMMIT_KEY", 32, crypto.SHA512),
	),
	AES256GCMHKDFSHA512CommitP384: signedSuite(
		committingSuite(
			hkdfSuite(AES256GCMHKDFSHA512CommitP384, "AES_256_GCM_HKDF_SHA512_COMMIT_KEY_ECDSA_P384", 32, crypto.SHA512),
		),
		elliptic.P384(), crypto.SHA384, 103,
	),
}

// LookupSuite resolves a wire identifier. Unknown identifiers are a format error.
func LookupSuite(id SuiteID) (AlgorithmSuite, error) {
	suite, ok := registry[id]
	if !ok {
		return AlgorithmSuite{}, fmt.Errorf("%w: %s", ErrUnsupportedSuite, id)
	}
	return suite, nil
}

// Suites returns every registered suite ordered by identifier.
func Suites() []AlgorithmSuite {
	suites := make([]AlgorithmSuite, 0, len(registry))
	for _, s := range registry {
		suites = append(suites, s)
	}
	slices.SortFunc(suites, func(a, b AlgorithmSuite) int {
		return int(a.ID) - int(b.ID)
	})
	return suites
}

// ParseSuiteID accepts a hexadecimal identifier ("0x0578", "0578") or a suite name
// and returns the registered identifier.
func ParseSuiteID(value string) (SuiteID, error) {
	value = strings.TrimSpace(value)
	for _, s := range registry {
		if strings.EqualFold(s.Name, value) {
			return s.ID, nil
		}
	}

	raw := strings.TrimPrefix(strings.ToLower(value), "0x")
	n, err := strconv.ParseUint(raw, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedSuite, value)
	}
	if _, err := LookupSuite(SuiteID(n)); err != nil {
		return 0, err
	}
	return SuiteID(n), nil
}
