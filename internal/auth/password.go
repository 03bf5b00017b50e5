// Package auth provides credential hashing, token issuance, and request
// identity resolution.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the number of password bytes that are significant.
// Anything past it is ignored by both hashing schemes.
const MaxPasswordBytes = 72

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 12

// legacyPrefix tags digests produced by the fallback scheme.
const legacyPrefix = "$sha256$"

// Scheme identifies the algorithm behind a stored password hash.
type Scheme int

const (
	// SchemeUnknown is a hash no verifier recognizes.
	SchemeUnknown Scheme = iota
	// SchemeStrong is an adaptive, salted bcrypt hash.
	SchemeStrong
	// SchemeLegacy is an unsalted SHA-256 digest. It is only ever written
	// when bcrypt fails and is upgraded on the next successful login.
	SchemeLegacy
)

// String returns the scheme name used in logs and metrics.
func (s Scheme) String() string {
	switch s {
	case SchemeStrong:
		return "bcrypt"
	case SchemeLegacy:
		return "sha256"
	default:
		return "unknown"
	}
}

// DetectScheme inspects the format tag of a stored hash.
// Bare 64-character hex digests are accepted as legacy hashes.
func DetectScheme(stored string) Scheme {
	switch {
	case strings.HasPrefix(stored, "$2a$"),
		strings.HasPrefix(stored, "$2b$"),
		strings.HasPrefix(stored, "$2y$"):
		return SchemeStrong
	case strings.HasPrefix(stored, legacyPrefix):
		return SchemeLegacy
	case isHexDigest(stored):
		return SchemeLegacy
	default:
		return SchemeUnknown
	}
}

// Hasher hashes and verifies passwords.
type Hasher struct {
	cost     int
	logger   *slog.Logger
	generate func(password []byte, cost int) ([]byte, error)
	onLegacy func()
}

// HasherOption configures a Hasher.
type HasherOption func(*Hasher)

// WithLegacyHook registers a callback invoked every time Hash degrades to
// the legacy scheme.
func WithLegacyHook(fn func()) HasherOption {
	return func(h *Hasher) {
		h.onLegacy = fn
	}
}

// NewHasher creates a Hasher with the given bcrypt cost.
// Costs outside bcrypt's accepted range are clamped.
func NewHasher(cost int, logger *slog.Logger, opts ...HasherOption) *Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &Hasher{
		cost:     cost,
		logger:   logger,
		generate: bcrypt.GenerateFromPassword,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash returns the stored form of password and the scheme that produced it.
//
// SECURITY: if bcrypt fails the password is stored as an unsalted SHA-256
// digest so that signup does not hard-fail. The degradation is logged at WARN
// and the hash is replaced with bcrypt on the user's next successful login.
func (h *Hasher) Hash(password string) (string, Scheme) {
	significant := truncate(password)

	hash, err := h.generate(significant, h.cost)
	if err == nil {
		return string(hash), SchemeStrong
	}

	h.logger.Warn("password hashing degraded to legacy scheme",
		slog.Bool("security_degraded", true),
		slog.String("scheme", SchemeLegacy.String()),
		slog.String("error", err.Error()),
	)
	if h.onLegacy != nil {
		h.onLegacy()
	}

	return legacyPrefix + legacyDigest(significant), SchemeLegacy
}

// Rehash returns a fresh strong hash of password. Unlike Hash it never
// degrades: a bcrypt failure is returned to the caller.
func (h *Hasher) Rehash(password string) (string, error) {
	hash, err := h.generate(truncate(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored hash. It never fails:
// unrecognized or corrupt hashes simply do not match.
func (h *Hasher) Verify(password, stored string) bool {
	significant := truncate(password)

	switch DetectScheme(stored) {
	case SchemeStrong:
		return bcrypt.CompareHashAndPassword([]byte(stored), significant) == nil
	case SchemeLegacy:
		return verifyLegacy(password, stored)
	default:
		return false
	}
}

// verifyLegacy compares password against a SHA-256 digest. Tagged digests
// cover the first MaxPasswordBytes bytes. Bare digests were written over the
// first MaxPasswordBytes characters and checked against the whole password,
// so both forms are accepted for them.
func verifyLegacy(password, stored string) bool {
	if tagged, ok := strings.CutPrefix(stored, legacyPrefix); ok {
		return digestMatches(tagged, truncate(password))
	}

	full := digestMatches(stored, []byte(password))
	prefix := digestMatches(stored, truncateRunes(password))
	return full || prefix
}

func digestMatches(expected string, b []byte) bool {
	actual := legacyDigest(b)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(expected)), []byte(actual)) == 1
}

// NeedsUpgrade reports whether stored should be re-hashed with the current
// strong parameters.
func (h *Hasher) NeedsUpgrade(stored string) bool {
	if DetectScheme(stored) != SchemeStrong {
		return true
	}
	cost, err := bcrypt.Cost([]byte(stored))
	if err != nil {
		return true
	}
	return cost != h.cost
}

// truncate keeps only the significant prefix of the UTF-8 password bytes.
func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

// truncateRunes keeps the first MaxPasswordBytes characters of password.
func truncateRunes(password string) []byte {
	if utf8.RuneCountInString(password) <= MaxPasswordBytes {
		return []byte(password)
	}
	n := 0
	for i := range password {
		if n == MaxPasswordBytes {
			return []byte(password[:i])
		}
		n++
	}
	return []byte(password)
}

func legacyDigest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func isHexDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
