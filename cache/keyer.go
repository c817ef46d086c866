package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// KeyCollapseThreshold is the key length above which Keyer replaces the
// parameter section with a hash, keeping key size bounded regardless of how
// many parameters a provider request carries.
const KeyCollapseThreshold = 250

// Keyer builds deterministic cache keys from a provider name and request
// parameters.
//
// Contract:
// - Determinism: the same provider and parameters always produce the same
//   key regardless of map iteration order.
// - Concurrency: safe for concurrent use.
type Keyer struct{}

// NewKeyer creates a Keyer.
func NewKeyer() *Keyer {
	return &Keyer{}
}

// Key builds a key of the form provider:k1=v1:k2=v2 over sorted parameter
// names. Keys longer than KeyCollapseThreshold collapse to
// provider:hash:<digest> so oversized parameter sets cannot produce
// unbounded keys.
func (k *Keyer) Key(provider string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(provider)
	for _, name := range names {
		b.WriteByte(':')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}

	key := b.String()
	if len(key) > KeyCollapseThreshold {
		digest := sha256.Sum256([]byte(key))
		return provider + ":hash:" + hex.EncodeToString(digest[:8])
	}
	return key
}
