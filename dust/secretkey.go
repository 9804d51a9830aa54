package dust

import (
	"crypto/sha256"
	"io"
	"sync"

	"github.com/midnightntwrk/ledger-go/serialize"
)

// Seed is the input to deterministic key derivation.
type Seed = [32]byte

// PublicKey is the non-secret key derived from a live SecretKey. It is a pure
// function of the container's current state and carries no lifecycle of its
// own.
type PublicKey [32]byte

func (PublicKey) Tag() string { return "dust-public-key[v1]" }

func (pk PublicKey) Serialize(w io.Writer) error {
	_, err := w.Write(pk[:])
	return err
}

func (pk *PublicKey) Deserialize(r io.Reader) error {
	if _, err := io.ReadFull(r, pk[:]); err != nil {
		return err
	}
	return nil
}

// SecretKey holds Dust key material. It is live until Clear is called, after
// which it is permanently poisoned: there is no transition back, and no
// accessor returns anything derived from the original bytes.
//
// All state transitions and reads go through one mutex, so a Clear racing a
// concurrent use resolves to either a complete use of the pre-clear material
// or ErrKeyCleared, never a partially-cleared read.
type SecretKey struct {
	mu  sync.Mutex
	key []byte // nil once cleared
}

// NewSecretKey wraps raw key material in a live container. The bytes are
// copied; the caller should discard its own copy.
func NewSecretKey(raw []byte) *SecretKey {
	key := make([]byte, len(raw))
	copy(key, raw)
	return &SecretKey{key: key}
}

const dustKeyDomainSeparator = "midnight:dsk"

// DeriveSecretKey deterministically derives a Dust secret key from a seed.
// Sixty-four uniform bytes are drawn by round-hashing the seed under the
// "midnight:dsk" domain separator, then folded into the key space.
func DeriveSecretKey(seed Seed) *SecretKey {
	uniform := sampleBytes(seed, 64, dustKeyDomainSeparator)
	folded := transientHash("mdn:dust:sk", uniform)
	return NewSecretKey(folded[:])
}

// SampleSecretKey draws a fresh random key from rand.
func SampleSecretKey(rand io.Reader) (*SecretKey, error) {
	var seed Seed
	if _, err := io.ReadFull(rand, seed[:]); err != nil {
		return nil, err
	}
	sk := DeriveSecretKey(seed)
	zero(seed[:])
	return sk, nil
}

// sampleBytes expands seed into n uniform bytes, one 32-byte hash block per
// round: H(domain || H(le64(round) || seed)).
func sampleBytes(seed Seed, n int, domain string) []byte {
	out := make([]byte, 0, n)
	for round := 0; len(out) < n; round++ {
		inner := sha256.New()
		inner.Write(uint64LE(uint64(round)))
		inner.Write(seed[:])
		outer := sha256.New()
		outer.Write([]byte(domain))
		outer.Write(inner.Sum(nil))
		block := outer.Sum(nil)
		take := n - len(out)
		if take > len(block) {
			take = len(block)
		}
		out = append(out, block[:take]...)
	}
	return out
}

// use runs fn against the live key material under the container's lock,
// failing with ErrKeyCleared if the container has been cleared. It is the
// single liveness gate: every consumer of key material goes through it.
func (sk *SecretKey) use(fn func(key []byte) error) error {
	sk.mu.Lock()
	defer sk.mu.Unlock()
	if sk.key == nil {
		return ErrKeyCleared
	}
	return fn(sk.key)
}

// PublicKey derives the public key from the live key material. After Clear it
// fails with ErrKeyCleared.
func (sk *SecretKey) PublicKey() (PublicKey, error) {
	var pk PublicKey
	err := sk.use(func(key []byte) error {
		pk = PublicKey(transientHash("mdn:dust:pk", key))
		return nil
	})
	if err != nil {
		return PublicKey{}, err
	}
	return pk, nil
}

// Clear zeroizes the key material and poisons the container. Clearing an
// already-cleared container is a no-op; nothing can resurrect the material.
func (sk *SecretKey) Clear() {
	sk.mu.Lock()
	defer sk.mu.Unlock()
	zero(sk.key)
	sk.key = nil
}

// Cleared reports whether the container has been cleared.
func (sk *SecretKey) Cleared() bool {
	sk.mu.Lock()
	defer sk.mu.Unlock()
	return sk.key == nil
}

// String never renders key material.
func (sk *SecretKey) String() string { return "<dust secret key>" }

func (*SecretKey) Tag() string { return "dust-secret-key[v1]" }

// Serialize writes the raw key material; it fails with ErrKeyCleared on a
// cleared container.
func (sk *SecretKey) Serialize(w io.Writer) error {
	return sk.use(func(key []byte) error {
		return serialize.WriteBytes(w, key)
	})
}

func (sk *SecretKey) Deserialize(r io.Reader) error {
	key, err := serialize.ReadBytes(r)
	if err != nil {
		return err
	}
	sk.mu.Lock()
	defer sk.mu.Unlock()
	zero(sk.key)
	sk.key = key
	return nil
}

// zero overwrites b in place.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
