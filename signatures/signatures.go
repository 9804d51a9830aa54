package signatures

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"github.com/midnightntwrk/ledger-go/serialize"
)

// Scheme selects the signature algorithm.
type Scheme uint8

const (
	SchemeEd25519 Scheme = iota
	SchemeDilithium3
)

func (s Scheme) String() string {
	switch s {
	case SchemeEd25519:
		return "ed25519"
	case SchemeDilithium3:
		return "dilithium3"
	default:
		return fmt.Sprintf("scheme(%d)", uint8(s))
	}
}

// ErrKeyCleared is returned by any use of a cleared signing key. The message
// text is stable.
var ErrKeyCleared = errors.New("Signing key was cleared")

var errUnknownScheme = errors.New("unknown signature scheme")

// signingDomainSeparator prefixes every signed digest, binding signatures to
// this ledger.
const signingDomainSeparator = "midnight:signature"

func digest(message []byte) []byte {
	h := sha256.New()
	h.Write([]byte(signingDomainSeparator))
	h.Write(message)
	return h.Sum(nil)
}

// VerifyingKey is a scheme-tagged public verification key.
type VerifyingKey struct {
	Scheme Scheme
	Raw    []byte
}

func (VerifyingKey) Tag() string { return "verifying-key[v1]" }

func (vk *VerifyingKey) Serialize(w io.Writer) error {
	if err := serialize.WriteUint8(w, uint8(vk.Scheme)); err != nil {
		return err
	}
	return serialize.WriteBytes(w, vk.Raw)
}

func (vk *VerifyingKey) Deserialize(r io.Reader) error {
	scheme, err := serialize.ReadUint8(r)
	if err != nil {
		return err
	}
	raw, err := serialize.ReadBytes(r)
	if err != nil {
		return err
	}
	switch Scheme(scheme) {
	case SchemeEd25519:
		if len(raw) != ed25519.PublicKeySize {
			return fmt.Errorf("malformed ed25519 verifying key: %d bytes", len(raw))
		}
	case SchemeDilithium3:
		if len(raw) != mode3.PublicKeySize {
			return fmt.Errorf("malformed dilithium3 verifying key: %d bytes", len(raw))
		}
	default:
		return errUnknownScheme
	}
	vk.Scheme, vk.Raw = Scheme(scheme), raw
	return nil
}

// Verify reports whether sig is a valid signature over message.
func (vk *VerifyingKey) Verify(message []byte, sig *Signature) bool {
	if sig.Scheme != vk.Scheme {
		return false
	}
	switch vk.Scheme {
	case SchemeEd25519:
		if len(vk.Raw) != ed25519.PublicKeySize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(vk.Raw), digest(message), sig.Raw)
	case SchemeDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(vk.Raw); err != nil {
			return false
		}
		return mode3.Verify(&pk, digest(message), sig.Raw)
	default:
		return false
	}
}

// Signature is a scheme-tagged signature value.
type Signature struct {
	Scheme Scheme
	Raw    []byte
}

func (Signature) Tag() string { return "signature[v1]" }

func (s *Signature) Serialize(w io.Writer) error {
	if err := serialize.WriteUint8(w, uint8(s.Scheme)); err != nil {
		return err
	}
	return serialize.WriteBytes(w, s.Raw)
}

func (s *Signature) Deserialize(r io.Reader) error {
	scheme, err := serialize.ReadUint8(r)
	if err != nil {
		return err
	}
	raw, err := serialize.ReadBytes(r)
	if err != nil {
		return err
	}
	switch Scheme(scheme) {
	case SchemeEd25519:
		if len(raw) != ed25519.SignatureSize {
			return fmt.Errorf("malformed ed25519 signature: %d bytes", len(raw))
		}
	case SchemeDilithium3:
		if len(raw) != mode3.SignatureSize {
			return fmt.Errorf("malformed dilithium3 signature: %d bytes", len(raw))
		}
	default:
		return errUnknownScheme
	}
	s.Scheme, s.Raw = Scheme(scheme), raw
	return nil
}

// SigningKey owns signing material for one scheme. Live until cleared;
// cleared is terminal.
type SigningKey struct {
	mu     sync.Mutex
	scheme Scheme
	key    []byte // nil once cleared
}

// GenerateSigningKey draws a fresh key for the scheme from rand.
func GenerateSigningKey(scheme Scheme, rand io.Reader) (*SigningKey, error) {
	switch scheme {
	case SchemeEd25519:
		_, priv, err := ed25519.GenerateKey(rand)
		if err != nil {
			return nil, err
		}
		return &SigningKey{scheme: scheme, key: priv}, nil
	case SchemeDilithium3:
		_, priv, err := mode3.GenerateKey(rand)
		if err != nil {
			return nil, err
		}
		raw, err := priv.MarshalBinary()
		if err != nil {
			return nil, err
		}
		return &SigningKey{scheme: scheme, key: raw}, nil
	default:
		return nil, errUnknownScheme
	}
}

func (sk *SigningKey) use(fn func(key []byte) error) error {
	sk.mu.Lock()
	defer sk.mu.Unlock()
	if sk.key == nil {
		return ErrKeyCleared
	}
	return fn(sk.key)
}

// Scheme returns the key's algorithm. It is not secret and survives Clear.
// Deserialize may rewrite it, so the read takes the container lock.
func (sk *SigningKey) Scheme() Scheme {
	sk.mu.Lock()
	defer sk.mu.Unlock()
	return sk.scheme
}

// VerifyingKey derives the public half; fails with ErrKeyCleared once
// cleared.
func (sk *SigningKey) VerifyingKey() (*VerifyingKey, error) {
	var vk *VerifyingKey
	err := sk.use(func(key []byte) error {
		switch sk.scheme {
		case SchemeEd25519:
			pub := ed25519.PrivateKey(key).Public().(ed25519.PublicKey)
			vk = &VerifyingKey{Scheme: sk.scheme, Raw: append([]byte(nil), pub...)}
			return nil
		case SchemeDilithium3:
			var priv mode3.PrivateKey
			if err := priv.UnmarshalBinary(key); err != nil {
				return err
			}
			raw, err := priv.Public().(*mode3.PublicKey).MarshalBinary()
			if err != nil {
				return err
			}
			vk = &VerifyingKey{Scheme: sk.scheme, Raw: raw}
			return nil
		default:
			return errUnknownScheme
		}
	})
	if err != nil {
		return nil, err
	}
	return vk, nil
}

// Sign produces a signature over a domain-separated digest of message; fails
// with ErrKeyCleared once cleared.
func (sk *SigningKey) Sign(message []byte) (*Signature, error) {
	var sig *Signature
	err := sk.use(func(key []byte) error {
		switch sk.scheme {
		case SchemeEd25519:
			sig = &Signature{Scheme: sk.scheme, Raw: ed25519.Sign(ed25519.PrivateKey(key), digest(message))}
			return nil
		case SchemeDilithium3:
			var priv mode3.PrivateKey
			if err := priv.UnmarshalBinary(key); err != nil {
				return err
			}
			raw := make([]byte, mode3.SignatureSize)
			mode3.SignTo(&priv, digest(message), raw)
			sig = &Signature{Scheme: sk.scheme, Raw: raw}
			return nil
		default:
			return errUnknownScheme
		}
	})
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// Clear zeroizes the signing material and poisons the key. No-op when
// already cleared.
func (sk *SigningKey) Clear() {
	sk.mu.Lock()
	defer sk.mu.Unlock()
	for i := range sk.key {
		sk.key[i] = 0
	}
	sk.key = nil
}

// String never renders key material.
func (sk *SigningKey) String() string { return "<signing key>" }

func (*SigningKey) Tag() string { return "signing-key[v1]" }

// Serialize writes the scheme and raw material; fails with ErrKeyCleared
// once cleared.
func (sk *SigningKey) Serialize(w io.Writer) error {
	return sk.use(func(key []byte) error {
		if err := serialize.WriteUint8(w, uint8(sk.scheme)); err != nil {
			return err
		}
		return serialize.WriteBytes(w, key)
	})
}

func (sk *SigningKey) Deserialize(r io.Reader) error {
	scheme, err := serialize.ReadUint8(r)
	if err != nil {
		return err
	}
	if Scheme(scheme) != SchemeEd25519 && Scheme(scheme) != SchemeDilithium3 {
		return errUnknownScheme
	}
	key, err := serialize.ReadBytes(r)
	if err != nil {
		return err
	}
	sk.mu.Lock()
	defer sk.mu.Unlock()
	for i := range sk.key {
		sk.key[i] = 0
	}
	sk.scheme, sk.key = Scheme(scheme), key
	return nil
}
