package dust

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// transientHash is the domain-separated hash underlying commitments,
// nullifiers, and key derivation. Inputs are framed with their lengths, so
// distinct part boundaries can never collide.
func transientHash(domain string, parts ...[]byte) [32]byte {
	h := sha3.New256()
	var frame [8]byte
	binary.LittleEndian.PutUint64(frame[:], uint64(len(domain)))
	h.Write(frame[:])
	h.Write([]byte(domain))
	for _, p := range parts {
		binary.LittleEndian.PutUint64(frame[:], uint64(len(p)))
		h.Write(frame[:])
		h.Write(p)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

func uint32LE(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func uint64LE(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}
