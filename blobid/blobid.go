// Package blobid content-addresses serialized ledger values.
//
// A blob ID is a CIDv1 over the canonical tagged byte form of a value, using
// the "raw" multicodec and a sha2-256 multihash. Because tagged serialization
// is deterministic, equal values always produce equal blob IDs.
package blobid

import (
	"bytes"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/midnightntwrk/ledger-go/serialize"
)

// ForBytes returns the blob ID string for raw bytes. Hashing a byte slice
// with sha2-256 cannot fail, so the empty string marks the unreachable error
// path.
func ForBytes(data []byte) string {
	c, err := CIDForBytes(data)
	if err != nil {
		return ""
	}
	return c.String()
}

// CIDForBytes wraps the sha2-256 digest of data in a raw-codec CIDv1.
func CIDForBytes(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// ForValue serializes v in its canonical tagged form and returns the blob ID
// of the resulting bytes.
func ForValue(v serialize.Value) (string, error) {
	var buf bytes.Buffer
	if err := serialize.TaggedSerialize(&buf, v); err != nil {
		return "", err
	}
	return ForBytes(buf.Bytes()), nil
}
