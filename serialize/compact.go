package serialize

import (
	"io"
	"math/big"
)

// The compact integer encoding is SCALE-style: a two-bit marker in the first
// byte selects a 1, 2, or 4 byte squeezed form, or a length-prefixed form for
// anything larger. Exactly one encoding is valid per value; decoders reject
// the rest so that encoded blobs are canonical.

// MaxBigUintBytes is the largest magnitude, in little-endian bytes, that the
// compact encoding can carry.
const MaxBigUintBytes = 66

const scaleMaxBytes = 67

type compactBuf [scaleMaxBytes]byte

const (
	scaleOneByteMarker  = 0b00
	scaleTwoByteMarker  = 0b01
	scaleFourByteMarker = 0b10
	scaleNByteMarker    = 0b11
)

func top2bits(b byte) byte { return (b & 0b1100_0000) >> 6 }
func bot6bits(b byte) byte { return (b & 0b0011_1111) << 2 }
func top6bits(b byte) byte { return (b & 0b1111_1100) >> 2 }
func bot2bits(b byte) byte { return (b & 0b0000_0011) << 6 }

func putUint64LE(buf *compactBuf, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

func putBigUint(buf *compactBuf, v *big.Int) error {
	if v == nil || v.Sign() < 0 {
		return newError(KindMalformedPayload, "compact encoding requires a non-negative integer")
	}
	be := v.Bytes()
	if len(be) > MaxBigUintBytes {
		return newError(KindMalformedPayload, "integer too large for compact encoding")
	}
	for i, b := range be {
		buf[len(be)-1-i] = b
	}
	return nil
}

func compactToUint64(buf *compactBuf) (uint64, error) {
	for _, b := range buf[8:] {
		if b != 0 {
			return 0, errOutOfRange
		}
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v, nil
}

var errOutOfRange = newError(KindMalformedPayload, "out of range")

func compactToBigUint(buf *compactBuf) *big.Int {
	be := make([]byte, scaleMaxBytes)
	for i, b := range buf {
		be[scaleMaxBytes-1-i] = b
	}
	return new(big.Int).SetBytes(be)
}

// compactSize returns the encoded size in bytes for the value in buf.
func compactSize(buf *compactBuf) int {
	occupied := scaleMaxBytes
	for occupied > 0 && buf[occupied-1] == 0 {
		occupied--
	}
	canSqueeze := occupied == 0 || buf[occupied-1] < 64
	switch {
	case occupied == 0, occupied == 1 && canSqueeze:
		return 1
	case occupied == 1, occupied == 2 && canSqueeze:
		return 2
	case occupied == 2, occupied == 3, occupied == 4 && canSqueeze:
		return 4
	default:
		return occupied + 1
	}
}

func writeCompact(w io.Writer, buf *compactBuf) error {
	var out []byte
	switch n := compactSize(buf); n {
	case 1:
		out = []byte{bot6bits(buf[0]) | scaleOneByteMarker}
	case 2:
		out = []byte{
			bot6bits(buf[0]) | scaleTwoByteMarker,
			top2bits(buf[0]) | bot6bits(buf[1]),
		}
	case 4:
		out = []byte{
			bot6bits(buf[0]) | scaleFourByteMarker,
			top2bits(buf[0]) | bot6bits(buf[1]),
			top2bits(buf[1]) | bot6bits(buf[2]),
			top2bits(buf[2]) | bot6bits(buf[3]),
		}
	default:
		out = make([]byte, 0, n)
		out = append(out, byte(n-5)<<2|scaleNByteMarker)
		out = append(out, buf[:n-1]...)
	}
	_, err := w.Write(out)
	return err
}

func readCompact(r io.Reader, buf *compactBuf) error {
	first, err := ReadUint8(r)
	if err != nil {
		return err
	}
	switch first & 0b11 {
	case scaleOneByteMarker:
		buf[0] = top6bits(first)
	case scaleTwoByteMarker:
		second, err := ReadUint8(r)
		if err != nil {
			return err
		}
		if second == 0 {
			return errNonCanonical
		}
		buf[0] = top6bits(first) | bot2bits(second)
		buf[1] = top6bits(second)
	case scaleFourByteMarker:
		var rest [3]byte
		if _, err := io.ReadFull(r, rest[:]); err != nil {
			return wrapError(KindMalformedPayload, "reading compact integer", err)
		}
		second, third, fourth := rest[0], rest[1], rest[2]
		if third == 0 && fourth == 0 {
			return errNonCanonical
		}
		buf[0] = top6bits(first) | bot2bits(second)
		buf[1] = top6bits(second) | bot2bits(third)
		buf[2] = top6bits(third) | bot2bits(fourth)
		buf[3] = top6bits(fourth)
	case scaleNByteMarker:
		n := int(top6bits(first)) + 4
		if _, err := io.ReadFull(r, buf[:n]); err != nil {
			return wrapError(KindMalformedPayload, "reading compact integer", err)
		}
		if buf[n-1] == 0 {
			return errNonCanonical
		}
		// Four data bytes below 2^30 belong in the squeezed four-byte form.
		if n == 4 && buf[3] < 64 {
			return errNonCanonical
		}
	}
	return nil
}

var errNonCanonical = newError(KindMalformedPayload, "non-canonical scale encoding")
