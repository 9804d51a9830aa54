package serialize

import (
	"fmt"
	"io"
	"math/big"
)

// Fixed-width primitives are little-endian. uint32, uint64 and big unsigned
// integers share the canonical compact encoding implemented in compact.go.

func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func ReadUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapError(KindMalformedPayload, "reading u8", err)
	}
	return buf[0], nil
}

func WriteUint16(w io.Writer, v uint16) error {
	_, err := w.Write([]byte{byte(v), byte(v >> 8)})
	return err
}

func ReadUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapError(KindMalformedPayload, "reading u16", err)
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

func WriteBool(w io.Writer, v bool) error {
	b := uint8(0)
	if v {
		b = 1
	}
	return WriteUint8(w, b)
}

func ReadBool(r io.Reader) (bool, error) {
	b, err := ReadUint8(r)
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, newError(KindMalformedPayload, fmt.Sprintf("invalid bool byte 0x%02x", b))
	}
}

func WriteUint32(w io.Writer, v uint32) error {
	var buf compactBuf
	putUint64LE(&buf, uint64(v))
	return writeCompact(w, &buf)
}

func ReadUint32(r io.Reader) (uint32, error) {
	var buf compactBuf
	if err := readCompact(r, &buf); err != nil {
		return 0, err
	}
	v, err := compactToUint64(&buf)
	if err != nil || v > 0xFFFF_FFFF {
		return 0, newError(KindMalformedPayload, "out of range for u32")
	}
	return uint32(v), nil
}

func WriteUint64(w io.Writer, v uint64) error {
	var buf compactBuf
	putUint64LE(&buf, v)
	return writeCompact(w, &buf)
}

func ReadUint64(r io.Reader) (uint64, error) {
	var buf compactBuf
	if err := readCompact(r, &buf); err != nil {
		return 0, err
	}
	v, err := compactToUint64(&buf)
	if err != nil {
		return 0, newError(KindMalformedPayload, "out of range for u64")
	}
	return v, nil
}

// WriteBigUint encodes a non-negative arbitrary-precision integer of at most
// MaxBigUintBytes bytes.
func WriteBigUint(w io.Writer, v *big.Int) error {
	var buf compactBuf
	if err := putBigUint(&buf, v); err != nil {
		return err
	}
	return writeCompact(w, &buf)
}

func ReadBigUint(r io.Reader) (*big.Int, error) {
	var buf compactBuf
	if err := readCompact(r, &buf); err != nil {
		return nil, err
	}
	return compactToBigUint(&buf), nil
}

// WriteBytes writes a compact length followed by the raw bytes.
func WriteBytes(w io.Writer, b []byte) error {
	if len(b) > 0xFFFF_FFFF {
		return newError(KindMalformedPayload, "byte slice exceeds u32 length")
	}
	if err := WriteUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadBytes reads a compact length followed by that many raw bytes. The
// allocation grows with bytes actually read, so a forged length cannot force
// a large up-front allocation.
func ReadBytes(r io.Reader) ([]byte, error) {
	n, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	const chunk = 64 * 1024
	out := make([]byte, 0, min(uint64(n), chunk))
	remaining := uint64(n)
	var buf [chunk]byte
	for remaining > 0 {
		step := min(remaining, chunk)
		if _, err := io.ReadFull(r, buf[:step]); err != nil {
			return nil, wrapError(KindMalformedPayload, "reading byte slice", err)
		}
		out = append(out, buf[:step]...)
		remaining -= step
	}
	return out, nil
}
