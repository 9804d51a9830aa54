package serialize

import (
	"bytes"
	"math/big"
	"testing"
)

func encodeUint64(t *testing.T, v uint64) []byte {
	t.Helper()
	var out bytes.Buffer
	if err := WriteUint64(&out, v); err != nil {
		t.Fatalf("WriteUint64(%d): %v", v, err)
	}
	return out.Bytes()
}

func TestCompactUint64RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 42, 63, 64, 255, 256, 16383, 16384, 1 << 20, 1<<30 - 1, 1 << 30, 1 << 40, 1<<64 - 1}
	for _, v := range cases {
		enc := encodeUint64(t, v)
		got, err := ReadUint64(bytes.NewReader(enc))
		if err != nil {
			t.Fatalf("ReadUint64(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %d: got %d", v, got)
		}
	}
}

func TestCompactEncodingSizes(t *testing.T) {
	cases := []struct {
		v    uint64
		size int
	}{
		{0, 1},
		{63, 1},
		{64, 2},
		{16383, 2},
		{16384, 4},
		{1<<30 - 1, 4},
		{1 << 30, 5},
		{1<<64 - 1, 9},
	}
	for _, c := range cases {
		if got := len(encodeUint64(t, c.v)); got != c.size {
			t.Fatalf("encoded size of %d: got %d, want %d", c.v, got, c.size)
		}
	}
}

func TestCompactDeterminism(t *testing.T) {
	for _, v := range []uint64{0, 7, 1000, 1 << 35} {
		a := encodeUint64(t, v)
		b := encodeUint64(t, v)
		if !bytes.Equal(a, b) {
			t.Fatalf("encoding of %d not deterministic", v)
		}
	}
}

func TestCompactRejectsNonCanonical(t *testing.T) {
	// Two-byte form whose second byte is zero encodes a value that fits in
	// one byte.
	bad := [][]byte{
		{scaleTwoByteMarker | bot6bits(5), 0x00},
		{scaleFourByteMarker | bot6bits(5), 0x01, 0x00, 0x00},
		{0<<2 | scaleNByteMarker, 0x01, 0x02, 0x03, 0x00},
		// Four data bytes below 2^30 fit the squeezed four-byte form.
		{0<<2 | scaleNByteMarker, 0x01, 0x02, 0x03, 0x3f},
	}
	for _, raw := range bad {
		if _, err := ReadUint64(bytes.NewReader(raw)); err == nil {
			t.Fatalf("accepted non-canonical encoding % x", raw)
		} else if !IsKind(err, KindMalformedPayload) {
			t.Fatalf("want KindMalformedPayload for % x, got %v", raw, err)
		}
	}
}

func TestCompactUint32Range(t *testing.T) {
	enc := encodeUint64(t, 1<<40)
	if _, err := ReadUint32(bytes.NewReader(enc)); err == nil {
		t.Fatal("accepted out-of-range u32")
	}
}

func TestCompactTruncated(t *testing.T) {
	enc := encodeUint64(t, 1<<40)
	for i := 0; i < len(enc); i++ {
		if _, err := ReadUint64(bytes.NewReader(enc[:i])); err == nil {
			t.Fatalf("accepted truncation at %d bytes", i)
		}
	}
}

func TestBigUintRoundTrip(t *testing.T) {
	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(1 << 40),
		new(big.Int).Lsh(big.NewInt(1), 127), // u128-ranged
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)),
		new(big.Int).Lsh(big.NewInt(1), 400),
	}
	for _, v := range cases {
		var out bytes.Buffer
		if err := WriteBigUint(&out, v); err != nil {
			t.Fatalf("WriteBigUint(%s): %v", v, err)
		}
		got, err := ReadBigUint(bytes.NewReader(out.Bytes()))
		if err != nil {
			t.Fatalf("ReadBigUint(%s): %v", v, err)
		}
		if got.Cmp(v) != 0 {
			t.Fatalf("round trip %s: got %s", v, got)
		}
	}
}

func TestBigUintInteropWithUint64(t *testing.T) {
	// A value in the uint64 range must encode identically whether written as
	// uint64 or as a big integer.
	v := uint64(123456789)
	var asBig bytes.Buffer
	if err := WriteBigUint(&asBig, new(big.Int).SetUint64(v)); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(encodeUint64(t, v), asBig.Bytes()) {
		t.Fatal("uint64 and big encodings differ for the same value")
	}
}

func TestBigUintRejectsNegative(t *testing.T) {
	var out bytes.Buffer
	if err := WriteBigUint(&out, big.NewInt(-1)); err == nil {
		t.Fatal("accepted negative integer")
	}
}

func TestBigUintRejectsTooLarge(t *testing.T) {
	var out bytes.Buffer
	huge := new(big.Int).Lsh(big.NewInt(1), 8*MaxBigUintBytes)
	if err := WriteBigUint(&out, huge); err == nil {
		t.Fatal("accepted integer above the compact limit")
	}
}
