package serialize

import (
	"fmt"
	"io"
	"strings"
)

// GlobalTag prefixes every tagged header, namespacing the encoding.
const GlobalTag = "midnight:"

// Serializable is the structural-encoding half of the codec. Implementations
// must write their fields in a fixed order so that serialization is
// deterministic.
type Serializable interface {
	Serialize(w io.Writer) error
}

// Deserializable is the structural-decoding half of the codec.
// Implementations decode into the receiver and must consume exactly the bytes
// their Serialize counterpart wrote.
type Deserializable interface {
	Deserialize(r io.Reader) error
}

// Tagged names a type's wire identity. The tag must be uniquely determined by
// the type, use only ASCII alphanumerics, dashes, brackets, parentheses and
// commas, and carry its format version in brackets, e.g. "dust-output[v1]".
// A tag never changes its meaning.
type Tagged interface {
	Tag() string
}

// Value is anything that can be written through TaggedSerialize.
type Value interface {
	Tagged
	Serializable
}

// pointerTo constrains P to a pointer to T that can decode itself and report
// its tag, letting TaggedDeserialize allocate the result.
type pointerTo[T any] interface {
	*T
	Tagged
	Deserializable
}

// TaggedSerialize writes v's full header followed by its structural encoding.
func TaggedSerialize(w io.Writer, v Value) error {
	if _, err := io.WriteString(w, GlobalTag+v.Tag()+":"); err != nil {
		return err
	}
	return v.Serialize(w)
}

// TaggedDeserialize reads a value of type T from r, validating the header
// before structural decoding and rejecting trailing bytes after it.
//
// Failures are *Error values: KindMalformedHeader or KindUnsupportedVersion
// if the header is wrong, KindMalformedPayload for anything after it.
func TaggedDeserialize[T any, P pointerTo[T]](r io.Reader) (*T, error) {
	out := new(T)
	p := P(out)
	expected := GlobalTag + p.Tag() + ":"

	got := make([]byte, len(expected))
	n, err := io.ReadFull(r, got)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, wrapError(KindMalformedHeader, "reading header tag", err)
	}
	got = got[:n]
	if string(got) != expected {
		kind := KindMalformedHeader
		if isVersionMismatch(expected, string(got)) {
			kind = KindUnsupportedVersion
		}
		return nil, newError(kind, fmt.Sprintf(
			"expected header tag '%s', got '%s'", expected, sanitizeTag(got)))
	}

	if err := p.Deserialize(r); err != nil {
		if IsKind(err, KindMalformedPayload) {
			return nil, err
		}
		return nil, wrapError(KindMalformedPayload,
			fmt.Sprintf("deserializing '%s': %v", expected, err), err)
	}

	remaining, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, wrapError(KindMalformedPayload, "draining input", err)
	}
	if remaining != 0 {
		return nil, newError(KindMalformedPayload, fmt.Sprintf(
			"not all bytes read deserializing '%s'; %d bytes remaining", expected, remaining))
	}
	return out, nil
}

// isVersionMismatch reports whether got names the same type as expected but
// at a different bracketed version, e.g. "midnight:foo[v3]:" vs
// "midnight:foo[v4]:".
func isVersionMismatch(expected, got string) bool {
	base, _, ok := strings.Cut(expected, "[")
	if !ok {
		return false
	}
	if !strings.HasPrefix(got, base+"[") {
		return false
	}
	rest := got[len(base)+1:]
	end := strings.Index(rest, "]")
	return end >= 0 && strings.HasPrefix(rest[end+1:], ":")
}

// sanitizeTag makes untrusted header bytes printable, replacing anything
// outside the tag alphabet with U+FFFD.
func sanitizeTag(raw []byte) string {
	var sb strings.Builder
	for _, b := range raw {
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
			sb.WriteByte(b)
		case strings.IndexByte(":_-()[],", b) >= 0:
			sb.WriteByte(b)
		default:
			sb.WriteRune('�')
		}
	}
	return sb.String()
}
