// Package serialize implements the ledger's tagged, versioned binary encoding.
//
// Every serialized value begins with an ASCII header of the form
// "midnight:<tag>:" where <tag> uniquely identifies the value's type and, via
// a bracketed suffix such as "[v4]", its format version. Decoding validates
// the full header before any structural decoding takes place: a wrong tag,
// an unsupported version, or a truncated header is a hard failure, never a
// best-effort parse. After structural decoding, trailing bytes are rejected.
//
// Integers wider than 16 bits use a canonical compact encoding; decoders
// reject non-canonical forms, so a logical value has exactly one byte
// representation and serialization is deterministic.
//
// Unlike most error text in this module, the header error messages are part
// of the wire compatibility contract: they always contain the literal
// substring "expected header tag '<expected>'". Callers are entitled to match
// on it, and changing it is a breaking change.
package serialize
