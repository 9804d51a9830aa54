// Package keystore provides local-first storage for wallet seeds.
//
// Seeds are 32 bytes, stored hex-encoded in 0600 files under a per-name
// directory. Purpose-specific seeds (for example "dust" or "signing") are
// derived deterministically from a stored root seed, so a wallet can be
// reconstructed from its root seed alone. This is a local convenience surface,
// not part of the protocol contract.
package keystore
