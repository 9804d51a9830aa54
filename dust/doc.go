// Package dust implements the Dust asset's key lifecycle and spend
// authorization.
//
// A SecretKey owns its key material exclusively and is either live or
// cleared. Clearing zeroizes the material and is one-way: every subsequent
// use of the container, whether deriving the public key or authorizing a
// spend, fails with ErrKeyCleared. The liveness check lives in the container
// itself, so all call sites fail identically and none can observe stale key
// material.
//
// Dust UTXOs generate value over time against the Night that backs them, up
// to a cap, and decay once the backing Night is spent. LocalState tracks a
// wallet's UTXOs and produces spend authorizations against them.
package dust
