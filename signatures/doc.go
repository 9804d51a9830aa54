// Package signatures provides the ledger's signing keys for unshielded
// intents.
//
// Two schemes are supported: Ed25519 for the present, Dilithium3 for
// post-quantum migration. Signing keys are clearable containers with the same
// one-way poisoned lifecycle as Dust secret keys: after Clear, every use
// fails with ErrKeyCleared and no signature or verifying key derived from the
// original material can be produced.
package signatures
