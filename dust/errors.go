package dust

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrKeyCleared is returned by every operation that needs live key material
// once the container has been cleared. The message text is a stable contract;
// callers match on it across language bindings.
var ErrKeyCleared = errors.New("Dust secret key was cleared")

// ErrNegativeFee rejects spend fees below zero.
var ErrNegativeFee = errors.New("spend fee must be non-negative")

// ErrBackingNightNotFound: the UTXO references backing Night this state does
// not know about.
var ErrBackingNightNotFound = errors.New("backing Night of Dust UTXO not found")

// ErrUtxoNotTracked: the UTXO is not (or no longer) spendable in this state.
var ErrUtxoNotTracked = errors.New("Dust UTXO not tracked in this state")

// NotEnoughDustError: the UTXO's generated value at spend time does not cover
// the requested fee.
type NotEnoughDustError struct {
	Available *big.Int
	Required  *big.Int
}

func (e *NotEnoughDustError) Error() string {
	return fmt.Sprintf(
		"attempted to spend %s Specks of Dust, but only %s are available from this UTXO",
		e.Required, e.Available)
}
