package dust

import (
	"io"
	"math/big"

	"github.com/midnightntwrk/ledger-go/serialize"
)

// Spend is a spend authorization over a tracked Dust UTXO: it nullifies the
// old output and commits to its successor, paying VFee out of the generated
// value. Producing one requires live key material; the value itself is
// non-secret.
type Spend struct {
	VFee          *big.Int
	OldNullifier  Nullifier
	NewCommitment Commitment
	CTime         Timestamp
}

func (Spend) Tag() string { return "dust-spend[v1]" }

func (s *Spend) Serialize(w io.Writer) error {
	if err := serialize.WriteBigUint(w, s.VFee); err != nil {
		return err
	}
	if _, err := w.Write(s.OldNullifier[:]); err != nil {
		return err
	}
	if _, err := w.Write(s.NewCommitment[:]); err != nil {
		return err
	}
	return serialize.WriteUint64(w, uint64(s.CTime))
}

func (s *Spend) Deserialize(r io.Reader) error {
	var err error
	if s.VFee, err = serialize.ReadBigUint(r); err != nil {
		return err
	}
	if _, err = io.ReadFull(r, s.OldNullifier[:]); err != nil {
		return err
	}
	if _, err = io.ReadFull(r, s.NewCommitment[:]); err != nil {
		return err
	}
	ctime, err := serialize.ReadUint64(r)
	s.CTime = Timestamp(ctime)
	return err
}

type utxoEntry struct {
	utxo  QualifiedOutput
	spent bool
}

// LocalState is a wallet's view of its spendable Dust. States are
// copy-on-write: Spend and AddOutput return an updated state and leave the
// receiver untouched.
type LocalState struct {
	params     Params
	utxos      map[Nullifier]utxoEntry
	generation map[InitialNonce]GenerationInfo
	nextIndex  uint64
}

// NewLocalState returns an empty wallet state under the given parameters.
func NewLocalState(params Params) *LocalState {
	return &LocalState{
		params:     params,
		utxos:      map[Nullifier]utxoEntry{},
		generation: map[InitialNonce]GenerationInfo{},
	}
}

// Params returns the chain parameters this state operates under.
func (s *LocalState) Params() Params { return s.params }

func (s *LocalState) clone() *LocalState {
	next := &LocalState{
		params:     s.params,
		utxos:      make(map[Nullifier]utxoEntry, len(s.utxos)),
		generation: make(map[InitialNonce]GenerationInfo, len(s.generation)),
		nextIndex:  s.nextIndex,
	}
	for k, v := range s.utxos {
		next.utxos[k] = v
	}
	for k, v := range s.generation {
		next.generation[k] = v
	}
	return next
}

// AddOutput starts tracking a UTXO and the generation info of its backing
// Night. The key is needed to index the UTXO by its nullifier and must be
// live.
func (s *LocalState) AddOutput(sk *SecretKey, utxo QualifiedOutput, gen GenerationInfo) (*LocalState, error) {
	nul, err := utxo.Nullifier(sk)
	if err != nil {
		return nil, err
	}
	next := s.clone()
	if utxo.MtIndex >= next.nextIndex {
		next.nextIndex = utxo.MtIndex + 1
	}
	next.utxos[nul] = utxoEntry{utxo: utxo}
	next.generation[utxo.BackingNight] = gen
	return next, nil
}

// GenerationInfo returns the backing-Night record for a tracked UTXO, if any.
func (s *LocalState) GenerationInfo(utxo *QualifiedOutput) (GenerationInfo, bool) {
	gen, ok := s.generation[utxo.BackingNight]
	return gen, ok
}

// Utxos returns the currently spendable UTXOs, those not already spent.
func (s *LocalState) Utxos() []QualifiedOutput {
	var out []QualifiedOutput
	for _, e := range s.utxos {
		if !e.spent {
			out = append(out, e.utxo)
		}
	}
	return out
}

// WalletBalance sums the generated value of all spendable UTXOs at time now.
func (s *LocalState) WalletBalance(now Timestamp) *big.Int {
	total := new(big.Int)
	for _, e := range s.utxos {
		if e.spent {
			continue
		}
		gen, ok := s.generation[e.utxo.BackingNight]
		if !ok {
			continue
		}
		total.Add(total, e.utxo.UpdatedValue(&gen, now, &s.params))
	}
	return total
}

// Spend authorizes paying vFee Specks out of utxo at time ctime, returning
// the updated state and the authorization.
//
// Key liveness is checked before anything else: a cleared key fails with
// ErrKeyCleared regardless of the remaining arguments, indistinguishably from
// SecretKey.PublicKey. The secret key is never mutated.
func (s *LocalState) Spend(sk *SecretKey, utxo *QualifiedOutput, vFee *big.Int, ctime Timestamp) (*LocalState, *Spend, error) {
	oldNullifier, err := utxo.Nullifier(sk)
	if err != nil {
		return nil, nil, err
	}
	if vFee == nil || vFee.Sign() < 0 {
		return nil, nil, ErrNegativeFee
	}
	gen, ok := s.generation[utxo.BackingNight]
	if !ok {
		return nil, nil, ErrBackingNightNotFound
	}
	entry, ok := s.utxos[oldNullifier]
	if !ok || entry.spent {
		return nil, nil, ErrUtxoNotTracked
	}

	vNew := utxo.UpdatedValue(&gen, ctime, &s.params)
	if vFee.Cmp(vNew) > 0 {
		return nil, nil, &NotEnoughDustError{Available: vNew, Required: new(big.Int).Set(vFee)}
	}

	successor, err := s.successorOutput(sk, utxo, new(big.Int).Sub(vNew, vFee), ctime)
	if err != nil {
		return nil, nil, err
	}

	// The spent entry stays in the map so its nullifier remains known; only
	// the flag changes. Spent is terminal.
	next := s.clone()
	entry.spent = true
	next.utxos[oldNullifier] = entry

	newNullifier, err := successor.Nullifier(sk)
	if err != nil {
		return nil, nil, err
	}
	successorQualified := QualifiedOutput{
		Output:       successor,
		BackingNight: utxo.BackingNight,
		MtIndex:      next.nextIndex,
	}
	next.nextIndex++
	next.utxos[newNullifier] = utxoEntry{utxo: successorQualified}

	auth := &Spend{
		VFee:          new(big.Int).Set(vFee),
		OldNullifier:  oldNullifier,
		NewCommitment: successor.Commitment(),
		CTime:         ctime,
	}
	return next, auth, nil
}

// successorOutput chains the next output in the UTXO's sequence; its nonce
// binds the backing Night, the next sequence number, and the secret key.
func (s *LocalState) successorOutput(sk *SecretKey, utxo *QualifiedOutput, value *big.Int, ctime Timestamp) (Output, error) {
	var nonce Nonce
	err := sk.use(func(key []byte) error {
		nonce = Nonce(transientHash("mdn:dust:nonce",
			utxo.BackingNight[:], uint32LE(utxo.Seq+1), key))
		return nil
	})
	if err != nil {
		return Output{}, err
	}
	return Output{
		InitialValue: value,
		Owner:        utxo.Owner,
		Nonce:        nonce,
		Seq:          utxo.Seq + 1,
		CTime:        ctime,
	}, nil
}
