package dust

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/midnightntwrk/ledger-go/serialize"
)

// testWallet builds a live key tracking one fresh UTXO backed by one Star of
// Night, created at t=0.
func testWallet(t *testing.T) (*SecretKey, *LocalState, QualifiedOutput) {
	t.Helper()
	sk := DeriveSecretKey(testSeed(7))
	pk, err := sk.PublicKey()
	if err != nil {
		t.Fatal(err)
	}
	utxo := QualifiedOutput{
		Output: Output{
			InitialValue: big.NewInt(0),
			Owner:        pk,
			Nonce:        Nonce{1},
			Seq:          0,
			CTime:        0,
		},
		BackingNight: InitialNonce{2},
		MtIndex:      0,
	}
	gen := GenerationInfo{
		Value: big.NewInt(1), // one Star
		Owner: pk,
		Nonce: utxo.BackingNight,
		DTime: 1 << 40, // backing Night effectively unspent
	}
	state, err := NewLocalState(InitialParams()).AddOutput(sk, utxo, gen)
	if err != nil {
		t.Fatal(err)
	}
	return sk, state, utxo
}

func TestSpendProducesAuthorization(t *testing.T) {
	sk, state, utxo := testWallet(t)
	ctime := TimestampFromSecs(1000)
	next, auth, err := state.Spend(sk, &utxo, big.NewInt(100), ctime)
	if err != nil {
		t.Fatalf("Spend: %v", err)
	}
	wantNul, err := utxo.Nullifier(sk)
	if err != nil {
		t.Fatal(err)
	}
	if auth.OldNullifier != wantNul {
		t.Fatal("authorization does not nullify the spent UTXO")
	}
	if auth.VFee.Cmp(big.NewInt(100)) != 0 || auth.CTime != ctime {
		t.Fatalf("authorization fields: %+v", auth)
	}
	// The old UTXO is spent; the successor is spendable.
	spendable := next.Utxos()
	if len(spendable) != 1 {
		t.Fatalf("spendable UTXOs after spend: %d", len(spendable))
	}
	if spendable[0].Seq != utxo.Seq+1 {
		t.Fatalf("successor seq: %d", spendable[0].Seq)
	}
	if spendable[0].Commitment() != auth.NewCommitment {
		t.Fatal("successor commitment does not match the authorization")
	}
	// The original state is untouched.
	if len(state.Utxos()) != 1 || state.Utxos()[0].Seq != utxo.Seq {
		t.Fatal("Spend mutated the receiver state")
	}
}

func TestSpendChecksKeyLivenessFirst(t *testing.T) {
	sk, state, utxo := testWallet(t)
	sk.Clear()

	// Even with an invalid fee and an unknown output, the cleared key must
	// win: liveness is checked before any argument validation.
	bogus := QualifiedOutput{Output: Output{InitialValue: big.NewInt(0)}}
	_, _, err := state.Spend(sk, &bogus, big.NewInt(-5), 0)
	if !errors.Is(err, ErrKeyCleared) {
		t.Fatalf("want ErrKeyCleared, got %v", err)
	}
	_, _, err = state.Spend(sk, &utxo, big.NewInt(0), 42)
	if !errors.Is(err, ErrKeyCleared) {
		t.Fatalf("want ErrKeyCleared, got %v", err)
	}
	// Same failure, same message, as the public key accessor.
	_, pkErr := sk.PublicKey()
	if pkErr.Error() != err.Error() {
		t.Fatalf("publicKey and spend disagree: %q vs %q", pkErr, err)
	}
}

func TestSpendRejectsNegativeFee(t *testing.T) {
	sk, state, utxo := testWallet(t)
	_, _, err := state.Spend(sk, &utxo, big.NewInt(-1), 0)
	if !errors.Is(err, ErrNegativeFee) {
		t.Fatalf("want ErrNegativeFee, got %v", err)
	}
}

func TestSpendRejectsUnknownBackingNight(t *testing.T) {
	sk, state, utxo := testWallet(t)
	foreign := utxo
	foreign.BackingNight = InitialNonce{0xEE}
	_, _, err := state.Spend(sk, &foreign, big.NewInt(0), 0)
	if !errors.Is(err, ErrBackingNightNotFound) {
		t.Fatalf("want ErrBackingNightNotFound, got %v", err)
	}
}

func TestSpendRejectsUntrackedUtxo(t *testing.T) {
	sk, state, utxo := testWallet(t)
	foreign := utxo
	foreign.Nonce = Nonce{0xEE}
	_, _, err := state.Spend(sk, &foreign, big.NewInt(0), 0)
	if !errors.Is(err, ErrUtxoNotTracked) {
		t.Fatalf("want ErrUtxoNotTracked, got %v", err)
	}
}

func TestSpendRejectsOverdraw(t *testing.T) {
	sk, state, utxo := testWallet(t)
	huge := new(big.Int).Lsh(big.NewInt(1), 100)
	_, _, err := state.Spend(sk, &utxo, huge, TimestampFromSecs(10))
	var notEnough *NotEnoughDustError
	if !errors.As(err, &notEnough) {
		t.Fatalf("want NotEnoughDustError, got %v", err)
	}
	if notEnough.Required.Cmp(huge) != 0 {
		t.Fatalf("required: %s", notEnough.Required)
	}
	if notEnough.Available.Sign() < 0 {
		t.Fatalf("available: %s", notEnough.Available)
	}
}

func TestSpentUtxoNotRespendable(t *testing.T) {
	sk, state, utxo := testWallet(t)
	next, _, err := state.Spend(sk, &utxo, big.NewInt(0), TimestampFromSecs(100))
	if err != nil {
		t.Fatal(err)
	}
	// Spent is terminal: neither an immediate nor an arbitrarily late retry
	// may see the nullifier again.
	for _, tm := range []uint64{101, 1 << 50} {
		_, _, err = next.Spend(sk, &utxo, big.NewInt(0), TimestampFromSecs(tm))
		if !errors.Is(err, ErrUtxoNotTracked) {
			t.Fatalf("respend at t=%d: want ErrUtxoNotTracked, got %v", tm, err)
		}
	}
}

func TestSpentUtxoNotRespendableAtGenesis(t *testing.T) {
	sk := DeriveSecretKey(testSeed(7))
	pk, err := sk.PublicKey()
	if err != nil {
		t.Fatal(err)
	}
	utxo := QualifiedOutput{
		Output:       Output{InitialValue: big.NewInt(0), Owner: pk, Nonce: Nonce{1}},
		BackingNight: InitialNonce{2},
	}
	gen := GenerationInfo{Value: big.NewInt(1), Owner: pk, Nonce: utxo.BackingNight, DTime: 1 << 40}
	params := InitialParams()
	params.GracePeriodSeconds = 0
	state, err := NewLocalState(params).AddOutput(sk, utxo, gen)
	if err != nil {
		t.Fatal(err)
	}

	// A spend at ctime zero must still mark the UTXO spent; the nullifier can
	// never be authorized twice.
	next, _, err := state.Spend(sk, &utxo, big.NewInt(0), 0)
	if err != nil {
		t.Fatalf("first spend: %v", err)
	}
	_, _, err = next.Spend(sk, &utxo, big.NewInt(0), 0)
	if !errors.Is(err, ErrUtxoNotTracked) {
		t.Fatalf("second spend of the same UTXO: want ErrUtxoNotTracked, got %v", err)
	}
	if len(next.Utxos()) != 1 || next.Utxos()[0].Seq != utxo.Seq+1 {
		t.Fatalf("only the successor may be spendable: %+v", next.Utxos())
	}
}

func TestCommitmentTreatsNilValueAsZero(t *testing.T) {
	var a Output
	b := Output{InitialValue: big.NewInt(0)}
	if a.Commitment() != b.Commitment() {
		t.Fatal("nil and zero InitialValue commit differently")
	}
	sk := DeriveSecretKey(testSeed(1))
	na, err := a.Nullifier(sk)
	if err != nil {
		t.Fatal(err)
	}
	nb, err := b.Nullifier(sk)
	if err != nil {
		t.Fatal(err)
	}
	if na != nb {
		t.Fatal("nil and zero InitialValue nullify differently")
	}
}

func TestUpdatedValueCurve(t *testing.T) {
	params := InitialParams()
	gen := GenerationInfo{Value: big.NewInt(1), DTime: TimestampFromSecs(1_000_000)}
	out := Output{InitialValue: big.NewInt(0), CTime: 0}

	rate := int64(params.GenerationDecayRate)
	cap := new(big.Int).SetUint64(params.NightDustRatio)

	// Generating phase: linear in elapsed time.
	if got := out.UpdatedValue(&gen, TimestampFromSecs(10), &params); got.Cmp(big.NewInt(10*rate)) != 0 {
		t.Fatalf("value at t=10: %s", got)
	}
	// Monotone non-decreasing until the backing Night is spent.
	prev := new(big.Int)
	for _, tm := range []uint64{0, 1, 1000, 100_000, 700_000} {
		v := out.UpdatedValue(&gen, TimestampFromSecs(tm), &params)
		if v.Cmp(prev) < 0 {
			t.Fatalf("value decreased while generating at t=%d", tm)
		}
		prev = v
	}
	// Capped at NightDustRatio per Star.
	if got := out.UpdatedValue(&gen, TimestampFromSecs(900_000), &params); got.Cmp(cap) != 0 {
		t.Fatalf("value at cap: %s, want %s", got, cap)
	}
	// Decays to zero after the backing Night is spent, and clamps there.
	if got := out.UpdatedValue(&gen, TimestampFromSecs(5_000_000), &params); got.Sign() != 0 {
		t.Fatalf("value long after dtime: %s", got)
	}
}

func TestWalletBalanceMatchesUpdatedValue(t *testing.T) {
	_, state, utxo := testWallet(t)
	now := TimestampFromSecs(500)
	gen, ok := state.GenerationInfo(&utxo)
	if !ok {
		t.Fatal("generation info missing")
	}
	params := state.Params()
	want := utxo.UpdatedValue(&gen, now, &params)
	if got := state.WalletBalance(now); got.Cmp(want) != 0 {
		t.Fatalf("balance %s, want %s", got, want)
	}
}

func TestSpendSerializeRoundTrip(t *testing.T) {
	sk, state, utxo := testWallet(t)
	_, auth, err := state.Spend(sk, &utxo, big.NewInt(3), TimestampFromSecs(60))
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := serialize.TaggedSerialize(&out, auth); err != nil {
		t.Fatal(err)
	}
	back, err := serialize.TaggedDeserialize[Spend](bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if back.VFee.Cmp(auth.VFee) != 0 || back.OldNullifier != auth.OldNullifier ||
		back.NewCommitment != auth.NewCommitment || back.CTime != auth.CTime {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, auth)
	}
}

func TestQualifiedOutputSerializeRoundTrip(t *testing.T) {
	_, _, utxo := testWallet(t)
	utxo.InitialValue = new(big.Int).Lsh(big.NewInt(3), 90)
	var out bytes.Buffer
	if err := serialize.TaggedSerialize(&out, &utxo); err != nil {
		t.Fatal(err)
	}
	back, err := serialize.TaggedDeserialize[QualifiedOutput](bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if back.InitialValue.Cmp(utxo.InitialValue) != 0 || back.Nonce != utxo.Nonce ||
		back.BackingNight != utxo.BackingNight || back.MtIndex != utxo.MtIndex ||
		back.Seq != utxo.Seq || back.CTime != utxo.CTime || back.Owner != utxo.Owner {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, utxo)
	}
}
