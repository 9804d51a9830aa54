package dust

import (
	"io"
	"math/big"

	"github.com/midnightntwrk/ledger-go/serialize"
)

// Timestamp is seconds since the Unix epoch.
type Timestamp uint64

// TimestampFromSecs builds a Timestamp from a second count.
func TimestampFromSecs(secs uint64) Timestamp { return Timestamp(secs) }

// secondsBetween returns to - from in seconds, clamped at zero.
func secondsBetween(from, to Timestamp) uint64 {
	if to <= from {
		return 0
	}
	return uint64(to - from)
}

// Denominations: Specks are the atomic Dust unit, Stars the atomic Night
// unit.
const (
	StarsPerNight     = 1_000_000
	SpecksPerDust     = 1_000_000_000_000_000
	specksPerStar     = SpecksPerDust / StarsPerNight
	dustPerNightAtCap = 5
)

// Params are the chain parameters governing Dust generation.
type Params struct {
	// NightDustRatio caps generated Dust at Specks per backing Star.
	NightDustRatio uint64
	// GenerationDecayRate is the generation (and decay) slope, in Specks per
	// Star per second.
	GenerationDecayRate uint32
	// GracePeriodSeconds is the chain's tolerance for spends that arrive
	// after their declared ctime. It travels with the parameter set; local
	// spend tracking does not consult it, a spent UTXO is excluded
	// permanently.
	GracePeriodSeconds uint64
}

func (Params) Tag() string { return "dust-parameters[v1]" }

func (p *Params) Serialize(w io.Writer) error {
	if err := serialize.WriteUint64(w, p.NightDustRatio); err != nil {
		return err
	}
	if err := serialize.WriteUint32(w, p.GenerationDecayRate); err != nil {
		return err
	}
	return serialize.WriteUint64(w, p.GracePeriodSeconds)
}

func (p *Params) Deserialize(r io.Reader) error {
	var err error
	if p.NightDustRatio, err = serialize.ReadUint64(r); err != nil {
		return err
	}
	if p.GenerationDecayRate, err = serialize.ReadUint32(r); err != nil {
		return err
	}
	p.GracePeriodSeconds, err = serialize.ReadUint64(r)
	return err
}

// TimeToCapSeconds returns how long a fresh UTXO takes to fill to the cap.
func (p *Params) TimeToCapSeconds() uint64 {
	rate := uint64(p.GenerationDecayRate)
	if rate == 0 {
		return 0
	}
	return (p.NightDustRatio + rate - 1) / rate
}

// InitialParams returns the launch parameters: 5 Dust per Night at cap,
// roughly one week to fill, three hours of grace.
func InitialParams() Params {
	return Params{
		NightDustRatio:      dustPerNightAtCap * specksPerStar,
		GenerationDecayRate: 8_267,
		GracePeriodSeconds:  3 * 60 * 60,
	}
}

// Nonce is a UTXO's uniqueness witness.
type Nonce [32]byte

// InitialNonce identifies the Night UTXO backing a chain of Dust outputs.
type InitialNonce [32]byte

// Commitment commits to a Dust output.
type Commitment [32]byte

// Nullifier is the spend marker of a Dust output; deriving it requires the
// owner's secret key.
type Nullifier [32]byte

// Output is a Dust UTXO as it appears on chain.
type Output struct {
	// InitialValue is the value, in Specks, at CTime. Non-negative,
	// u128-ranged.
	InitialValue *big.Int
	Owner        PublicKey
	Nonce        Nonce
	Seq          uint32
	CTime        Timestamp
}

func (Output) Tag() string { return "dust-output[v1]" }

// value normalizes a nil InitialValue to zero, so a zero-value Output behaves
// like one holding no Specks.
func (o *Output) value() *big.Int {
	if o.InitialValue == nil {
		return new(big.Int)
	}
	return o.InitialValue
}

func (o *Output) Serialize(w io.Writer) error {
	if err := serialize.WriteBigUint(w, o.value()); err != nil {
		return err
	}
	if err := o.Owner.Serialize(w); err != nil {
		return err
	}
	if _, err := w.Write(o.Nonce[:]); err != nil {
		return err
	}
	if err := serialize.WriteUint32(w, o.Seq); err != nil {
		return err
	}
	return serialize.WriteUint64(w, uint64(o.CTime))
}

func (o *Output) Deserialize(r io.Reader) error {
	var err error
	if o.InitialValue, err = serialize.ReadBigUint(r); err != nil {
		return err
	}
	if err = o.Owner.Deserialize(r); err != nil {
		return err
	}
	if _, err = io.ReadFull(r, o.Nonce[:]); err != nil {
		return err
	}
	if o.Seq, err = serialize.ReadUint32(r); err != nil {
		return err
	}
	ctime, err := serialize.ReadUint64(r)
	o.CTime = Timestamp(ctime)
	return err
}

// Commitment binds the output's value, owner, nonce and creation time.
func (o *Output) Commitment() Commitment {
	return Commitment(transientHash("mdn:dust:cm",
		o.value().Bytes(), o.Owner[:], o.Nonce[:], uint64LE(uint64(o.CTime))))
}

// Nullifier derives the output's spend marker. It requires live key material
// and fails with ErrKeyCleared otherwise.
func (o *Output) Nullifier(sk *SecretKey) (Nullifier, error) {
	var nul Nullifier
	err := sk.use(func(key []byte) error {
		nul = Nullifier(transientHash("mdn:dust:nul",
			o.value().Bytes(), key, o.Nonce[:], uint64LE(uint64(o.CTime))))
		return nil
	})
	if err != nil {
		return Nullifier{}, err
	}
	return nul, nil
}

// GenerationInfo describes the Night backing a Dust UTXO: its value, and the
// time it was itself spent (after which generated Dust decays).
type GenerationInfo struct {
	Value *big.Int // Stars
	Owner PublicKey
	Nonce InitialNonce
	DTime Timestamp
}

func (GenerationInfo) Tag() string { return "dust-generation-info[v1]" }

func (g *GenerationInfo) Serialize(w io.Writer) error {
	if err := serialize.WriteBigUint(w, g.Value); err != nil {
		return err
	}
	if err := g.Owner.Serialize(w); err != nil {
		return err
	}
	if _, err := w.Write(g.Nonce[:]); err != nil {
		return err
	}
	return serialize.WriteUint64(w, uint64(g.DTime))
}

func (g *GenerationInfo) Deserialize(r io.Reader) error {
	var err error
	if g.Value, err = serialize.ReadBigUint(r); err != nil {
		return err
	}
	if err = g.Owner.Deserialize(r); err != nil {
		return err
	}
	if _, err = io.ReadFull(r, g.Nonce[:]); err != nil {
		return err
	}
	dtime, err := serialize.ReadUint64(r)
	g.DTime = Timestamp(dtime)
	return err
}

// UpdatedValue evaluates the output's generation curve at time now. The curve
// has up to four linear segments: generating until the cap, flat at the cap
// until the backing Night is spent, decaying to zero, then flat at zero. The
// slope and the cap are both proportional to the backing Night's value.
func (o *Output) UpdatedValue(gen *GenerationInfo, now Timestamp, params *Params) *big.Int {
	vfull := new(big.Int).Mul(gen.Value, new(big.Int).SetUint64(params.NightDustRatio))
	rate := new(big.Int).Mul(gen.Value, new(big.Int).SetUint64(uint64(params.GenerationDecayRate)))

	genEnd := gen.DTime
	if now < genEnd {
		genEnd = now
	}
	dtGen := new(big.Int).SetUint64(secondsBetween(o.CTime, genEnd))
	v := new(big.Int).Add(o.value(), dtGen.Mul(dtGen, rate))
	if v.Cmp(vfull) > 0 {
		v.Set(vfull)
	}

	dtDecay := new(big.Int).SetUint64(secondsBetween(gen.DTime, now))
	v.Sub(v, dtDecay.Mul(dtDecay, rate))
	if v.Sign() < 0 {
		v.SetInt64(0)
	}
	return v
}

// QualifiedOutput is an Output qualified with the information needed to spend
// it: its backing Night and its index in the commitment tree.
type QualifiedOutput struct {
	Output
	BackingNight InitialNonce
	MtIndex      uint64
}

func (QualifiedOutput) Tag() string { return "qualified-dust-output[v1]" }

func (q *QualifiedOutput) Serialize(w io.Writer) error {
	if err := q.Output.Serialize(w); err != nil {
		return err
	}
	if _, err := w.Write(q.BackingNight[:]); err != nil {
		return err
	}
	return serialize.WriteUint64(w, q.MtIndex)
}

func (q *QualifiedOutput) Deserialize(r io.Reader) error {
	if err := q.Output.Deserialize(r); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, q.BackingNight[:]); err != nil {
		return err
	}
	var err error
	q.MtIndex, err = serialize.ReadUint64(r)
	return err
}
