package costmodel

import (
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/midnightntwrk/ledger-go/serialize"
)

// CostDuration is a modelled time, measured in picoseconds. Arithmetic
// saturates rather than wrapping, so a hostile input cannot overflow a fee
// computation into a small number.
type CostDuration uint64

// DurationFromPicoseconds builds a CostDuration from a raw picosecond count.
func DurationFromPicoseconds(ps uint64) CostDuration { return CostDuration(ps) }

// Picoseconds returns the raw picosecond count.
func (d CostDuration) Picoseconds() uint64 { return uint64(d) }

// Add returns d + o, saturating at the maximum duration.
func (d CostDuration) Add(o CostDuration) CostDuration {
	sum, carry := bits.Add64(uint64(d), uint64(o), 0)
	if carry != 0 {
		return CostDuration(math.MaxUint64)
	}
	return CostDuration(sum)
}

// Sub returns d - o, saturating at zero.
func (d CostDuration) Sub(o CostDuration) CostDuration {
	if o > d {
		return 0
	}
	return d - o
}

// Mul returns d * n, saturating at the maximum duration.
func (d CostDuration) Mul(n uint64) CostDuration {
	hi, lo := bits.Mul64(uint64(d), n)
	if hi != 0 {
		return CostDuration(math.MaxUint64)
	}
	return CostDuration(lo)
}

func (d CostDuration) String() string {
	ps := uint64(d)
	switch {
	case ps < 1_000:
		return fmt.Sprintf("%dps", ps)
	case ps < 1_000_000:
		return fmt.Sprintf("%.3fns", float64(ps)/1e3)
	case ps < 1_000_000_000:
		return fmt.Sprintf("%.3fµs", float64(ps)/1e6)
	case ps < 1_000_000_000_000:
		return fmt.Sprintf("%.3fms", float64(ps)/1e9)
	default:
		return fmt.Sprintf("%.3fs", float64(ps)/1e12)
	}
}

func (d CostDuration) Serialize(w io.Writer) error {
	return serialize.WriteUint64(w, uint64(d))
}

func (d *CostDuration) Deserialize(r io.Reader) error {
	v, err := serialize.ReadUint64(r)
	if err != nil {
		return err
	}
	*d = CostDuration(v)
	return nil
}
