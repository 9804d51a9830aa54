package costmodel

import (
	"fmt"
	"io"

	"github.com/midnightntwrk/ledger-go/serialize"
)

// RunningCost tracks the cost accumulated during computation: read time,
// single-threaded compute time, and absolute bytes written and deleted.
type RunningCost struct {
	ReadTime     CostDuration
	ComputeTime  CostDuration
	BytesWritten uint64
	BytesDeleted uint64
}

// ZeroRunningCost is the additive identity.
var ZeroRunningCost = RunningCost{}

// ComputeCost captures only compute time.
func ComputeCost(d CostDuration) RunningCost {
	return RunningCost{ComputeTime: d}
}

// Add returns the componentwise, saturating sum.
func (c RunningCost) Add(o RunningCost) RunningCost {
	return RunningCost{
		ReadTime:     c.ReadTime.Add(o.ReadTime),
		ComputeTime:  c.ComputeTime.Add(o.ComputeTime),
		BytesWritten: satAdd(c.BytesWritten, o.BytesWritten),
		BytesDeleted: satAdd(c.BytesDeleted, o.BytesDeleted),
	}
}

// Scale returns the cost multiplied by n, saturating componentwise.
func (c RunningCost) Scale(n uint64) RunningCost {
	return RunningCost{
		ReadTime:     c.ReadTime.Mul(n),
		ComputeTime:  c.ComputeTime.Mul(n),
		BytesWritten: uint64(CostDuration(c.BytesWritten).Mul(n)),
		BytesDeleted: uint64(CostDuration(c.BytesDeleted).Mul(n)),
	}
}

func (c RunningCost) String() string {
	return fmt.Sprintf("read: %s, compute: %s, written: %dB, deleted: %dB",
		c.ReadTime, c.ComputeTime, c.BytesWritten, c.BytesDeleted)
}

func (c *RunningCost) Serialize(w io.Writer) error {
	if err := c.ReadTime.Serialize(w); err != nil {
		return err
	}
	if err := c.ComputeTime.Serialize(w); err != nil {
		return err
	}
	if err := serialize.WriteUint64(w, c.BytesWritten); err != nil {
		return err
	}
	return serialize.WriteUint64(w, c.BytesDeleted)
}

func (c *RunningCost) Deserialize(r io.Reader) error {
	if err := c.ReadTime.Deserialize(r); err != nil {
		return err
	}
	if err := c.ComputeTime.Deserialize(r); err != nil {
		return err
	}
	var err error
	if c.BytesWritten, err = serialize.ReadUint64(r); err != nil {
		return err
	}
	c.BytesDeleted, err = serialize.ReadUint64(r)
	return err
}

func satAdd(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return ^uint64(0)
}
