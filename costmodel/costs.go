package costmodel

// Sizes of the hash primitives the storage layer is built on.
const (
	persistentHashBytes = 32
	frBytes             = 32
)

// ReadCell prices reading a storage cell of the given size. Synchronous reads
// pay the random-access latency for the first block; batched reads stream.
func (m *CostModel) ReadCell(size uint64, sync bool) RunningCost {
	blocks := size / 4096
	if size%4096 != 0 || blocks == 0 {
		blocks++
	}
	if sync {
		t := m.ReadTimeSynchronous4k.Add(m.ReadTimeBatched4k.Mul(blocks - 1))
		return RunningCost{ComputeTime: t, ReadTime: t}
	}
	return RunningCost{ReadTime: m.ReadTimeBatched4k.Mul(blocks)}
}

// ReadMap prices traversing a map of 2^logSize entries, one 16-ary node per
// four levels.
func (m *CostModel) ReadMap(logSize int, sync bool) RunningCost {
	layers := (logSize + 3) / 4
	return m.ReadCell(persistentHashBytes*16, sync).Scale(uint64(layers))
}

// ReadBMT prices a bounded Merkle tree lookup at depth logSize.
func (m *CostModel) ReadBMT(logSize int, sync bool) RunningCost {
	return m.ReadCell(frBytes*3+2, sync).Scale(uint64(logSize))
}

// ProofVerify prices verifying a proof over a statement of the given size.
func (m *CostModel) ProofVerify(size int) RunningCost {
	return ComputeCost(m.ProofVerifyConstant.Add(m.ProofVerifyCoeffSize.Mul(uint64(size))))
}

// SignatureVerify prices verifying a signature over a message of the given
// size.
func (m *CostModel) SignatureVerify(size int) RunningCost {
	return ComputeCost(m.SignatureVerifyConstant.Add(m.SignatureVerifyCoeffSize.Mul(uint64(size))))
}

// MapInsert prices inserting a key into a map of 2^logSize entries.
func (m *CostModel) MapInsert(keySize uint64, logSize int) RunningCost {
	t := m.InsMapConstant.
		Add(m.InsMapCoeffContainerLogSize.Mul(uint64(logSize))).
		Add(m.InsMapCoeffKeySize.Mul(keySize))
	return ComputeCost(t)
}

// CellWrite prices writing a storage cell. An overwrite also deletes the old
// contents.
func (m *TransactionCostModel) CellWrite(size uint64, overwrite bool) RunningCost {
	c := RunningCost{BytesWritten: size}
	if overwrite {
		c.BytesDeleted = size
	}
	return c
}

// CellDelete prices deleting a storage cell.
func (m *TransactionCostModel) CellDelete(size uint64) RunningCost {
	return RunningCost{BytesDeleted: size}
}

// MapInsert prices a map insertion at the transaction level: one 16-ary node
// write per four tree levels plus the leaf write.
func (m *TransactionCostModel) MapInsert(logSize int, overwrite bool) RunningCost {
	layers := (logSize + 3) / 4
	return m.CellWrite(persistentHashBytes*16, true).Scale(uint64(layers)).
		Add(m.CellWrite(persistentHashBytes, overwrite))
}

// TransactionBaseline returns the fixed per-transaction cost, amortized over
// the model's parallelism assumption when parallel is set.
func (m *TransactionCostModel) TransactionBaseline(parallel bool) RunningCost {
	if !parallel || m.ParallelismFactor == 0 {
		return m.BaselineCost
	}
	c := m.BaselineCost
	c.ComputeTime = CostDuration(c.ComputeTime.Picoseconds() / m.ParallelismFactor)
	return c
}
