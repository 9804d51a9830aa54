package costmodel

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/midnightntwrk/ledger-go/serialize"
)

// CostModel prices the individual VM operations. Every field is a learned
// coefficient; ops with non-constant pricing split into a `...Constant` part
// and per-dimension `...Coeff` scalars. Values are immutable after
// construction; derive new models by copying, not mutating.
//
// The coefficient set, its names, and its order are part of the wire format:
// serialization and the canonical rendering both walk coefficients() in
// declaration order.
type CostModel struct {
	NoopConstant        CostDuration
	Lt                  CostDuration
	Eq                  CostDuration
	And                 CostDuration
	Add                 CostDuration
	Subi                CostDuration
	Pop                 CostDuration
	PopeqConstant       CostDuration
	PopeqCoeffValueSize CostDuration

	PushsNull  CostDuration
	PushsCell  CostDuration
	PushsMap   CostDuration
	PushsBmt   CostDuration
	PushsArray CostDuration

	NewNull  CostDuration
	NewCell  CostDuration
	NewMap   CostDuration
	NewBmt   CostDuration
	NewArray CostDuration

	MemberConstant              CostDuration
	MemberCoeffKeySize          CostDuration
	MemberCoeffContainerLogSize CostDuration
	InsMapConstant              CostDuration
	InsMapCoeffKeySize          CostDuration
	InsMapCoeffContainerLogSize CostDuration
	RemMapConstant              CostDuration
	RemMapCoeffKeySize          CostDuration
	RemMapCoeffContainerLogSize CostDuration
	IdxMapConstant              CostDuration
	IdxMapCoeffKeySize          CostDuration
	IdxMapCoeffContainerLogSize CostDuration

	Ckpt                     CostDuration
	SignatureVerifyConstant  CostDuration
	SignatureVerifyCoeffSize CostDuration
	PedersenValid            CostDuration
	VerifierKeyLoad          CostDuration
	ProofVerifyConstant      CostDuration
	ProofVerifyCoeffSize     CostDuration
	HashToCurve              CostDuration
	EcAdd                    CostDuration
	EcMul                    CostDuration
	TransientHash            CostDuration

	ReadTimeBatched4k     CostDuration
	ReadTimeSynchronous4k CostDuration
}

func (CostModel) Tag() string { return "impact-cost-model[v4]" }

type coefficient struct {
	name string
	d    *CostDuration
}

// coefficients is the single source of truth for field order. Both the codec
// and the canonical rendering iterate it.
func (m *CostModel) coefficients() []coefficient {
	return []coefficient{
		{"noop_constant", &m.NoopConstant},
		{"lt", &m.Lt},
		{"eq", &m.Eq},
		{"and", &m.And},
		{"add", &m.Add},
		{"subi", &m.Subi},
		{"pop", &m.Pop},
		{"popeq_constant", &m.PopeqConstant},
		{"popeq_coeff_value_size", &m.PopeqCoeffValueSize},
		{"pushs_null", &m.PushsNull},
		{"pushs_cell", &m.PushsCell},
		{"pushs_map", &m.PushsMap},
		{"pushs_bmt", &m.PushsBmt},
		{"pushs_array", &m.PushsArray},
		{"new_null", &m.NewNull},
		{"new_cell", &m.NewCell},
		{"new_map", &m.NewMap},
		{"new_bmt", &m.NewBmt},
		{"new_array", &m.NewArray},
		{"member_constant", &m.MemberConstant},
		{"member_coeff_key_size", &m.MemberCoeffKeySize},
		{"member_coeff_container_log_size", &m.MemberCoeffContainerLogSize},
		{"ins_map_constant", &m.InsMapConstant},
		{"ins_map_coeff_key_size", &m.InsMapCoeffKeySize},
		{"ins_map_coeff_container_log_size", &m.InsMapCoeffContainerLogSize},
		{"rem_map_constant", &m.RemMapConstant},
		{"rem_map_coeff_key_size", &m.RemMapCoeffKeySize},
		{"rem_map_coeff_container_log_size", &m.RemMapCoeffContainerLogSize},
		{"idx_map_constant", &m.IdxMapConstant},
		{"idx_map_coeff_key_size", &m.IdxMapCoeffKeySize},
		{"idx_map_coeff_container_log_size", &m.IdxMapCoeffContainerLogSize},
		{"ckpt", &m.Ckpt},
		{"signature_verify_constant", &m.SignatureVerifyConstant},
		{"signature_verify_coeff_size", &m.SignatureVerifyCoeffSize},
		{"pedersen_valid", &m.PedersenValid},
		{"verifier_key_load", &m.VerifierKeyLoad},
		{"proof_verify_constant", &m.ProofVerifyConstant},
		{"proof_verify_coeff_size", &m.ProofVerifyCoeffSize},
		{"hash_to_curve", &m.HashToCurve},
		{"ec_add", &m.EcAdd},
		{"ec_mul", &m.EcMul},
		{"transient_hash", &m.TransientHash},
		{"read_time_batched_4k", &m.ReadTimeBatched4k},
		{"read_time_synchronous_4k", &m.ReadTimeSynchronous4k},
	}
}

func (m *CostModel) Serialize(w io.Writer) error {
	for _, c := range m.coefficients() {
		if err := c.d.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *CostModel) Deserialize(r io.Reader) error {
	for _, c := range m.coefficients() {
		if err := c.d.Deserialize(r); err != nil {
			return err
		}
	}
	return nil
}

// String renders every coefficient in declaration order. This is the
// canonical form: models are equal exactly when their renderings match.
func (m *CostModel) String() string {
	var sb strings.Builder
	for _, c := range m.coefficients() {
		fmt.Fprintf(&sb, "%s: %d\n", c.name, c.d.Picoseconds())
	}
	return sb.String()
}

// InitialCostModel returns the baseline VM coefficient set, as learned on the
// reference benchmark machine. The values are a reproducible constant.
func InitialCostModel() CostModel {
	return CostModel{
		NoopConstant:        103_089,
		Lt:                  2_294_435,
		Eq:                  2_283_612,
		And:                 2_361_629,
		Add:                 2_446_112,
		Subi:                1_957_428,
		Pop:                 1_655_719,
		PopeqConstant:       693_593,
		PopeqCoeffValueSize: 389,

		PushsNull:  262_204,
		PushsCell:  440_148,
		PushsMap:   2_807_319,
		PushsBmt:   410_602,
		PushsArray: 2_425_886,

		NewNull:  788_421,
		NewCell:  1_721_622,
		NewMap:   2_907_810,
		NewBmt:   1_906_647,
		NewArray: 2_909_716,

		MemberConstant:              6_313_602,
		MemberCoeffKeySize:          6_439,
		MemberCoeffContainerLogSize: 0,
		InsMapConstant:              43_195_449,
		InsMapCoeffKeySize:          42_051,
		InsMapCoeffContainerLogSize: 4_525_747,
		RemMapConstant:              9_163_731,
		RemMapCoeffKeySize:          12_306,
		RemMapCoeffContainerLogSize: 3_097_756,
		IdxMapConstant:              10_899_801,
		IdxMapCoeffKeySize:          18_058,
		IdxMapCoeffContainerLogSize: 26_838,

		Ckpt:                     102_363,
		SignatureVerifyConstant:  97_304_512,
		SignatureVerifyCoeffSize: 4_725,
		PedersenValid:            277_513_481,
		VerifierKeyLoad:          1_529_923_104,
		ProofVerifyConstant:      3_273_586_253,
		ProofVerifyCoeffSize:     4_555_132,
		HashToCurve:              338_977_834,
		EcAdd:                    376_004,
		EcMul:                    127_815_559,
		TransientHash:            86_465_888,

		ReadTimeBatched4k:     2_000_000,
		ReadTimeSynchronous4k: 85_000_000,
	}
}

// TransactionCostModel prices whole-transaction processing: the VM model for
// contract execution, a parallelism assumption, and a fixed baseline charged
// to every transaction.
type TransactionCostModel struct {
	Runtime           CostModel
	ParallelismFactor uint64
	BaselineCost      RunningCost
}

func (TransactionCostModel) Tag() string { return "transaction-cost-model[v4]" }

func (m *TransactionCostModel) Serialize(w io.Writer) error {
	if err := m.Runtime.Serialize(w); err != nil {
		return err
	}
	if err := serialize.WriteUint64(w, m.ParallelismFactor); err != nil {
		return err
	}
	return m.BaselineCost.Serialize(w)
}

func (m *TransactionCostModel) Deserialize(r io.Reader) error {
	if err := m.Runtime.Deserialize(r); err != nil {
		return err
	}
	pf, err := serialize.ReadUint64(r)
	if err != nil {
		return err
	}
	m.ParallelismFactor = pf
	return m.BaselineCost.Deserialize(r)
}

// String is the canonical rendering; see CostModel.String.
func (m *TransactionCostModel) String() string {
	var sb strings.Builder
	sb.WriteString(m.Runtime.String())
	fmt.Fprintf(&sb, "parallelism_factor: %d\n", m.ParallelismFactor)
	fmt.Fprintf(&sb, "baseline_cost: %d %d %d %d\n",
		m.BaselineCost.ReadTime.Picoseconds(),
		m.BaselineCost.ComputeTime.Picoseconds(),
		m.BaselineCost.BytesWritten,
		m.BaselineCost.BytesDeleted)
	return sb.String()
}

// Encode returns the model's tagged wire form.
func (m *TransactionCostModel) Encode() ([]byte, error) {
	var out bytes.Buffer
	if err := serialize.TaggedSerialize(&out, m); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Decode parses a tagged blob into a model, validating the header before any
// structural decoding. A failure never yields a partially-initialized model.
func Decode(raw []byte) (*TransactionCostModel, error) {
	return serialize.TaggedDeserialize[TransactionCostModel](bytes.NewReader(raw))
}

// InitialTransactionCostModel returns the canonical baseline parameter set.
func InitialTransactionCostModel() TransactionCostModel {
	return TransactionCostModel{
		Runtime:           InitialCostModel(),
		ParallelismFactor: 4,
		BaselineCost: RunningCost{
			ComputeTime: DurationFromPicoseconds(100_000_000),
		},
	}
}
