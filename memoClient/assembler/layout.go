// Package assembler arranges memo, program and compute-budget instructions
// into the order each program expects and signs the result.
package assembler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gagliardetto/solana-go"

	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/instruction"
)

// Slot is the role of one instruction in a transaction.
type Slot int

const (
	SlotMemo Slot = iota
	SlotProgram
	SlotComputeBudget
)

func (s Slot) String() string {
	switch s {
	case SlotMemo:
		return "memo"
	case SlotProgram:
		return "program"
	case SlotComputeBudget:
		return "compute_budget"
	default:
		return "unknown"
	}
}

// Layout is an instruction ordering.
type Layout int

const (
	// OrderALayout is [memo, ix, cu]. Programs read the memo at index 0 of
	// the instructions sysvar.
	OrderALayout Layout = iota
	// OrderBLayout is [cu, memo, ix]. memo-profile create reads the memo
	// at index 1.
	OrderBLayout
	// BareLayout is [cu, ix], for instructions without a memo.
	BareLayout
)

func (l Layout) String() string {
	switch l {
	case OrderALayout:
		return "order_a"
	case OrderBLayout:
		return "order_b"
	case BareLayout:
		return "bare"
	default:
		return "unknown"
	}
}

// Slots lists the layout's instruction roles in order.
func (l Layout) Slots() []Slot {
	switch l {
	case OrderALayout:
		return []Slot{SlotMemo, SlotProgram, SlotComputeBudget}
	case OrderBLayout:
		return []Slot{SlotComputeBudget, SlotMemo, SlotProgram}
	default:
		return []Slot{SlotComputeBudget, SlotProgram}
	}
}

// HasMemo reports whether the layout carries a memo instruction.
func (l Layout) HasMemo() bool { return l != BareLayout }

// layouts is the single ordering table. Every op the instruction package
// builds has exactly one entry.
var layouts = map[instruction.Op]Layout{
	instruction.OpProcessMint:        OrderALayout,
	instruction.OpProcessBurn:        OrderALayout,
	instruction.OpCreateBlog:         OrderALayout,
	instruction.OpUpdateBlog:         OrderALayout,
	instruction.OpBurnForBlog:        OrderALayout,
	instruction.OpMintForBlog:        OrderALayout,
	instruction.OpCreatePost:         OrderALayout,
	instruction.OpBurnForPost:        OrderALayout,
	instruction.OpMintForPost:        OrderALayout,
	instruction.OpCreateChatGroup:    OrderALayout,
	instruction.OpSendMemoToGroup:    OrderALayout,
	instruction.OpBurnTokensForGroup: OrderALayout,
	instruction.OpCreateProject:      OrderALayout,
	instruction.OpUpdateProject:      OrderALayout,
	instruction.OpBurnForProject:     OrderALayout,
	instruction.OpUpdateProfile:      OrderALayout,

	instruction.OpCreateProfile: OrderBLayout,

	instruction.OpInitializeUserGlobalBurnStats: BareLayout,
	instruction.OpInitializeGlobalCounter:       BareLayout,
	instruction.OpInitializeBurnLeaderboard:     BareLayout,
	instruction.OpClearBurnLeaderboard:          BareLayout,
	instruction.OpDeleteProfile:                 BareLayout,
	instruction.OpCreateTokenAccount:            BareLayout,
}

// LayoutFor returns op's ordering.
func LayoutFor(op instruction.Op) (Layout, error) {
	l, ok := layouts[op]
	if !ok {
		return 0, merrors.Newf(merrors.ErrCodeInternal, op.String(), "no instruction ordering registered")
	}
	return l, nil
}

// OrderA arranges [memo, ix, cu].
func OrderA(memo, ix, cu solana.Instruction) []solana.Instruction {
	return []solana.Instruction{memo, ix, cu}
}

// OrderB arranges [cu, memo, ix].
func OrderB(cu, memo, ix solana.Instruction) []solana.Instruction {
	return []solana.Instruction{cu, memo, ix}
}

// Bare arranges [cu, ix].
func Bare(cu, ix solana.Instruction) []solana.Instruction {
	return []solana.Instruction{cu, ix}
}

// Parts are the instructions of one operation before ordering.
type Parts struct {
	Memo          solana.Instruction
	Program       solana.Instruction
	ComputeBudget solana.Instruction
}

// Arrange orders parts per op's layout.
func Arrange(op instruction.Op, parts Parts) ([]solana.Instruction, error) {
	layout, err := LayoutFor(op)
	if err != nil {
		return nil, err
	}
	if parts.Program == nil || parts.ComputeBudget == nil {
		return nil, merrors.Newf(merrors.ErrCodeInternal, op.String(), "program and compute budget instructions are required")
	}
	switch layout {
	case OrderALayout, OrderBLayout:
		if parts.Memo == nil {
			return nil, merrors.Newf(merrors.ErrCodeValidation, op.String(), "Missing memo: %s requires a memo instruction", op)
		}
		if layout == OrderALayout {
			return OrderA(parts.Memo, parts.Program, parts.ComputeBudget), nil
		}
		return OrderB(parts.ComputeBudget, parts.Memo, parts.Program), nil
	default:
		if parts.Memo != nil {
			return nil, merrors.Newf(merrors.ErrCodeInternal, op.String(), "%s takes no memo instruction", op)
		}
		return Bare(parts.ComputeBudget, parts.Program), nil
	}
}

func slotOf(program solana.PublicKey) Slot {
	switch {
	case program.Equals(solana.MemoProgramID):
		return SlotMemo
	case program.Equals(solana.ComputeBudget):
		return SlotComputeBudget
	default:
		return SlotProgram
	}
}

// SlotsOf returns the roles of tx's compiled instructions in order.
func SlotsOf(tx *solana.Transaction) ([]Slot, error) {
	out := make([]Slot, 0, len(tx.Message.Instructions))
	for i, ci := range tx.Message.Instructions {
		program, err := tx.Message.Program(ci.ProgramIDIndex)
		if err != nil {
			return nil, merrors.Newf(merrors.ErrCodeInternal, "assembler.slots", "instruction %d: %v", i, err)
		}
		out = append(out, slotOf(program))
	}
	return out, nil
}

// CheckOrder asserts tx's instruction roles match op's layout.
func CheckOrder(op instruction.Op, tx *solana.Transaction) error {
	layout, err := LayoutFor(op)
	if err != nil {
		return err
	}
	got, err := SlotsOf(tx)
	if err != nil {
		return err
	}
	want := layout.Slots()
	if !slices.Equal(got, want) {
		return merrors.Newf(merrors.ErrCodeValidation, op.String(),
			"instruction order %s does not match %s %s", formatSlots(got), layout, formatSlots(want))
	}
	return nil
}

func formatSlots(slots []Slot) string {
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = s.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(names, ", "))
}
