package memo

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
)

type patchState uint8

const (
	patchKeep patchState = iota
	patchClear
	patchSet
)

// Patch is a three-state update field: keep the stored value, clear it, or
// set it. On the wire it is Option<Option<T>>:
// (outer_tag, inner_tag_if_outer, value_if_inner).
type Patch[T any] struct {
	state patchState
	value T
}

// Keep leaves the stored value unchanged.
func Keep[T any]() Patch[T] { return Patch[T]{state: patchKeep} }

// Clear removes the stored value.
func Clear[T any]() Patch[T] { return Patch[T]{state: patchClear} }

// Set replaces the stored value with v.
func Set[T any](v T) Patch[T] { return Patch[T]{state: patchSet, value: v} }

func (p Patch[T]) IsKeep() bool  { return p.state == patchKeep }
func (p Patch[T]) IsClear() bool { return p.state == patchClear }

// Value returns the new value and whether the patch sets one.
func (p Patch[T]) Value() (T, bool) {
	return p.value, p.state == patchSet
}

func (p Patch[T]) String() string {
	switch p.state {
	case patchClear:
		return "clear"
	case patchSet:
		return fmt.Sprintf("set(%v)", p.value)
	default:
		return "keep"
	}
}

func (p Patch[T]) MarshalWithEncoder(enc *bin.Encoder) error {
	if p.state == patchKeep {
		return enc.WriteOption(false)
	}
	if err := enc.WriteOption(true); err != nil {
		return err
	}
	if p.state == patchClear {
		return enc.WriteOption(false)
	}
	if err := enc.WriteOption(true); err != nil {
		return err
	}
	return enc.Encode(p.value)
}

func (p *Patch[T]) UnmarshalWithDecoder(dec *bin.Decoder) error {
	outer, err := dec.ReadOption()
	if err != nil {
		return err
	}
	if !outer {
		*p = Keep[T]()
		return nil
	}
	inner, err := dec.ReadOption()
	if err != nil {
		return err
	}
	if !inner {
		*p = Clear[T]()
		return nil
	}
	var v T
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*p = Set(v)
	return nil
}
