// Package budget sizes the compute-unit limit of a transaction by
// simulating it at a generous ceiling and rebuilding it with the consumed
// units plus a margin.
package budget

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/pushchain/memo-clients/memoClient/config"
	"github.com/pushchain/memo-clients/memoClient/constant"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/instruction"
	"github.com/pushchain/memo-clients/memoClient/ledger"
)

// Class groups operations by expected compute cost.
type Class int

const (
	// Light covers memo-mint and memo-burn.
	Light Class = iota
	// Heavy covers every record-keeping program.
	Heavy
)

func (c Class) String() string {
	if c == Light {
		return "light"
	}
	return "heavy"
}

// ClassOf returns op's cost class.
func ClassOf(op instruction.Op) Class {
	switch op {
	case instruction.OpProcessMint, instruction.OpProcessBurn:
		return Light
	}
	return Heavy
}

// Source records where a plan's limit came from.
type Source string

const (
	SourceSimulated Source = "simulated"
	SourceFallback  Source = "fallback"
)

// Plan is the chosen compute budget and the transaction rebuilt with it.
type Plan struct {
	Op        instruction.Op
	Limit     uint32
	Simulated uint64
	Margin    float64
	Source    Source
	Logs      []string

	// ExpectedFailure is set when the caller anticipated a failing
	// simulation and got one; Tx is nil then.
	ExpectedFailure bool
	Hint            *merrors.Hint

	Tx *solana.Transaction
}

// Build produces the transaction with the given compute-unit limit.
type Build func(limit uint32) (*solana.Transaction, error)

// Options are the estimator's tunables.
type Options struct {
	Margin       float64
	LightCeiling uint32
	HeavyCeiling uint32
	LightDefault uint32
	HeavyDefault uint32
}

// OptionsFromConfig reads the compute-budget section of cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Margin:       cfg.ComputeUnitMargin,
		LightCeiling: cfg.LightSimulationCU,
		HeavyCeiling: cfg.HeavySimulationCU,
		LightDefault: cfg.LightFallbackCU,
		HeavyDefault: cfg.HeavyFallbackCU,
	}
}

// Estimator runs the simulate-then-rebuild protocol.
type Estimator struct {
	sim    ledger.Simulator
	opts   Options
	logger zerolog.Logger
}

// NewEstimator creates an estimator. Zero options take the package
// defaults.
func NewEstimator(sim ledger.Simulator, opts Options, logger zerolog.Logger) *Estimator {
	if opts.Margin == 0 {
		opts.Margin = constant.DefaultComputeUnitMargin
	}
	if opts.LightCeiling == 0 {
		opts.LightCeiling = constant.LightSimulationCULimit
	}
	if opts.HeavyCeiling == 0 {
		opts.HeavyCeiling = constant.HeavySimulationCULimit
	}
	if opts.LightDefault == 0 {
		opts.LightDefault = constant.DefaultLightCULimit
	}
	if opts.HeavyDefault == 0 {
		opts.HeavyDefault = constant.DefaultHeavyCULimit
	}
	return &Estimator{
		sim:    sim,
		opts:   opts,
		logger: logger.With().Str("component", "budget").Logger(),
	}
}

// Ceiling is the simulation limit for op.
func (e *Estimator) Ceiling(op instruction.Op) uint32 {
	if ClassOf(op) == Light {
		return e.opts.LightCeiling
	}
	return e.opts.HeavyCeiling
}

// Fallback is the limit used when simulation reports no units.
func (e *Estimator) Fallback(op instruction.Op) uint32 {
	if ClassOf(op) == Light {
		return e.opts.LightDefault
	}
	return e.opts.HeavyDefault
}

// Limit is ceil(units × margin) clamped to the protocol maximum, or
// fallback when units is zero.
func Limit(units uint64, margin float64, fallback uint32) (uint32, Source) {
	if units == 0 {
		return fallback, SourceFallback
	}
	// Basis points; in float64 50000 × 1.10 ceils to 55001.
	bps := uint64(math.Round(margin * 10_000))
	limit := (units*bps + 9_999) / 10_000
	if limit > uint64(constant.MaxComputeUnitLimit) {
		return constant.MaxComputeUnitLimit, SourceSimulated
	}
	return uint32(limit), SourceSimulated
}

// Plan simulates op's transaction at the class ceiling and rebuilds it with
// the derived limit. A failing simulation is an ErrCodeSimulation error
// carrying the logs and a classified hint, unless expectFailure is set.
func (e *Estimator) Plan(ctx context.Context, op instruction.Op, build Build, expectFailure bool) (Plan, error) {
	plan := Plan{Op: op, Margin: e.opts.Margin}
	ceiling := e.Ceiling(op)

	simTx, err := build(ceiling)
	if err != nil {
		return plan, err
	}
	res, err := e.sim.Simulate(ctx, simTx)
	if err != nil {
		return plan, merrors.WrapClientError(err, merrors.ErrCodeRPC, op.String(), "simulation request failed")
	}
	plan.Logs = res.Logs

	if res.Failed() {
		hint, known := merrors.ClassifyLogs(res.Logs)
		if !known {
			hint, known = merrors.ClassifyText(fmt.Sprint(res.Err))
		}
		if known {
			plan.Hint = &hint
		}
		if expectFailure {
			plan.ExpectedFailure = true
			e.logger.Info().Str("op", op.String()).Interface("err", res.Err).Msg("simulation failed as expected")
			return plan, nil
		}
		simErr := merrors.Newf(merrors.ErrCodeSimulation, op.String(), "simulation failed: %v", res.Err).
			WithContext("logs", res.Logs)
		if known {
			simErr = simErr.WithHint(hint)
		}
		return plan, simErr
	}

	if res.UnitsConsumed != nil {
		plan.Simulated = *res.UnitsConsumed
	}
	plan.Limit, plan.Source = Limit(plan.Simulated, e.opts.Margin, e.Fallback(op))

	tx, err := build(plan.Limit)
	if err != nil {
		return plan, err
	}
	if err := SameInstructions(simTx, tx); err != nil {
		return plan, merrors.WrapClientError(err, merrors.ErrCodeInternal, op.String(), "rebuilt transaction differs from the simulated one")
	}
	plan.Tx = tx

	e.logger.Debug().
		Str("op", op.String()).
		Uint64("simulated_units", plan.Simulated).
		Uint32("limit", plan.Limit).
		Str("source", string(plan.Source)).
		Msg("compute budget planned")
	return plan, nil
}

type step struct {
	program solana.PublicKey
	data    []byte
}

func steps(tx *solana.Transaction) ([]step, error) {
	out := make([]step, 0, len(tx.Message.Instructions))
	for _, ci := range tx.Message.Instructions {
		program, err := tx.Message.Program(ci.ProgramIDIndex)
		if err != nil {
			return nil, err
		}
		s := step{program: program}
		// The compute-budget value is the one thing allowed to change.
		if !program.Equals(solana.ComputeBudget) {
			s.data = ci.Data
		}
		out = append(out, s)
	}
	return out, nil
}

// SameInstructions reports whether a and b run the same programs with the
// same data in the same order, ignoring compute-budget values.
func SameInstructions(a, b *solana.Transaction) error {
	sa, err := steps(a)
	if err != nil {
		return err
	}
	sb, err := steps(b)
	if err != nil {
		return err
	}
	if len(sa) != len(sb) {
		return fmt.Errorf("instruction count changed from %d to %d", len(sa), len(sb))
	}
	for i := range sa {
		if !sa[i].program.Equals(sb[i].program) {
			return fmt.Errorf("instruction %d program changed from %s to %s", i, sa[i].program, sb[i].program)
		}
		if !bytes.Equal(sa[i].data, sb[i].data) {
			return fmt.Errorf("instruction %d data changed", i)
		}
	}
	return nil
}
