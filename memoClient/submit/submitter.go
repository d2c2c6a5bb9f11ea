// Package submit sends signed transactions and waits for them to land.
package submit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/pushchain/memo-clients/memoClient/config"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/instruction"
	"github.com/pushchain/memo-clients/memoClient/ledger"
)

// Result is a landed transaction.
type Result struct {
	Signature     solana.Signature
	Slot          uint64
	Logs          []string
	UnitsConsumed uint64
	Elapsed       time.Duration
}

// Observer is notified of submission outcomes.
type Observer interface {
	Submitted(op instruction.Op)
	Confirmed(op instruction.Op, unitsConsumed uint64, elapsed time.Duration)
	Failed(op instruction.Op, hint string)
}

type nopObserver struct{}

func (nopObserver) Submitted(instruction.Op)                         {}
func (nopObserver) Confirmed(instruction.Op, uint64, time.Duration) {}
func (nopObserver) Failed(instruction.Op, string)                    {}

// Options are the submitter's timing knobs.
type Options struct {
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	Retry          *merrors.RetryConfig
}

// OptionsFromConfig reads the submission section of cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		ConfirmTimeout: cfg.ConfirmTimeout(),
		PollInterval:   cfg.ConfirmPollInterval(),
		Retry:          merrors.NewRetryConfig(cfg.MaxRetries, cfg.RetryBackoff()),
	}
}

// Ledger is what the submitter needs from the RPC client.
type Ledger interface {
	ledger.Sender
	ledger.TransactionReader
}

// Submitter sends transactions and confirms them.
type Submitter struct {
	ledger   Ledger
	opts     Options
	observer Observer
	logger   zerolog.Logger
}

// New creates a submitter. A nil observer is allowed.
func New(l Ledger, opts Options, observer Observer, logger zerolog.Logger) *Submitter {
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = 60 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.Retry == nil {
		opts.Retry = merrors.DefaultRetryConfig()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Submitter{
		ledger:   l,
		opts:     opts,
		observer: observer,
		logger:   logger.With().Str("component", "submitter").Logger(),
	}
}

// Submit sends tx and waits until it is confirmed, fails on chain, or the
// confirmation timeout passes.
func (s *Submitter) Submit(ctx context.Context, op instruction.Op, tx *solana.Transaction) (Result, error) {
	start := time.Now()
	sig, err := s.send(ctx, op, tx)
	if err != nil {
		s.observer.Failed(op, hintKey(err))
		return Result{}, err
	}
	s.observer.Submitted(op)

	res, err := s.Confirm(ctx, op, sig)
	if err != nil {
		s.observer.Failed(op, hintKey(err))
		return res, err
	}
	res.Elapsed = time.Since(start)
	s.observer.Confirmed(op, res.UnitsConsumed, res.Elapsed)

	s.logger.Info().
		Str("op", op.String()).
		Str("signature", sig.String()).
		Uint64("slot", res.Slot).
		Uint64("units_consumed", res.UnitsConsumed).
		Dur("elapsed", res.Elapsed).
		Msg("transaction confirmed")
	return res, nil
}

func (s *Submitter) send(ctx context.Context, op instruction.Op, tx *solana.Transaction) (solana.Signature, error) {
	var sig solana.Signature
	err := merrors.RetryWithConfig(ctx, func() error {
		var err error
		sig, err = s.ledger.Send(ctx, tx)
		if err == nil || merrors.IsCode(err, merrors.ErrCodeRPC) {
			return err
		}
		// The node answered: preflight rejected the transaction.
		subErr := merrors.New(merrors.ErrCodeSubmission, op.String(), "transaction rejected", err)
		if hint, ok := merrors.Classify(err); ok {
			subErr = subErr.WithHint(hint)
		}
		return subErr
	}, s.opts.Retry)
	return sig, err
}

// Confirm polls sig's status until it lands.
func (s *Submitter) Confirm(ctx context.Context, op instruction.Op, sig solana.Signature) (Result, error) {
	res := Result{Signature: sig}

	ctx, cancel := context.WithTimeout(ctx, s.opts.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		var status *ledger.SignatureStatus
		err := merrors.RetryWithConfig(ctx, func() error {
			var err error
			status, err = s.ledger.SignatureStatus(ctx, sig)
			return err
		}, s.opts.Retry)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return res, s.timeout(op, sig)
		case err != nil && !merrors.IsRetryable(err):
			return res, err
		case err != nil:
			s.logger.Debug().Err(err).Str("signature", sig.String()).Msg("error checking transaction status")
		case status != nil && status.Err != nil:
			res.Slot = status.Slot
			return s.failed(ctx, op, sig, status.Err, res)
		case status.Landed():
			res.Slot = status.Slot
			s.attachLogs(ctx, &res)
			return res, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return res, s.timeout(op, sig)
			}
			return res, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Submitter) timeout(op instruction.Op, sig solana.Signature) error {
	return merrors.Newf(merrors.ErrCodeTimeout, op.String(), "transaction %s not confirmed within %s", sig, s.opts.ConfirmTimeout).
		WithContext("signature", sig.String())
}

// failed builds the on-chain failure error, classifying from the landed
// transaction's logs when they can be fetched.
func (s *Submitter) failed(ctx context.Context, op instruction.Op, sig solana.Signature, onChainErr interface{}, res Result) (Result, error) {
	s.attachLogs(ctx, &res)
	err := merrors.Newf(merrors.ErrCodeSubmission, op.String(), "transaction %s failed on chain: %v", sig, onChainErr).
		WithContext("signature", sig.String()).
		WithContext("logs", res.Logs)
	hint, ok := merrors.ClassifyLogs(res.Logs)
	if !ok {
		hint, ok = merrors.ClassifyText(fmt.Sprint(onChainErr))
	}
	if ok {
		err = err.WithHint(hint)
	}
	return res, err
}

func (s *Submitter) attachLogs(ctx context.Context, res *Result) {
	rec, err := s.ledger.Transaction(ctx, res.Signature)
	if err != nil {
		s.logger.Debug().Err(err).Str("signature", res.Signature.String()).Msg("could not fetch transaction logs")
		return
	}
	res.Logs = rec.Logs
	if rec.UnitsConsumed != nil {
		res.UnitsConsumed = *rec.UnitsConsumed
	}
}

func hintKey(err error) string {
	if h, ok := merrors.HintOf(err); ok {
		return h.Key
	}
	return "unknown"
}
