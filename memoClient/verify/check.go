// Package verify asserts post-conditions on fetched account state and on
// the memo a confirmed transaction carried.
package verify

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gagliardetto/solana-go"

	merrors "github.com/pushchain/memo-clients/memoClient/errors"
)

// Assertion is one evaluated post-condition.
type Assertion struct {
	Field string
	OK    bool
	Want  string
	Got   string
}

func (a Assertion) String() string {
	mark := "ok"
	if !a.OK {
		mark = "MISMATCH"
	}
	return fmt.Sprintf("%-8s %s: want %s, got %s", mark, a.Field, a.Want, a.Got)
}

// Equal asserts got equals want.
func Equal(field string, want, got interface{}) Assertion {
	return Assertion{
		Field: field,
		OK:    reflect.DeepEqual(want, got),
		Want:  render(want),
		Got:   render(got),
	}
}

// Increased asserts after is exactly before+by.
func Increased(field string, before, after, by uint64) Assertion {
	return Assertion{
		Field: field,
		OK:    after == before+by,
		Want:  fmt.Sprintf("%d (+%d)", before+by, by),
		Got:   fmt.Sprintf("%d (+%d)", after, int64(after-before)),
	}
}

// NonZeroTime asserts a unix timestamp was set.
func NonZeroTime(field string, ts int64) Assertion {
	return Assertion{Field: field, OK: ts > 0, Want: "> 0", Got: fmt.Sprint(ts)}
}

// NotBefore asserts a timestamp did not move backwards.
func NotBefore(field string, prev, ts int64) Assertion {
	return Assertion{Field: field, OK: ts >= prev, Want: fmt.Sprintf(">= %d", prev), Got: fmt.Sprint(ts)}
}

// ActorIs asserts a stored creator or owner key is the signer.
func ActorIs(field string, signer, got solana.PublicKey) Assertion {
	return Assertion{Field: field, OK: signer.Equals(got), Want: signer.String(), Got: got.String()}
}

// Rejects asserts err is non-nil and mentions want.
func Rejects(field string, err error, want string) Assertion {
	got := "accepted"
	if err != nil {
		got = fmt.Sprintf("%q", err.Error())
	}
	return Assertion{
		Field: field,
		OK:    err != nil && strings.Contains(err.Error(), want),
		Want:  fmt.Sprintf("error containing %q", want),
		Got:   got,
	}
}

func render(v interface{}) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "<nil>"
		}
		v = rv.Elem().Interface()
	}
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}

// Report is the outcome of checking one subject.
type Report struct {
	Subject    string
	Assertions []Assertion
}

// Check evaluates assertions against subject.
func Check(subject string, assertions ...Assertion) Report {
	return Report{Subject: subject, Assertions: assertions}
}

// OK reports whether every assertion held.
func (r Report) OK() bool {
	for _, a := range r.Assertions {
		if !a.OK {
			return false
		}
	}
	return true
}

// Failed returns the assertions that did not hold.
func (r Report) Failed() []Assertion {
	var out []Assertion
	for _, a := range r.Assertions {
		if !a.OK {
			out = append(out, a)
		}
	}
	return out
}

// Diff renders every assertion, one per line.
func (r Report) Diff() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", r.Subject)
	for _, a := range r.Assertions {
		b.WriteString("  ")
		b.WriteString(a.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Err is nil when the report passed, else an ErrCodeVerification error
// listing the mismatched fields.
func (r Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	fields := make([]string, 0, len(failed))
	for _, a := range failed {
		fields = append(fields, a.Field)
	}
	return merrors.Newf(merrors.ErrCodeVerification, r.Subject, "%d post-condition(s) failed: %s", len(failed), strings.Join(fields, ", ")).
		WithContext("diff", r.Diff())
}
