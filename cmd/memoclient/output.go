package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/pushchain/memo-clients/memoClient/client"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
)

// Output formats
const (
	OutputFormatYAML = "yaml"
	OutputFormatJSON = "json"
)

// OutcomeOutput is the printed result of one submitted operation.
type OutcomeOutput struct {
	Operation        string  `yaml:"operation" json:"operation"`
	Signature        string  `yaml:"signature,omitempty" json:"signature,omitempty"`
	Slot             uint64  `yaml:"slot,omitempty" json:"slot,omitempty"`
	ComputeUnitLimit uint32  `yaml:"compute_unit_limit,omitempty" json:"compute_unit_limit,omitempty"`
	SimulatedUnits   uint64  `yaml:"simulated_units,omitempty" json:"simulated_units,omitempty"`
	UnitsConsumed    uint64  `yaml:"units_consumed,omitempty" json:"units_consumed,omitempty"`
	ID               *uint64 `yaml:"id,omitempty" json:"id,omitempty"`
	ExpectedFailure  bool    `yaml:"expected_failure,omitempty" json:"expected_failure,omitempty"`
	Hint             string  `yaml:"hint,omitempty" json:"hint,omitempty"`
}

func printOutput(w io.Writer, data interface{}, format string) error {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(data)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// printOutcome prints a landed or expectedly failed operation. withID
// adds the record id for id-addressed operations.
func printOutcome(cmd *cobra.Command, out client.Outcome, err error, withID bool) error {
	if err != nil {
		return err
	}
	view := OutcomeOutput{
		Operation:        out.Op.String(),
		Slot:             out.Slot,
		ComputeUnitLimit: out.Plan.Limit,
		SimulatedUnits:   out.Plan.Simulated,
		UnitsConsumed:    out.UnitsConsumed,
		ExpectedFailure:  out.ExpectedFailure,
	}
	if !out.ExpectedFailure {
		view.Signature = out.Signature.String()
	}
	if withID {
		id := out.ID
		view.ID = &id
	}
	if out.Hint != nil {
		view.Hint = out.Hint.Key
	}
	return printOutput(cmd.OutOrStdout(), view, outputFormat(cmd))
}

// printHint writes the classified advice for err unless its message
// already carries it.
func printHint(w io.Writer, err error) {
	if h, ok := merrors.HintOf(err); ok && !strings.Contains(err.Error(), h.Advice) {
		fmt.Fprintf(w, "hint [%s]: %s\n", h.Key, h.Advice)
	}
}

func outputFormat(cmd *cobra.Command) string {
	f, err := cmd.Flags().GetString("output")
	if err != nil || f == "" {
		return OutputFormatYAML
	}
	return f
}

// parseUint parses a positional numeric argument.
func parseUint(name, raw string) (uint64, error) {
	v, err := cast.ToUint64E(raw)
	if err != nil {
		return 0, merrors.New(merrors.ErrCodeValidation, "args", fmt.Sprintf("%s must be a non-negative integer, got %q", name, raw), err)
	}
	return v, nil
}
