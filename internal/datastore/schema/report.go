package schema

import (
	"github.com/zancompute/zanconfig/internal/errors"
)

// Step names recorded in a Report.
const (
	StepCreateTable  = "create_table"
	StepInspect      = "inspect_columns"
	StepAddColumn    = "add_column"
	StepRetypeColumn = "retype_column"
	StepAlignDefault = "align_default"
	StepBackfill     = "backfill"
	StepAssignKeys   = "assign_client_keys"
	StepAdoptKeys    = "adopt_client_keys"
)

// StepResult is the outcome of a single statement run by the Manager.
type StepResult struct {
	Step   string
	Table  string
	Column string
	// Rows is the number of rows touched, for data steps.
	Rows int64
	Err  error
}

// Report collects every statement outcome of one Run.
type Report struct {
	Results []StepResult
}

func (r *Report) add(res StepResult) {
	r.Results = append(r.Results, res)
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []StepResult {
	var out []StepResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Applied counts the successful statements of the given step.
func (r *Report) Applied(step string) int {
	n := 0
	for _, res := range r.Results {
		if res.Step == step && res.Err == nil {
			n++
		}
	}
	return n
}

// RowsTouched sums the rows changed by successful statements of a step.
func (r *Report) RowsTouched(step string) int64 {
	var n int64
	for _, res := range r.Results {
		if res.Step == step && res.Err == nil {
			n += res.Rows
		}
	}
	return n
}

// Err joins all failures into one error, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, errors.New(res.Err).
			Component("schema").
			Category(errors.CategorySchemaEvolution).
			Context("step", res.Step).
			Context("table", res.Table).
			Context("column", res.Column).
			Build())
	}
	return errors.Join(errs...)
}
