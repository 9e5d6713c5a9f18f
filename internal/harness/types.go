package harness

import "github.com/roach88/lcq/internal/engine"

// Result is the outcome of running a query with its expectations.
type Result struct {
	// Pass indicates every assertion held.
	Pass bool `json:"pass"`

	// Run is the engine result. Nil when the run itself failed.
	Run *engine.Result `json:"run,omitempty"`

	// Errors contains assertion failures or the run error.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
