package harness

// Result is the outcome of one scenario run.
type Result struct {
	// Pass is true when every assertion and property held.
	Pass bool `json:"pass"`

	// Passes counts the refresh passes run: one, plus one per update.
	Passes int `json:"passes"`

	// Errors holds one message per failed assertion or property.
	Errors []string `json:"errors,omitempty"`

	// Snapshot is the rendered end state, compared against golden files.
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
