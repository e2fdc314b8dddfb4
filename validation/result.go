// Package validation checks candidate access-item configurations against a
// platform manifest: allow-list membership per axis, the conditional
// requirement chain for shared-account onboarding, and PAM confirmation
// gating. All checks collect errors; nothing here panics or fails fast.
package validation

// FieldError is one user-correctable problem with a configuration field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of validating one configuration. An empty error list
// means the configuration is valid.
type Result struct {
	Errors []FieldError `json:"errors,omitempty"`
}

// Valid reports whether the configuration passed every check.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Messages flattens the errors into human-readable strings, one per field.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Field+": "+e.Message)
	}
	return out
}

func (r *Result) add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}
