package validation

// RequiredFields projects the conditional-requirement chain onto a partial
// configuration: it returns every field the chain currently makes mandatory,
// in chain order, whether or not the field is already filled in. Callers
// rendering forms use it to decide which inputs to show next.
func RequiredFields(cfg map[string]any) []string {
	var fields []string
	seen := make(map[string]bool)
	walkChain(cfg, func(field, _ string) {
		if !seen[field] {
			seen[field] = true
			fields = append(fields, field)
		}
	})
	return fields
}

// MissingFields is RequiredFields filtered down to fields not yet supplied.
func MissingFields(cfg map[string]any) []string {
	var fields []string
	walkChain(cfg, func(field, _ string) {
		if !present(cfg, field) {
			fields = append(fields, field)
		}
	})
	return fields
}
