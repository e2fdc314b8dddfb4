package plugin

import (
	"bytes"
	"fmt"
	"text/template"
)

// Step is one ordered, human-readable instruction in a manual grant flow.
type Step struct {
	Order  int    `json:"order"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// StepTemplate is the authored source for one instruction step. Title and
// Detail are text/template sources rendered against the access item's
// configuration.
type StepTemplate struct {
	Title  string
	Detail string
}

// InstructionBuilder renders authored step templates into concrete steps
// using the access item's configuration values.
type InstructionBuilder struct {
	steps []StepTemplate
}

// NewInstructionBuilder creates a builder over the given step templates.
func NewInstructionBuilder(steps ...StepTemplate) *InstructionBuilder {
	return &InstructionBuilder{steps: steps}
}

// Build renders every step against the configuration, preserving authored
// order. Missing template keys render as "<no value>" rather than failing;
// an instruction with a gap is still more useful than none.
func (b *InstructionBuilder) Build(cfg map[string]any) ([]Step, error) {
	out := make([]Step, 0, len(b.steps))
	for i, st := range b.steps {
		title, err := render(fmt.Sprintf("step-%d-title", i), st.Title, cfg)
		if err != nil {
			return nil, fmt.Errorf("instruction step %d title: %w", i+1, err)
		}
		detail, err := render(fmt.Sprintf("step-%d-detail", i), st.Detail, cfg)
		if err != nil {
			return nil, fmt.Errorf("instruction step %d detail: %w", i+1, err)
		}
		out = append(out, Step{Order: i + 1, Title: title, Detail: detail})
	}
	return out, nil
}

func render(name, src string, data map[string]any) (string, error) {
	tmpl, err := template.New(name).Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
