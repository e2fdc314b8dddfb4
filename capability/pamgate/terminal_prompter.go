package pamgate

import (
	"fmt"
	"os"

	"github.com/accessplane/access-host-sdk/capability"
	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/validation"
	"github.com/charmbracelet/huh"
)

// TerminalPrompter provides interactive terminal prompting for PAM
// confirmations.
type TerminalPrompter struct{}

// NewTerminalPrompter creates a new TerminalPrompter.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// PromptForConfirmation asks the operator to acknowledge discouraged
// shared-account access, collecting a reason code and justification when the
// platform is break-glass only.
func (p *TerminalPrompter) PromptForConfirmation(req capability.ConfirmationRequest) (capability.Confirmation, bool, error) {
	conf := capability.Confirmation{PlatformKey: req.PlatformKey}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "\033[1;33mSecurity Warning: Shared-Account Access\033[0m\n\n")
	fmt.Fprintf(os.Stderr, "  Platform %s marks shared-account access as %s.\n", req.PlatformKey, req.Recommendation)
	if req.Rationale != "" {
		fmt.Fprintf(os.Stderr, "  Rationale: %s\n", req.Rationale)
	}
	fmt.Fprintf(os.Stderr, "\n")

	const (
		OptionYes    = "Yes, confirm for this setup"
		OptionAlways = "Always confirm for this platform (save to config)"
		OptionNo     = "No, abort"
	)

	var selection string
	err := huh.NewSelect[string]().
		Title("Confirm Discouraged Shared-Account Access").
		Description(fmt.Sprintf("%s (%s ownership)", req.PlatformKey, req.Ownership)).
		Options(
			huh.NewOption(OptionYes, OptionYes),
			huh.NewOption(OptionAlways, OptionAlways),
			huh.NewOption(OptionNo, OptionNo),
		).
		Value(&selection).
		Run()
	if err != nil {
		return conf, false, err
	}
	if selection == OptionNo {
		return conf, false, nil
	}
	conf.Confirmed = true
	always := selection == OptionAlways

	if !req.RequiresReason {
		return conf, always, nil
	}

	reasonOptions := make([]huh.Option[string], 0, len(manifest.BreakGlassReasons))
	for _, r := range manifest.BreakGlassReasons {
		reasonOptions = append(reasonOptions, huh.NewOption(string(r), string(r)))
	}

	var reason, justification string
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Break-Glass Reason").
				Options(reasonOptions...).
				Value(&reason),
			huh.NewInput().
				Title("Justification").
				Description(fmt.Sprintf("At least %d characters", validation.MinJustificationLength)).
				Validate(func(s string) error {
					if len(s) < validation.MinJustificationLength {
						return fmt.Errorf("justification must be at least %d characters", validation.MinJustificationLength)
					}
					return nil
				}).
				Value(&justification),
		),
	).Run()
	if err != nil {
		return capability.Confirmation{PlatformKey: req.PlatformKey}, false, err
	}

	conf.ReasonCode = manifest.BreakGlassReason(reason)
	conf.Justification = justification
	return conf, always, nil
}

// FormatNonInteractiveError explains what a non-interactive caller must
// supply instead of the prompt.
func (p *TerminalPrompter) FormatNonInteractiveError(req capability.ConfirmationRequest) error {
	if req.RequiresReason {
		return fmt.Errorf(
			"platform %s requires break-glass confirmation: set pamConfirmation=true, a breakGlassReasonCode, and a breakGlassJustification of at least %d characters, or run interactively",
			req.PlatformKey, validation.MinJustificationLength)
	}
	return fmt.Errorf(
		"platform %s marks shared-account access as %s: set pamConfirmation=true or run interactively",
		req.PlatformKey, req.Recommendation)
}
