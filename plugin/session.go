package plugin

import (
	"fmt"

	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/validation"
)

// State is the lifecycle state of one access item moving through a plugin.
type State string

const (
	StateUnconfigured State = "UNCONFIGURED"
	StateTypeSelected State = "TYPE_SELECTED"
	StateConfiguring  State = "CONFIGURING"
	StateSaved        State = "SAVED"
)

// Session tracks a single access item's setup lifecycle:
// UNCONFIGURED → TYPE_SELECTED → CONFIGURING (validation loop, may cycle) →
// SAVED. Saved items can be reopened and re-enter CONFIGURING. Deletion is
// handled outside the plugin; there are no other terminal states.
type Session struct {
	state    State
	itemType manifest.AccessItemType
	config   map[string]any
}

// NewSession starts a fresh, unconfigured session.
func NewSession() *Session {
	return &Session{state: StateUnconfigured}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// AccessItemType returns the selected type, empty until one is chosen.
func (s *Session) AccessItemType() manifest.AccessItemType {
	return s.itemType
}

// Config returns the most recently supplied configuration.
func (s *Session) Config() map[string]any {
	return s.config
}

// SelectType chooses the access-item type. Re-selecting while configuring
// restarts the flow with an empty configuration.
func (s *Session) SelectType(t manifest.AccessItemType) error {
	if s.state == StateSaved {
		return fmt.Errorf("session: cannot change type of a saved item; reopen it first")
	}
	s.itemType = t
	s.config = nil
	s.state = StateTypeSelected
	return nil
}

// Configure records a candidate configuration and enters the validation loop.
func (s *Session) Configure(cfg map[string]any) error {
	switch s.state {
	case StateTypeSelected, StateConfiguring:
		s.config = cfg
		s.state = StateConfiguring
		return nil
	default:
		return fmt.Errorf("session: cannot configure in state %s", s.state)
	}
}

// Save finalizes the session if the supplied validation result is clean.
// An invalid result keeps the session in CONFIGURING; validation failures
// are recoverable and the loop continues.
func (s *Session) Save(res validation.Result) error {
	if s.state != StateConfiguring {
		return fmt.Errorf("session: cannot save in state %s", s.state)
	}
	if !res.Valid() {
		return fmt.Errorf("session: configuration has %d unresolved field errors", len(res.Errors))
	}
	s.state = StateSaved
	return nil
}

// Reopen returns a saved item to the configuration loop for editing.
func (s *Session) Reopen() error {
	if s.state != StateSaved {
		return fmt.Errorf("session: cannot reopen in state %s", s.state)
	}
	s.state = StateConfiguring
	return nil
}
