package validation

import (
	"fmt"

	"github.com/accessplane/access-host-sdk/capability"
	"github.com/accessplane/access-host-sdk/manifest"
	jv "github.com/jellydator/validation"
)

// Configuration map keys consumed by the validator, beyond the capability
// context keys. Keys follow the wire format access items are stored in.
const (
	KeyAccessItemType          = "accessItemType"
	KeyVerificationMode        = "verificationMode"
	KeyAgencyIdentityID        = "agencyIdentityId"
	KeyIdentityType            = "identityType"
	KeyNamingTemplate          = "namingTemplate"
	KeyCheckoutDurationMinutes = "checkoutDurationMinutes"
	KeyCheckoutApproverGroup   = "checkoutApproverGroup"
	KeyIntegrationIdentityID   = "integrationIdentityId"
	KeyPAMConfirmation         = "pamConfirmation"
	KeyBreakGlassReasonCode    = "breakGlassReasonCode"
	KeyBreakGlassJustification = "breakGlassJustification"
)

// MinJustificationLength is the minimum break-glass justification length.
const MinJustificationLength = 20

// ValidateConfig validates a candidate configuration against the manifest.
// Two independent layers run, and every violation is collected so the caller
// can highlight all offending fields in one pass:
//
//  1. Allow-list membership for each axis present in the input. Absent axes
//     are skipped; partial configurations are valid mid-flow. An empty
//     allow-list leaves that axis unconstrained.
//  2. The conditional-requirement chain for shared-account onboarding, plus
//     PAM confirmation gating when the platform discourages shared accounts.
//
// The function is total: any input, including nil, yields a Result.
func ValidateConfig(m *manifest.Manifest, cfg map[string]any) Result {
	var res Result
	if m == nil || cfg == nil {
		return res
	}

	validateAllowLists(m, cfg, &res)
	validateChain(cfg, &res)
	validateConfirmation(m, cfg, &res)
	return res
}

func validateAllowLists(m *manifest.Manifest, cfg map[string]any, res *Result) {
	if v, ok := stringField(cfg, KeyAccessItemType); ok && len(m.AllowedAccessTypes) > 0 {
		if err := jv.Validate(v, jv.In(toAny(m.AllowedAccessTypes)...)); err != nil {
			res.add(KeyAccessItemType, fmt.Sprintf("value %q is not an allowed access type", v))
		}
	}
	if v, ok := stringField(cfg, capability.KeyPAMOwnership); ok && len(m.AllowedOwnershipModels) > 0 {
		if err := jv.Validate(v, jv.In(toAny(m.AllowedOwnershipModels)...)); err != nil {
			res.add(capability.KeyPAMOwnership, fmt.Sprintf("value %q is not an allowed ownership model", v))
		}
	}
	if v, ok := strategyField(cfg); ok && len(m.AllowedIdentityStrategies) > 0 {
		if err := jv.Validate(v, jv.In(toAny(m.AllowedIdentityStrategies)...)); err != nil {
			res.add(capability.KeyIdentityStrategy, fmt.Sprintf("value %q is not an allowed identity strategy", v))
		}
	}
	if v, ok := stringField(cfg, KeyVerificationMode); ok && len(m.VerificationModes) > 0 {
		if err := jv.Validate(v, jv.In(toAny(m.VerificationModes)...)); err != nil {
			res.add(KeyVerificationMode, fmt.Sprintf("value %q is not an allowed verification mode", v))
		}
	}
}

func validateChain(cfg map[string]any, res *Result) {
	walkChain(cfg, func(field, condition string) {
		if !present(cfg, field) {
			res.add(field, condition)
		}
	})
}

// validateConfirmation enforces operator acknowledgement when the platform
// discourages shared-account access. Each missing element yields its own
// error; there is no catch-all.
func validateConfirmation(m *manifest.Manifest, cfg map[string]any, res *Result) {
	rec := m.SecurityCapabilities.PAMRecommendation
	if rec != manifest.PAMNotRecommended && rec != manifest.PAMBreakGlassOnly {
		return
	}

	itemType, _ := stringField(cfg, KeyAccessItemType)
	ownership, ownershipPresent := stringField(cfg, capability.KeyPAMOwnership)
	_, confirmationPresent := cfg[KeyPAMConfirmation]

	pamEngaged := itemType == string(manifest.SharedAccount) || ownershipPresent || confirmationPresent
	if !pamEngaged {
		return
	}

	// not_recommended gates agency-owned setups only; break_glass_only gates
	// every ownership model.
	if rec == manifest.PAMNotRecommended && ownership != string(manifest.AgencyOwned) {
		return
	}

	if confirmed, _ := boolField(cfg, KeyPAMConfirmation); !confirmed {
		res.add(KeyPAMConfirmation, fmt.Sprintf("explicit confirmation is required: shared-account access is %s for this platform", rec))
	}

	if rec != manifest.PAMBreakGlassOnly {
		return
	}

	if reason, ok := stringField(cfg, KeyBreakGlassReasonCode); !ok {
		res.add(KeyBreakGlassReasonCode, "a reason code is required for break-glass access")
	} else if !manifest.ValidBreakGlassReason(reason) {
		res.add(KeyBreakGlassReasonCode, fmt.Sprintf("value %q is not a recognized break-glass reason code", reason))
	}

	if just, ok := stringField(cfg, KeyBreakGlassJustification); !ok {
		res.add(KeyBreakGlassJustification, "a written justification is required for break-glass access")
	} else if len(just) < MinJustificationLength {
		res.add(KeyBreakGlassJustification, fmt.Sprintf("justification must be at least %d characters", MinJustificationLength))
	}
}

// walkChain walks the fixed conditional-requirement chain, invoking require
// for every field the current configuration makes mandatory. Descent into a
// branch stops once its guarding field is absent, so a missing parent never
// cascades phantom errors for deeper fields.
func walkChain(cfg map[string]any, require func(field, condition string)) {
	itemType, _ := stringField(cfg, KeyAccessItemType)
	if itemType == string(manifest.SharedAccount) {
		require(capability.KeyPAMOwnership, "required for shared-account access")
	}

	ownership, ok := stringField(cfg, capability.KeyPAMOwnership)
	if !ok {
		return
	}

	// CLIENT_OWNED short-circuits the chain: credentials are supplied by the
	// counterparty out-of-band. Unknown values are the allow-list layer's job.
	if ownership != string(manifest.AgencyOwned) {
		return
	}

	require(capability.KeyIdentityPurpose, "required when pamOwnership is AGENCY_OWNED")
	purpose, ok := stringField(cfg, capability.KeyIdentityPurpose)
	if !ok {
		return
	}

	switch purpose {
	case string(manifest.HumanInteractive):
		require(capability.KeyIdentityStrategy, "required when identityPurpose is HUMAN_INTERACTIVE")
		strategy, ok := strategyField(cfg)
		if !ok {
			return
		}
		switch strategy {
		case string(manifest.StaticAgencyIdentity):
			require(KeyAgencyIdentityID, "required when identityStrategy is STATIC_AGENCY_IDENTITY")
		case string(manifest.ClientDedicatedIdentity):
			require(KeyIdentityType, "required when identityStrategy is CLIENT_DEDICATED_IDENTITY")
			require(KeyNamingTemplate, "required when identityStrategy is CLIENT_DEDICATED_IDENTITY")
			if idType, ok := stringField(cfg, KeyIdentityType); ok && idType == string(manifest.IdentityMailbox) {
				require(KeyCheckoutDurationMinutes, "required when identityType is MAILBOX")
				require(KeyCheckoutApproverGroup, "required when identityType is MAILBOX")
			}
		}
	case string(manifest.IntegrationNonHuman):
		require(KeyIntegrationIdentityID, "required when identityPurpose is INTEGRATION_NON_HUMAN")
	}
}

// strategyField reads the canonical identity strategy, falling back to the
// legacy pamIdentityStrategy alias. The canonical field wins when both exist.
func strategyField(cfg map[string]any) (string, bool) {
	if v, ok := stringField(cfg, capability.KeyIdentityStrategy); ok {
		return v, true
	}
	return stringField(cfg, capability.KeyLegacyPAMIdentityStrategy)
}

func stringField(cfg map[string]any, key string) (string, bool) {
	v, ok := cfg[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func boolField(cfg map[string]any, key string) (bool, bool) {
	v, ok := cfg[key].(bool)
	return v, ok
}

// present reports whether a field carries a usable value: non-nil and, for
// strings, non-empty.
func present(cfg map[string]any, key string) bool {
	v, ok := cfg[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return s != ""
	}
	return true
}

func toAny[T ~string](values []T) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}
