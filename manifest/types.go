// Package manifest defines the static, per-platform declaration of supported
// access-item types, role templates, security posture, and capability rules.
// Manifests are immutable after construction; all runtime decisions are made
// by the capability and validation packages over these values.
package manifest

// AccessItemType names one access pattern a platform supports.
type AccessItemType string

const (
	NamedInvite       AccessItemType = "NAMED_INVITE"
	PartnerDelegation AccessItemType = "PARTNER_DELEGATION"
	GroupAccount      AccessItemType = "GROUP_ACCOUNT"
	ProxyToken        AccessItemType = "PROXY_TOKEN"
	SharedAccount     AccessItemType = "SHARED_ACCOUNT"
)

// OwnershipModel states who supplies and manages shared-account credentials.
type OwnershipModel string

const (
	ClientOwned OwnershipModel = "CLIENT_OWNED"
	AgencyOwned OwnershipModel = "AGENCY_OWNED"
)

// IdentityPurpose distinguishes human-interactive logins from machine integrations.
type IdentityPurpose string

const (
	HumanInteractive    IdentityPurpose = "HUMAN_INTERACTIVE"
	IntegrationNonHuman IdentityPurpose = "INTEGRATION_NON_HUMAN"
)

// IdentityStrategy states how an agency-owned identity is provisioned.
type IdentityStrategy string

const (
	StaticAgencyIdentity    IdentityStrategy = "STATIC_AGENCY_IDENTITY"
	ClientDedicatedIdentity IdentityStrategy = "CLIENT_DEDICATED_IDENTITY"
)

// IdentityType is the kind of dedicated identity provisioned for a client.
type IdentityType string

const (
	IdentityMailbox        IdentityType = "MAILBOX"
	IdentityServiceAccount IdentityType = "SERVICE_ACCOUNT"
)

// VerificationMode is how granted access is verified after setup.
type VerificationMode string

const (
	VerifyOAuthProbe        VerificationMode = "OAUTH_PROBE"
	VerifyAPICheck          VerificationMode = "API_CHECK"
	VerifyScreenshot        VerificationMode = "SCREENSHOT"
	VerifyClientAttestation VerificationMode = "CLIENT_ATTESTATION"
)

// PAMRecommendation is a platform's stance on shared-account access.
type PAMRecommendation string

const (
	PAMRecommended    PAMRecommendation = "recommended"
	PAMNotRecommended PAMRecommendation = "not_recommended"
	PAMBreakGlassOnly PAMRecommendation = "break_glass_only"
)

// BreakGlassReason is one of the fixed reason codes accepted for
// break-glass shared-account access.
type BreakGlassReason string

const (
	ReasonIncidentResponse  BreakGlassReason = "INCIDENT_RESPONSE"
	ReasonAccountLockout    BreakGlassReason = "ACCOUNT_LOCKOUT"
	ReasonPlatformMigration BreakGlassReason = "PLATFORM_MIGRATION"
	ReasonContractExit      BreakGlassReason = "CONTRACT_EXIT"
)

// BreakGlassReasons lists every accepted reason code, in display order.
var BreakGlassReasons = []BreakGlassReason{
	ReasonIncidentResponse,
	ReasonAccountLockout,
	ReasonPlatformMigration,
	ReasonContractExit,
}

// ValidBreakGlassReason reports whether s is one of the accepted reason codes.
func ValidBreakGlassReason(s string) bool {
	for _, r := range BreakGlassReasons {
		if string(r) == s {
			return true
		}
	}
	return false
}
