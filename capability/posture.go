package capability

import (
	"fmt"

	"github.com/accessplane/access-host-sdk/manifest"
)

// RiskLevel represents the risk level of configuring an access item.
type RiskLevel int

const (
	RiskNone RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

// RiskReport contains the overall risk assessment for one access-item setup.
type RiskReport struct {
	RiskFactors []RiskFactor
	Level       RiskLevel
}

// RiskFactor describes a single risk element in an access-item setup.
type RiskFactor struct {
	Description string
	Rule        string
	Level       RiskLevel
}

// AnalyzePosture evaluates the risk of configuring the given access-item type
// from the platform's security posture and the resolved capability set. The
// PAM gate uses the report to decide how loudly to warn; UI callers render it.
func AnalyzePosture(m *manifest.Manifest, t manifest.AccessItemType, resolved manifest.AccessTypeCapability) RiskReport {
	report := RiskReport{Level: RiskNone}
	if m == nil {
		return report
	}

	addFactor := func(level RiskLevel, desc, rule string) {
		if level > RiskNone {
			report.RiskFactors = append(report.RiskFactors, RiskFactor{
				Level:       level,
				Description: desc,
				Rule:        rule,
			})
			if level > report.Level {
				report.Level = level
			}
		}
	}

	sec := m.SecurityCapabilities

	if t == manifest.SharedAccount {
		ruleStr := fmt.Sprintf("PAM: %s", sec.PAMRecommendation)
		switch sec.PAMRecommendation {
		case manifest.PAMBreakGlassOnly:
			addFactor(RiskCritical, "Shared-account access is break-glass only for this platform", ruleStr)
		case manifest.PAMNotRecommended:
			addFactor(RiskHigh, "Shared-account access is not recommended for this platform", ruleStr)
		default:
			addFactor(RiskMedium, "Shared credentials in use", ruleStr)
		}
	}

	if sec.SupportsCredentialLogin && t == manifest.SharedAccount {
		addFactor(RiskMedium, "Direct credential login", "SecurityCapabilities: supportsCredentialLogin")
	}

	if resolved.CanGrantAccess && !resolved.CanVerifyAccess {
		addFactor(RiskMedium, "Programmatic grant without programmatic verification",
			fmt.Sprintf("Capability: %s canGrant without canVerify", t))
	}

	if resolved.RequiresEvidenceUpload {
		addFactor(RiskLow, "Manual evidence handling", fmt.Sprintf("Capability: %s requiresEvidenceUpload", t))
	}

	return report
}
