package analyze

import "actions-auditor/types"

// checkSeverity is the fixed mapping from scorecard check name to the
// severity its findings carry. Names missing from the table fall back to
// defaultSeverity; an unrecognized check must never be an error.
var checkSeverity = map[string]types.Severity{
	"Dangerous-Workflow":     types.SeverityHigh,
	"Token-Permissions":      types.SeverityMedium,
	"Pinned-Dependencies":    types.SeverityMedium,
	"Branch-Protection":      types.SeverityHigh,
	"Vulnerabilities":        types.SeverityCritical,
	"Webhooks":               types.SeverityCritical,
	"Binary-Artifacts":       types.SeverityHigh,
	"Code-Review":            types.SeverityMedium,
	"Signed-Releases":        types.SeverityMedium,
	"SAST":                   types.SeverityMedium,
	"Maintained":             types.SeverityLow,
	"Security-Policy":        types.SeverityLow,
	"Dependency-Update-Tool": types.SeverityLow,
	"CI-Tests":               types.SeverityLow,
	"Fuzzing":                types.SeverityLow,
	"Contributors":           types.SeverityInfo,
	"License":                types.SeverityInfo,
	"Packaging":              types.SeverityInfo,
	"CII-Best-Practices":     types.SeverityInfo,
}

const defaultSeverity = types.SeverityInfo

// SeverityForCheck returns the severity assigned to a check name.
func SeverityForCheck(name string) types.Severity {
	if sev, ok := checkSeverity[name]; ok {
		return sev
	}
	return defaultSeverity
}
