package entities

import "strings"

const roslynReason = "Roslyn dependencies affect the .NET SDK and Visual Studio versions we support " +
	"and should not be automated"

// ExclusionPolicy is the engineering block list of dependencies that are never updated.
type ExclusionPolicy struct {
	reasons map[string]string
}

// DefaultExclusions are the dependencies blocked out of the box.
func DefaultExclusions() map[string]string {
	return map[string]string{
		"Particular.Analyzers":                    "Distributed via RepoStandards",
		"Microsoft.Build.Utilities.Core":          roslynReason,
		"Microsoft.CodeAnalysis.CSharp":           roslynReason,
		"Microsoft.CodeAnalysis.CSharp.Workspaces": roslynReason,
	}
}

// NewExclusionPolicy merges the defaults with extra entries; extra entries win.
func NewExclusionPolicy(extra map[string]string) ExclusionPolicy {
	reasons := make(map[string]string)
	for name, reason := range DefaultExclusions() {
		reasons[strings.ToLower(name)] = reason
	}
	for name, reason := range extra {
		reasons[strings.ToLower(name)] = reason
	}
	return ExclusionPolicy{reasons: reasons}
}

// Excludes returns the reason name is blocked, if it is.
func (p ExclusionPolicy) Excludes(name string) (string, bool) {
	reason, ok := p.reasons[strings.ToLower(name)]
	return reason, ok
}
