package entities

import "strings"

// PackageVersion is one version reported by a metadata source.
type PackageVersion struct {
	Version    Version
	ProjectURL string
}

// CandidateVersion is a published version at or above a dependency's baseline,
// merged across every source that reported it.
type CandidateVersion struct {
	Version    Version
	Sources    []string
	ProjectURL string
}

// SourceNames renders the originating sources for logs.
func (c CandidateVersion) SourceNames() string {
	return strings.Join(c.Sources, ", ")
}

// ResolveResult is the output of resolving one dependency.
type ResolveResult struct {
	Dependency Dependency
	// Candidates are ordered ascending by version.
	Candidates []CandidateVersion
	// ExclusionReason is set when the static exclusion policy blocked the dependency.
	ExclusionReason string
	// Err is set when no applicable source answered.
	Err error
}

// Latest returns the highest candidate, if any.
func (r ResolveResult) Latest() (CandidateVersion, bool) {
	if len(r.Candidates) == 0 {
		return CandidateVersion{}, false
	}
	return r.Candidates[len(r.Candidates)-1], true
}

// Excluded reports whether the dependency was blocked by the exclusion policy.
func (r ResolveResult) Excluded() bool { return r.ExclusionReason != "" }
