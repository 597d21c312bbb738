package entities

import "fmt"

// UpgradeRecommendation is the decision for one dependency.
// A nil Recommended means no eligible upgrade exists above the baseline.
type UpgradeRecommendation struct {
	Dependency  Dependency
	Recommended *CandidateVersion
}

// HasUpgrade reports whether a version was recommended.
func (r UpgradeRecommendation) HasUpgrade() bool { return r.Recommended != nil }

func (r UpgradeRecommendation) String() string {
	if r.Recommended == nil {
		return fmt.Sprintf("%s: no upgrade required", r.Dependency.Name)
	}
	return fmt.Sprintf(
		"%s: upgrade %s to %s",
		r.Dependency.Name, r.Dependency.ExistingVersionsString(), r.Recommended.Version,
	)
}
