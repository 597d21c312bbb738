package upgrader

import (
	"github.com/rios0rios0/pbot/internal/domain/entities"
)

// Decide picks the recommended version for one resolved dependency.
//
// Candidates are walked in ascending order starting from the baseline. A candidate
// replaces the current choice unless it is a prerelease while the choice is stable,
// or an ignore condition for the dependency contains it. The walk only ever moves
// forward, so the final choice is the highest reachable candidate. No recommendation
// is made when the choice never leaves the baseline.
func Decide(result entities.ResolveResult, ignores entities.IgnoreIndex) entities.UpgradeRecommendation {
	rec := entities.UpgradeRecommendation{Dependency: result.Dependency}
	if result.Err != nil || result.Excluded() {
		return rec
	}

	baseline := result.Dependency.Baseline()
	chosen := baseline
	var chosenCandidate *entities.CandidateVersion

	for i := range result.Candidates {
		c := result.Candidates[i]
		if c.Version.LessThan(chosen) {
			continue
		}
		if c.Version.IsPrerelease() && !chosen.IsPrerelease() {
			continue
		}
		if ignores.Suppresses(result.Dependency.Name, c.Version) {
			continue
		}
		chosen = c.Version
		chosenCandidate = &c
	}

	if chosenCandidate == nil || chosen.Equal(baseline) {
		return rec
	}
	rec.Recommended = chosenCandidate
	return rec
}

// DecideAll applies Decide to every result, keeping their order.
func DecideAll(results []entities.ResolveResult, ignores entities.IgnoreIndex) []entities.UpgradeRecommendation {
	recs := make([]entities.UpgradeRecommendation, 0, len(results))
	for _, r := range results {
		recs = append(recs, Decide(r, ignores))
	}
	return recs
}
