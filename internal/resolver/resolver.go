package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
)

const defaultConcurrency = 4

// Resolver gathers candidate versions for dependencies from every metadata source.
type Resolver struct {
	sources     []repositories.MetadataSourceRepository
	exclusions  entities.ExclusionPolicy
	concurrency int
}

// New creates a Resolver. Concurrency bounds how many dependencies resolve at once.
func New(
	sources []repositories.MetadataSourceRepository,
	exclusions entities.ExclusionPolicy,
	concurrency int,
) *Resolver {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Resolver{sources: sources, exclusions: exclusions, concurrency: concurrency}
}

// ResolveAll resolves every dependency; results keep the input order.
func (r *Resolver) ResolveAll(ctx context.Context, deps []entities.Dependency) []entities.ResolveResult {
	results := make([]entities.ResolveResult, len(deps))

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for i, dep := range deps {
		g.Go(func() error {
			results[i] = r.Resolve(ctx, dep)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Resolve queries all sources of the dependency's ecosystem concurrently and merges
// their answers into ascending candidates at or above the baseline.
func (r *Resolver) Resolve(ctx context.Context, dep entities.Dependency) entities.ResolveResult {
	result := entities.ResolveResult{Dependency: dep}

	if reason, excluded := r.exclusions.Excludes(dep.Name); excluded {
		logger.Infof("[resolver] %s is excluded: %s", dep.Name, reason)
		result.ExclusionReason = reason
		return result
	}

	sources := r.sourcesFor(dep.Ecosystem())
	if len(sources) == 0 {
		logger.Debugf("[resolver] No metadata source serves %s (%s)", dep.Name, dep.Ecosystem())
		return result
	}

	baseline := dep.Baseline()
	includePrerelease := baseline.IsPrerelease()

	answers := make([][]entities.PackageVersion, len(sources))
	failures := make([]error, len(sources))

	// Each source reports its own failure so one error never cancels the others.
	g := new(errgroup.Group)
	for i, source := range sources {
		g.Go(func() error {
			versions, err := source.Query(ctx, dep.Name, includePrerelease)
			if err != nil {
				logger.Warnf("[resolver] Source %s failed for %s: %v", source.Name(), dep.Name, err)
				failures[i] = fmt.Errorf("%s: %w", source.Name(), err)
				return nil
			}
			answers[i] = versions
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range failures {
		if err != nil {
			failed++
		}
	}
	if failed == len(sources) {
		result.Err = errors.Join(append([]error{entities.ErrAllSourcesFailed}, failures...)...)
		return result
	}

	result.Candidates = merge(sources, answers, baseline, includePrerelease)
	return result
}

func (r *Resolver) sourcesFor(ecosystem string) []repositories.MetadataSourceRepository {
	var matched []repositories.MetadataSourceRepository
	for _, s := range r.sources {
		if s.Ecosystem() == ecosystem {
			matched = append(matched, s)
		}
	}
	return matched
}

func merge(
	sources []repositories.MetadataSourceRepository,
	answers [][]entities.PackageVersion,
	baseline entities.Version,
	includePrerelease bool,
) []entities.CandidateVersion {
	var candidates []entities.CandidateVersion

	for i, versions := range answers {
		for _, pv := range versions {
			if pv.Version.LessThan(baseline) {
				continue
			}
			if pv.Version.IsPrerelease() && !includePrerelease {
				continue
			}

			pos := indexOf(candidates, pv.Version)
			if pos < 0 {
				candidates = append(candidates, entities.CandidateVersion{
					Version:    pv.Version,
					Sources:    []string{sources[i].Name()},
					ProjectURL: pv.ProjectURL,
				})
				continue
			}

			existing := &candidates[pos]
			if !contains(existing.Sources, sources[i].Name()) {
				existing.Sources = append(existing.Sources, sources[i].Name())
			}
			if existing.ProjectURL == "" {
				existing.ProjectURL = pv.ProjectURL
			}
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Version.LessThan(candidates[b].Version)
	})
	return candidates
}

func indexOf(candidates []entities.CandidateVersion, v entities.Version) int {
	for i, c := range candidates {
		if c.Version.Equal(v) {
			return i
		}
	}
	return -1
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
