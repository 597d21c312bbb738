package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
)

const defaultConcurrency = 8

var skippedDirs = map[string]bool{
	".git":         true,
	".terraform":   true,
	"bin":          true,
	"obj":          true,
	"node_modules": true,
}

type job struct {
	path     string
	manifest repositories.ManifestRepository
}

// Scanner inventories the declared dependencies of a source tree.
type Scanner struct {
	manifests   []repositories.ManifestRepository
	concurrency int
}

// New creates a Scanner dispatching files to the given manifest repositories.
func New(manifests []repositories.ManifestRepository, concurrency int) *Scanner {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Scanner{manifests: manifests, concurrency: concurrency}
}

// Scan walks root and returns one Dependency per case-insensitive name, ordered by name.
// Files that cannot be parsed are logged and skipped.
func (s *Scanner) Scan(ctx context.Context, root string) ([]entities.Dependency, error) {
	jobs, err := s.collect(ctx, root)
	if err != nil {
		return nil, err
	}

	results := make([][]entities.DeclaredPackage, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, j := range jobs {
		g.Go(func() error {
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			found, scanErr := j.manifest.Scan(gctx, j.path)
			if scanErr != nil {
				logger.Warnf("[scanner] Skipping %s: %v", j.path, scanErr)
				return nil
			}
			results[i] = found
			return nil
		})
	}

	if waitErr := g.Wait(); waitErr != nil {
		return nil, fmt.Errorf("scan interrupted: %w", waitErr)
	}

	logger.Debugf("[scanner] Parsed %d manifest files under %s", len(jobs), root)
	return fold(results)
}

func (s *Scanner) collect(ctx context.Context, root string) ([]job, error) {
	var jobs []job

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && skippedDirs[strings.ToLower(d.Name())] {
				return filepath.SkipDir
			}
			return nil
		}
		if manifest := s.match(d.Name()); manifest != nil {
			jobs = append(jobs, job{path: path, manifest: manifest})
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, walkErr)
	}

	return jobs, nil
}

func (s *Scanner) match(fileName string) repositories.ManifestRepository {
	lower := strings.ToLower(fileName)
	for _, m := range s.manifests {
		for _, pattern := range m.Patterns() {
			if ok, _ := filepath.Match(strings.ToLower(pattern), lower); ok {
				return m
			}
		}
	}
	return nil
}

type accumulator struct {
	name      string
	locations []entities.DependencyLocation
	seen      map[string]bool
}

func fold(results [][]entities.DeclaredPackage) ([]entities.Dependency, error) {
	byKey := make(map[string]*accumulator)

	for _, found := range results {
		for _, pkg := range found {
			key := strings.ToLower(pkg.Name)
			acc, ok := byKey[key]
			if !ok {
				acc = &accumulator{name: pkg.Name, seen: make(map[string]bool)}
				byKey[key] = acc
			}
			locKey := pkg.Location.FilePath + "\x00" + string(pkg.Location.Kind) + "\x00" + pkg.Location.Version.String()
			if acc.seen[locKey] {
				continue
			}
			acc.seen[locKey] = true
			acc.locations = append(acc.locations, pkg.Location)
		}
	}

	deps := make([]entities.Dependency, 0, len(byKey))
	for _, acc := range byKey {
		dep, err := entities.NewDependency(acc.name, acc.locations)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Key() != deps[j].Key() {
			return deps[i].Key() < deps[j].Key()
		}
		return deps[i].Name < deps[j].Name
	})

	return deps, nil
}
