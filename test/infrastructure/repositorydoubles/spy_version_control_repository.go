//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"strings"

	"github.com/rios0rios0/pbot/internal/domain/repositories"
)

// SpyVersionControlRepository implements repositories.VersionControlRepository in memory.
// Every call is appended to Calls as "Method:arg" so tests can assert ordering.
type SpyVersionControlRepository struct {
	RootDir    string
	Branch     string
	URL        string
	URLErr     error
	FetchErr   error
	RemoteErr  error
	ResetErr   error
	CreateErr  error
	StageErr   error
	CommitErr  error
	PushErr    error
	PushErrFor map[string]error // branch -> error

	// RemoteBranches lists existing remote branches (compared case-insensitively).
	RemoteBranches []string
	// LocalBranches lists existing local branches; CreateBranch reports replacement for these.
	LocalBranches []string

	// spy
	Calls       []string
	Commits     []string
	Signatures  []repositories.CommitSignature
	Pushed      []string
	ResetTarget []string
}

var _ repositories.VersionControlRepository = (*SpyVersionControlRepository)(nil)

func (v *SpyVersionControlRepository) record(method, arg string) {
	v.Calls = append(v.Calls, method+":"+arg)
}

func (v *SpyVersionControlRepository) Root() string { return v.RootDir }

func (v *SpyVersionControlRepository) CurrentBranch(_ context.Context) (string, error) {
	v.record("CurrentBranch", "")
	if v.Branch == "" {
		return "main", nil
	}
	return v.Branch, nil
}

func (v *SpyVersionControlRepository) RemoteURL(_ context.Context) (string, error) {
	return v.URL, v.URLErr
}

func (v *SpyVersionControlRepository) Fetch(_ context.Context) error {
	v.record("Fetch", "")
	return v.FetchErr
}

func (v *SpyVersionControlRepository) RemoteBranchExists(_ context.Context, branch string) (bool, error) {
	v.record("RemoteBranchExists", branch)
	if v.RemoteErr != nil {
		return false, v.RemoteErr
	}
	for _, b := range v.RemoteBranches {
		if strings.EqualFold(b, branch) {
			return true, nil
		}
	}
	return false, nil
}

func (v *SpyVersionControlRepository) ResetToBranch(_ context.Context, branch string) error {
	v.record("ResetToBranch", branch)
	v.ResetTarget = append(v.ResetTarget, branch)
	return v.ResetErr
}

func (v *SpyVersionControlRepository) CreateBranch(_ context.Context, branch, base string) (bool, error) {
	v.record("CreateBranch", branch+"@"+base)
	if v.CreateErr != nil {
		return false, v.CreateErr
	}
	for _, b := range v.LocalBranches {
		if b == branch {
			return true, nil
		}
	}
	v.LocalBranches = append(v.LocalBranches, branch)
	return false, nil
}

func (v *SpyVersionControlRepository) StageAll(_ context.Context) error {
	v.record("StageAll", "")
	return v.StageErr
}

func (v *SpyVersionControlRepository) Commit(
	_ context.Context,
	message string,
	signature repositories.CommitSignature,
) (string, error) {
	v.record("Commit", "")
	if v.CommitErr != nil {
		return "", v.CommitErr
	}
	v.Commits = append(v.Commits, message)
	v.Signatures = append(v.Signatures, signature)
	return fmt.Sprintf("%040d", len(v.Commits)), nil
}

func (v *SpyVersionControlRepository) Push(_ context.Context, branch string) error {
	v.record("Push", branch)
	if err, ok := v.PushErrFor[branch]; ok {
		return err
	}
	if v.PushErr != nil {
		return v.PushErr
	}
	v.Pushed = append(v.Pushed, branch)
	v.RemoteBranches = append(v.RemoteBranches, branch)
	return nil
}
