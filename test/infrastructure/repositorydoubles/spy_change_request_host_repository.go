//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
)

// SpyChangeRequestHostRepository implements repositories.ChangeRequestHostRepository as a configurable spy.
type SpyChangeRequestHostRepository struct {
	// --- identity ---
	ProviderName string

	// --- CreatePullRequest ---
	CreatePRErr error
	// spy: inputs received
	PRInputs []entities.PullRequestInput

	// --- PullRequestExists ---
	PRExistsResult bool
	PRExistsErr    error
	// spy: branch names checked
	PRExistsBranches []string
}

var _ repositories.ChangeRequestHostRepository = (*SpyChangeRequestHostRepository)(nil)

func (h *SpyChangeRequestHostRepository) Name() string { return h.ProviderName }

func (h *SpyChangeRequestHostRepository) CreatePullRequest(
	_ context.Context,
	_ entities.Repository,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	h.PRInputs = append(h.PRInputs, input)
	if h.CreatePRErr != nil {
		return nil, h.CreatePRErr
	}
	return &entities.PullRequest{
		ID:     len(h.PRInputs),
		Title:  input.Title,
		URL:    "https://example.com/pr/" + input.SourceBranch,
		Status: "open",
	}, nil
}

func (h *SpyChangeRequestHostRepository) PullRequestExists(
	_ context.Context,
	_ entities.Repository,
	sourceBranch string,
) (bool, error) {
	h.PRExistsBranches = append(h.PRExistsBranches, sourceBranch)
	return h.PRExistsResult, h.PRExistsErr
}
