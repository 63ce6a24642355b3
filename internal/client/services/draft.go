package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/consultbook/internal/client/models"
	"github.com/dmitrijs2005/consultbook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/consultbook/internal/common"
)

// DraftStore keeps the onboarding draft between runs.
type DraftStore struct {
	repo metadata.Repository
}

func NewDraftStore(repo metadata.Repository) *DraftStore {
	return &DraftStore{repo: repo}
}

func (s *DraftStore) Save(ctx context.Context, d models.ProfileDraft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.repo.Set(ctx, common.KeySetupProgress, b); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Load returns the saved draft, or nil when none was saved.
func (s *DraftStore) Load(ctx context.Context) (*models.ProfileDraft, error) {
	b, err := s.repo.Get(ctx, common.KeySetupProgress)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if b == nil {
		return nil, nil
	}
	var d models.ProfileDraft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

func (s *DraftStore) Delete(ctx context.Context) error {
	return s.repo.Delete(ctx, common.KeySetupProgress)
}
