package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

// CreateProposal persists a proposal; a duplicate payload from the same
// proposer returns domain.ErrConflict
func (s *pgStore) CreateProposal(ctx context.Context, proposal *schema.Proposal) error {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "proposer_id"}, {Name: "payload_hash"}},
		DoNothing: true,
	}).Create(proposal)
	if result.Error != nil {
		return fmt.Errorf("failed to create proposal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

// GetProposal retrieves a proposal by its ULID
func (s *pgStore) GetProposal(ctx context.Context, id string) (*schema.Proposal, error) {
	var proposal schema.Proposal
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&proposal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return &proposal, nil
}

// ListProposalsByState retrieves proposals in a given state
func (s *pgStore) ListProposalsByState(ctx context.Context, state schema.ProposalState) ([]schema.Proposal, error) {
	var proposals []schema.Proposal
	err := s.db.WithContext(ctx).
		Where("state = ?", state).
		Order("created_at ASC").
		Find(&proposals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	return proposals, nil
}

// CastVote records a vote and accumulates its weight atomically; a second
// vote from the same voter returns domain.ErrConflict. The proposal row is
// locked so concurrent votes serialize their weight accumulation.
func (s *pgStore) CastVote(ctx context.Context, vote *schema.Vote) (*schema.Proposal, error) {
	var proposal schema.Proposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", vote.ProposalID).
			First(&proposal).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to lock proposal: %w", err)
		}

		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "proposal_id"}, {Name: "voter_id"}},
			DoNothing: true,
		}).Create(vote)
		if result.Error != nil {
			return fmt.Errorf("failed to create vote: %w", result.Error)
		}
		if vote.ID == 0 {
			return domain.ErrConflict
		}

		proposal.AccumulatedWeight += vote.Weight
		if err := tx.Model(&schema.Proposal{}).
			Where("id = ?", proposal.ID).
			Update("accumulated_weight", proposal.AccumulatedWeight).Error; err != nil {
			return fmt.Errorf("failed to accumulate vote weight: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &proposal, nil
}

// TransitionProposal moves a proposal between states exactly once
func (s *pgStore) TransitionProposal(ctx context.Context, id string, from, to schema.ProposalState, cooldownUntil, activatedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{"state": to}
	if cooldownUntil != nil {
		updates["cooldown_until"] = *cooldownUntil
	}
	if activatedAt != nil {
		updates["activated_at"] = *activatedAt
	}

	result := s.db.WithContext(ctx).Model(&schema.Proposal{}).
		Where("id = ? AND state = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition proposal: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// UpsertDelegation creates or updates a delegation edge
func (s *pgStore) UpsertDelegation(ctx context.Context, delegation *schema.Delegation) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "delegator_id"}, {Name: "delegate_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"weight"}),
	}).Create(delegation).Error
	if err != nil {
		return fmt.Errorf("failed to upsert delegation: %w", err)
	}
	return nil
}

// GetDelegation returns the edge between two accounts, or nil
func (s *pgStore) GetDelegation(ctx context.Context, delegatorID, delegateID int64) (*schema.Delegation, error) {
	var delegation schema.Delegation
	err := s.db.WithContext(ctx).
		Where("delegator_id = ? AND delegate_id = ?", delegatorID, delegateID).
		First(&delegation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get delegation: %w", err)
	}
	return &delegation, nil
}

// SumDelegatedWeight returns the total weight delegated to an account
func (s *pgStore) SumDelegatedWeight(ctx context.Context, delegateID int64) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&schema.Delegation{}).
		Select("COALESCE(SUM(weight), 0)").
		Where("delegate_id = ?", delegateID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum delegated weight: %w", err)
	}
	return total, nil
}

// SumDelegatedOut returns the total weight an account has delegated away
func (s *pgStore) SumDelegatedOut(ctx context.Context, delegatorID int64) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&schema.Delegation{}).
		Select("COALESCE(SUM(weight), 0)").
		Where("delegator_id = ?", delegatorID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum delegated-out weight: %w", err)
	}
	return total, nil
}
