package governance

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/adapter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/emitter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

// Config holds the governance parameters
type Config struct {
	// Quorum is the accumulated vote weight a proposal needs
	Quorum int64
	// Cooldown is the delay between reaching quorum and activation
	Cooldown time.Duration
	// ProposalTTL bounds how long a submitted proposal may gather votes
	ProposalTTL time.Duration
	// BaseVoteWeight is the fixed weight every agent vote carries
	BaseVoteWeight int64
	// ReputationDivisor scales account reputation into bonus weight
	ReputationDivisor int64
	// ReputationCap bounds the reputation bonus
	ReputationCap int64
	// DelegationCap bounds the total weight one delegator may delegate away
	DelegationCap int64
}

// Service runs the proposal/vote/delegation lifecycle for agent accounts.
//
//go:generate mockgen -source=service.go -destination=../mocks/governance.go -package=mocks -mock_names=Service=MockGovernanceService
type Service interface {
	// Propose submits a proposal signed by the proposing agent
	Propose(ctx context.Context, proposerExternalID string, payload []byte, signature string) (*schema.Proposal, error)
	// Vote casts a signed vote; weight is resolved server-side
	Vote(ctx context.Context, proposalID, voterExternalID, signature string) (*schema.Proposal, error)
	// Delegate assigns part of the delegator's weight to another agent
	Delegate(ctx context.Context, delegatorExternalID, delegateExternalID string, weight int64) error
	// Tick advances the state machine: activates cooled-down proposals and
	// expires stale ones
	Tick(ctx context.Context) error
	// GetProposal retrieves a proposal by id
	GetProposal(ctx context.Context, id string) (*schema.Proposal, error)
}

type service struct {
	store   store.Store
	emitter emitter.Emitter
	clock   adapter.Clock
	config  Config
}

// NewService creates a new governance service
func NewService(st store.Store, em emitter.Emitter, clock adapter.Clock, cfg Config) Service {
	return &service{
		store:   st,
		emitter: em,
		clock:   clock,
		config:  cfg,
	}
}

// requireAgent resolves an external id to an agent account with a bound
// chain address. Non-agent accounts may not participate.
func (s *service) requireAgent(ctx context.Context, externalID string) (*schema.Account, error) {
	account, err := s.store.GetAccountByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, externalID)
	}
	if account.Kind != schema.AccountKindAgent {
		return nil, fmt.Errorf("%w: account %s is not an agent", domain.ErrForbidden, externalID)
	}
	if account.ChainAddress == nil {
		return nil, fmt.Errorf("%w: agent %s has no bound chain address", domain.ErrForbidden, externalID)
	}
	return account, nil
}

// Propose submits a proposal signed by the proposing agent
func (s *service) Propose(ctx context.Context, proposerExternalID string, payload []byte, signature string) (*schema.Proposal, error) {
	proposer, err := s.requireAgent(ctx, proposerExternalID)
	if err != nil {
		return nil, err
	}

	payloadHash, err := canonicalHash(payload)
	if err != nil {
		return nil, err
	}

	// Agents sign the canonical payload hash, so formatting differences in
	// the submitted JSON cannot invalidate the signature.
	if err := verifyAgentSignature(*proposer.ChainAddress, []byte(payloadHash), signature); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	proposal := &schema.Proposal{
		ID:          ulid.MustNewDefault(now).String(),
		ProposerID:  proposer.ID,
		Payload:     datatypes.JSON(payload),
		PayloadHash: payloadHash,
		State:       schema.ProposalStateSubmitted,
		ExpiresAt:   now.Add(s.config.ProposalTTL),
		CreatedAt:   now,
	}
	if err := s.store.CreateProposal(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	logger.InfoCtx(ctx, "proposal submitted",
		zap.String("proposal_id", proposal.ID),
		zap.String("proposer", proposerExternalID))
	return proposal, nil
}

// voteWeight resolves the voter's effective weight: a fixed base, a bounded
// reputation bonus, plus weight delegated in, minus weight delegated away.
func (s *service) voteWeight(ctx context.Context, voter *schema.Account) (int64, error) {
	weight := s.config.BaseVoteWeight

	if s.config.ReputationDivisor > 0 && voter.Reputation > 0 {
		bonus := voter.Reputation / s.config.ReputationDivisor
		if bonus > s.config.ReputationCap {
			bonus = s.config.ReputationCap
		}
		weight += bonus
	}

	delegatedIn, err := s.store.SumDelegatedWeight(ctx, voter.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum delegated weight: %w", err)
	}
	delegatedOut, err := s.store.SumDelegatedOut(ctx, voter.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum delegated-out weight: %w", err)
	}

	weight += delegatedIn - delegatedOut
	if weight < 0 {
		weight = 0
	}
	return weight, nil
}

// Vote casts a signed vote
func (s *service) Vote(ctx context.Context, proposalID, voterExternalID, signature string) (*schema.Proposal, error) {
	voter, err := s.requireAgent(ctx, voterExternalID)
	if err != nil {
		return nil, err
	}
	if err := verifyAgentSignature(*voter.ChainAddress, []byte(proposalID), signature); err != nil {
		return nil, err
	}

	proposal, err := s.store.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	if proposal == nil {
		return nil, fmt.Errorf("%w: proposal %s", domain.ErrNotFound, proposalID)
	}

	now := s.clock.Now()
	if proposal.State != schema.ProposalStateSubmitted {
		return nil, fmt.Errorf("%w: proposal %s is no longer accepting votes", domain.ErrConflict, proposalID)
	}
	if now.After(proposal.ExpiresAt) {
		if _, err := s.store.TransitionProposal(ctx, proposalID,
			schema.ProposalStateSubmitted, schema.ProposalStateExpired, nil, nil); err != nil {
			return nil, fmt.Errorf("failed to expire proposal: %w", err)
		}
		s.emitter.Emit(ctx, domain.EventCategoryGovernance, domain.EventTypeProposalExpired, "", map[string]interface{}{
			"proposal_id": proposalID,
		})
		return nil, fmt.Errorf("%w: proposal %s has expired", domain.ErrConflict, proposalID)
	}

	weight, err := s.voteWeight(ctx, voter)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.CastVote(ctx, &schema.Vote{
		ProposalID: proposalID,
		VoterID:    voter.ID,
		Weight:     weight,
		Signature:  signature,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cast vote: %w", err)
	}

	if updated.State == schema.ProposalStateSubmitted && updated.AccumulatedWeight >= s.config.Quorum {
		cooldownUntil := now.Add(s.config.Cooldown)
		moved, err := s.store.TransitionProposal(ctx, proposalID,
			schema.ProposalStateSubmitted, schema.ProposalStateQuorumReached, &cooldownUntil, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to mark quorum: %w", err)
		}
		if moved {
			updated.State = schema.ProposalStateQuorumReached
			updated.CooldownUntil = &cooldownUntil
			logger.InfoCtx(ctx, "proposal reached quorum",
				zap.String("proposal_id", proposalID),
				zap.Int64("weight", updated.AccumulatedWeight))
		}
	}

	return updated, nil
}

// Delegate assigns part of the delegator's weight to another agent
func (s *service) Delegate(ctx context.Context, delegatorExternalID, delegateExternalID string, weight int64) error {
	if weight <= 0 {
		return fmt.Errorf("%w: delegated weight must be positive", domain.ErrValidation)
	}
	if delegatorExternalID == delegateExternalID {
		return fmt.Errorf("%w: cannot delegate to self", domain.ErrValidation)
	}

	delegator, err := s.requireAgent(ctx, delegatorExternalID)
	if err != nil {
		return err
	}
	delegate, err := s.requireAgent(ctx, delegateExternalID)
	if err != nil {
		return err
	}

	// Cap the delegator's total outbound weight to prevent concentration.
	// An existing edge to the same delegate is replaced, not added, so its
	// current weight does not count against the cap.
	delegatedOut, err := s.store.SumDelegatedOut(ctx, delegator.ID)
	if err != nil {
		return fmt.Errorf("failed to sum delegated-out weight: %w", err)
	}
	existing, err := s.store.GetDelegation(ctx, delegator.ID, delegate.ID)
	if err != nil {
		return fmt.Errorf("failed to get delegation: %w", err)
	}
	if existing != nil {
		delegatedOut -= existing.Weight
	}
	if delegatedOut+weight > s.config.DelegationCap {
		return fmt.Errorf("%w: delegation would exceed per-creator cap of %d", domain.ErrValidation, s.config.DelegationCap)
	}

	err = s.store.UpsertDelegation(ctx, &schema.Delegation{
		DelegatorID: delegator.ID,
		DelegateID:  delegate.ID,
		Weight:      weight,
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert delegation: %w", err)
	}
	return nil
}

// Tick advances the state machine
func (s *service) Tick(ctx context.Context) error {
	now := s.clock.Now()

	cooled, err := s.store.ListProposalsByState(ctx, schema.ProposalStateQuorumReached)
	if err != nil {
		return fmt.Errorf("failed to list quorum proposals: %w", err)
	}
	for i := range cooled {
		proposal := &cooled[i]
		if proposal.CooldownUntil == nil || now.Before(*proposal.CooldownUntil) {
			continue
		}
		activatedAt := now
		moved, err := s.store.TransitionProposal(ctx, proposal.ID,
			schema.ProposalStateQuorumReached, schema.ProposalStateActivated, nil, &activatedAt)
		if err != nil {
			logger.ErrorCtx(ctx, err, zap.String("proposal_id", proposal.ID))
			continue
		}
		if moved {
			s.emitter.Emit(ctx, domain.EventCategoryGovernance, domain.EventTypeProposalActivated, "", map[string]interface{}{
				"proposal_id": proposal.ID,
			})
		}
	}

	submitted, err := s.store.ListProposalsByState(ctx, schema.ProposalStateSubmitted)
	if err != nil {
		return fmt.Errorf("failed to list submitted proposals: %w", err)
	}
	for i := range submitted {
		proposal := &submitted[i]
		if now.Before(proposal.ExpiresAt) {
			continue
		}
		moved, err := s.store.TransitionProposal(ctx, proposal.ID,
			schema.ProposalStateSubmitted, schema.ProposalStateExpired, nil, nil)
		if err != nil {
			logger.ErrorCtx(ctx, err, zap.String("proposal_id", proposal.ID))
			continue
		}
		if moved {
			s.emitter.Emit(ctx, domain.EventCategoryGovernance, domain.EventTypeProposalExpired, "", map[string]interface{}{
				"proposal_id": proposal.ID,
			})
		}
	}

	return nil
}

// GetProposal retrieves a proposal by id
func (s *service) GetProposal(ctx context.Context, id string) (*schema.Proposal, error) {
	proposal, err := s.store.GetProposal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	if proposal == nil {
		return nil, fmt.Errorf("%w: proposal %s", domain.ErrNotFound, id)
	}
	return proposal, nil
}
