package governance_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/gowebpki/jcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/governance"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/mocks"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testConfig() governance.Config {
	return governance.Config{
		Quorum:            100,
		Cooldown:          time.Hour,
		ProposalTTL:       72 * time.Hour,
		BaseVoteWeight:    10,
		ReputationDivisor: 100,
		ReputationCap:     20,
		DelegationCap:     50,
	}
}

type serviceMocks struct {
	store   *mocks.MockStore
	emitter *mocks.MockEmitter
	clock   *mocks.MockClock
}

func newService(ctrl *gomock.Controller) (governance.Service, *serviceMocks) {
	m := &serviceMocks{
		store:   mocks.NewMockStore(ctrl),
		emitter: mocks.NewMockEmitter(ctrl),
		clock:   mocks.NewMockClock(ctrl),
	}
	m.clock.EXPECT().Now().Return(testNow).AnyTimes()
	return governance.NewService(m.store, m.emitter, m.clock, testConfig()), m
}

func newAgentIdentity(t *testing.T) (*ecdsa.PrivateKey, string) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func signMessage(t *testing.T, key *ecdsa.PrivateKey, message []byte) string {
	sig, err := crypto.Sign(accounts.TextHash(message), key)
	require.NoError(t, err)
	return hexutil.Encode(sig)
}

func payloadHash(t *testing.T, payload []byte) string {
	canonical, err := jcs.Transform(payload)
	require.NoError(t, err)
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

func agentAccount(id int64, externalID, address string) *schema.Account {
	return &schema.Account{
		ID:           id,
		ExternalID:   externalID,
		Kind:         schema.AccountKindAgent,
		ChainAddress: &address,
	}
}

func TestPropose(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newService(ctrl)

	key, address := newAgentIdentity(t)
	payload := []byte(`{"action":"raise_quota","value":2}`)
	signature := signMessage(t, key, []byte(payloadHash(t, payload)))

	m.store.EXPECT().GetAccountByExternalID(gomock.Any(), "agent-1").Return(agentAccount(1, "agent-1", address), nil)
	m.store.EXPECT().
		CreateProposal(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *schema.Proposal) error {
			assert.NotEmpty(t, p.ID)
			assert.Equal(t, int64(1), p.ProposerID)
			assert.Equal(t, schema.ProposalStateSubmitted, p.State)
			assert.Equal(t, testNow.Add(72*time.Hour), p.ExpiresAt)
			return nil
		})

	proposal, err := svc.Propose(context.Background(), "agent-1", payload, signature)
	require.NoError(t, err)
	assert.Equal(t, schema.ProposalStateSubmitted, proposal.State)
}

func TestPropose_EquivalentPayloadsHashIdentically(t *testing.T) {
	a := payloadHash(t, []byte(`{"action":"raise_quota","value":2}`))
	b := payloadHash(t, []byte(`{ "value": 2, "action": "raise_quota" }`))
	assert.Equal(t, a, b)
}

func TestPropose_NonAgentForbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newService(ctrl)

	m.store.EXPECT().GetAccountByExternalID(gomock.Any(), "tenant-1").
		Return(&schema.Account{ID: 1, ExternalID: "tenant-1", Kind: schema.AccountKindTenant}, nil)

	_, err := svc.Propose(context.Background(), "tenant-1", []byte(`{}`), "0x00")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestPropose_WrongSignerRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newService(ctrl)

	_, address := newAgentIdentity(t)
	otherKey, _ := newAgentIdentity(t)
	payload := []byte(`{"action":"noop"}`)
	signature := signMessage(t, otherKey, []byte(payloadHash(t, payload)))

	m.store.EXPECT().GetAccountByExternalID(gomock.Any(), "agent-1").Return(agentAccount(1, "agent-1", address), nil)

	_, err := svc.Propose(context.Background(), "agent-1", payload, signature)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuth))
}

func TestVote_AccumulatesResolvedWeight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newService(ctrl)

	key, address := newAgentIdentity(t)
	voter := agentAccount(2, "agent-2", address)
	voter.Reputation = 5000 // bonus 50 capped at 20
	signature := signMessage(t, key, []byte("01HXPROP"))

	m.store.EXPECT().GetAccountByExternalID(gomock.Any(), "agent-2").Return(voter, nil)
	m.store.EXPECT().GetProposal(gomock.Any(), "01HXPROP").Return(&schema.Proposal{
		ID:        "01HXPROP",
		State:     schema.ProposalStateSubmitted,
		ExpiresAt: testNow.Add(time.Hour),
	}, nil)
	m.store.EXPECT().SumDelegatedWeight(gomock.Any(), int64(2)).Return(int64(15), nil)
	m.store.EXPECT().SumDelegatedOut(gomock.Any(), int64(2)).Return(int64(5), nil)
	m.store.EXPECT().
		CastVote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, v *schema.Vote) (*schema.Proposal, error) {
			// base 10 + capped reputation 20 + delegated in 15 - delegated out 5
			assert.Equal(t, int64(40), v.Weight)
			return &schema.Proposal{
				ID:                "01HXPROP",
				State:             schema.ProposalStateSubmitted,
				AccumulatedWeight: 40,
				ExpiresAt:         testNow.Add(time.Hour),
			}, nil
		})

	proposal, err := svc.Vote(context.Background(), "01HXPROP", "agent-2", signature)
	require.NoError(t, err)
	assert.Equal(t, schema.ProposalStateSubmitted, proposal.State)
	assert.Equal(t, int64(40), proposal.AccumulatedWeight)
}

func TestVote_QuorumStartsCooldown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newService(ctrl)

	key, address := newAgentIdentity(t)
	signature := signMessage(t, key, []byte("01HXPROP"))

	m.store.EXPECT().GetAccountByExternalID(gomock.Any(), "agent-2").Return(agentAccount(2, "agent-2", address), nil)
	m.store.EXPECT().GetProposal(gomock.Any(), "01HXPROP").Return(&schema.Proposal{
		ID:        "01HXPROP",
		State:     schema.ProposalStateSubmitted,
		ExpiresAt: testNow.Add(time.Hour),
	}, nil)
	m.store.EXPECT().SumDelegatedWeight(gomock.Any(), int64(2)).Return(int64(95), nil)
	m.store.EXPECT().SumDelegatedOut(gomock.Any(), int64(2)).Return(int64(0), nil)
	m.store.EXPECT().
		CastVote(gomock.Any(), gomock.Any()).
		Return(&schema.Proposal{
			ID:                "01HXPROP",
			State:             schema.ProposalStateSubmitted,
			AccumulatedWeight: 105,
			ExpiresAt:         testNow.Add(time.Hour),
		}, nil)
	m.store.EXPECT().
		TransitionProposal(gomock.Any(), "01HXPROP",
			schema.ProposalStateSubmitted, schema.ProposalStateQuorumReached, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _, _ schema.ProposalState, cooldownUntil, activatedAt *time.Time) (bool, error) {
			require.NotNil(t, cooldownUntil)
			assert.Equal(t, testNow.Add(time.Hour), *cooldownUntil)
			assert.Nil(t, activatedAt)
			return true, nil
		})

	proposal, err := svc.Vote(context.Background(), "01HXPROP", "agent-2", signature)
	require.NoError(t, err)
	assert.Equal(t, schema.ProposalStateQuorumReached, proposal.State)
}

func TestVote_ExpiredProposal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newService(ctrl)

	key, address := newAgentIdentity(t)
	signature := signMessage(t, key, []byte("01HXPROP"))

	m.store.EXPECT().GetAccountByExternalID(gomock.Any(), "agent-2").Return(agentAccount(2, "agent-2", address), nil)
	m.store.EXPECT().GetProposal(gomock.Any(), "01HXPROP").Return(&schema.Proposal{
		ID:        "01HXPROP",
		State:     schema.ProposalStateSubmitted,
		ExpiresAt: testNow.Add(-time.Minute),
	}, nil)
	m.store.EXPECT().
		TransitionProposal(gomock.Any(), "01HXPROP",
			schema.ProposalStateSubmitted, schema.ProposalStateExpired, gomock.Nil(), gomock.Nil()).
		Return(true, nil)
	m.emitter.EXPECT().Emit(gomock.Any(), domain.EventCategoryGovernance, domain.EventTypeProposalExpired, "", gomock.Any())

	_, err := svc.Vote(context.Background(), "01HXPROP", "agent-2", signature)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestVote_DuplicateVoterConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newService(ctrl)

	key, address := newAgentIdentity(t)
	signature := signMessage(t, key, []byte("01HXPROP"))

	m.store.EXPECT().GetAccountByExternalID(gomock.Any(), "agent-2").Return(agentAccount(2, "agent-2", address), nil)
	m.store.EXPECT().GetProposal(gomock.Any(), "01HXPROP").Return(&schema.Proposal{
		ID:        "01HXPROP",
		State:     schema.ProposalStateSubmitted,
		ExpiresAt: testNow.Add(time.Hour),
	}, nil)
	m.store.EXPECT().SumDelegatedWeight(gomock.Any(), int64(2)).Return(int64(0), nil)
	m.store.EXPECT().SumDelegatedOut(gomock.Any(), int64(2)).Return(int64(0), nil)
	m.store.EXPECT().CastVote(gomock.Any(), gomock.Any()).Return(nil, domain.ErrConflict)

	_, err := svc.Vote(context.Background(), "01HXPROP", "agent-2", signature)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestDelegate_CapEnforced(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newService(ctrl)

	_, addrA := newAgentIdentity(t)
	_, addrB := newAgentIdentity(t)
	m.store.EXPECT().GetAccountByExternalID(gomock.Any(), "agent-1").Return(agentAccount(1, "agent-1", addrA), nil)
	m.store.EXPECT().GetAccountByExternalID(gomock.Any(), "agent-2").Return(agentAccount(2, "agent-2", addrB), nil)
	m.store.EXPECT().SumDelegatedOut(gomock.Any(), int64(1)).Return(int64(45), nil)
	m.store.EXPECT().GetDelegation(gomock.Any(), int64(1), int64(2)).Return(nil, nil)

	err := svc.Delegate(context.Background(), "agent-1", "agent-2", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestDelegate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newService(ctrl)

	_, addrA := newAgentIdentity(t)
	_, addrB := newAgentIdentity(t)
	m.store.EXPECT().GetAccountByExternalID(gomock.Any(), "agent-1").Return(agentAccount(1, "agent-1", addrA), nil)
	m.store.EXPECT().GetAccountByExternalID(gomock.Any(), "agent-2").Return(agentAccount(2, "agent-2", addrB), nil)
	m.store.EXPECT().SumDelegatedOut(gomock.Any(), int64(1)).Return(int64(20), nil)
	m.store.EXPECT().GetDelegation(gomock.Any(), int64(1), int64(2)).Return(nil, nil)
	m.store.EXPECT().
		UpsertDelegation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *schema.Delegation) error {
			assert.Equal(t, int64(1), d.DelegatorID)
			assert.Equal(t, int64(2), d.DelegateID)
			assert.Equal(t, int64(30), d.Weight)
			return nil
		})

	require.NoError(t, svc.Delegate(context.Background(), "agent-1", "agent-2", 30))
}

func TestDelegate_RaisingExistingEdgeReplacesWeight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newService(ctrl)

	_, addrA := newAgentIdentity(t)
	_, addrB := newAgentIdentity(t)
	m.store.EXPECT().GetAccountByExternalID(gomock.Any(), "agent-1").Return(agentAccount(1, "agent-1", addrA), nil)
	m.store.EXPECT().GetAccountByExternalID(gomock.Any(), "agent-2").Return(agentAccount(2, "agent-2", addrB), nil)
	// All 45 outbound weight sits on the edge being replaced; raising it to
	// the full cap is an upsert, not an addition
	m.store.EXPECT().SumDelegatedOut(gomock.Any(), int64(1)).Return(int64(45), nil)
	m.store.EXPECT().GetDelegation(gomock.Any(), int64(1), int64(2)).
		Return(&schema.Delegation{DelegatorID: 1, DelegateID: 2, Weight: 45}, nil)
	m.store.EXPECT().
		UpsertDelegation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *schema.Delegation) error {
			assert.Equal(t, int64(50), d.Weight)
			return nil
		})

	require.NoError(t, svc.Delegate(context.Background(), "agent-1", "agent-2", 50))
}

func TestTick_ActivatesAndExpires(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newService(ctrl)

	cooledDown := testNow.Add(-time.Minute)
	stillCooling := testNow.Add(time.Minute)

	m.store.EXPECT().
		ListProposalsByState(gomock.Any(), schema.ProposalStateQuorumReached).
		Return([]schema.Proposal{
			{ID: "01HXREADY", State: schema.ProposalStateQuorumReached, CooldownUntil: &cooledDown},
			{ID: "01HXCOOLING", State: schema.ProposalStateQuorumReached, CooldownUntil: &stillCooling},
		}, nil)
	m.store.EXPECT().
		TransitionProposal(gomock.Any(), "01HXREADY",
			schema.ProposalStateQuorumReached, schema.ProposalStateActivated, gomock.Nil(), gomock.Any()).
		Return(true, nil)
	m.emitter.EXPECT().Emit(gomock.Any(), domain.EventCategoryGovernance, domain.EventTypeProposalActivated, "", gomock.Any())

	m.store.EXPECT().
		ListProposalsByState(gomock.Any(), schema.ProposalStateSubmitted).
		Return([]schema.Proposal{
			{ID: "01HXSTALE", State: schema.ProposalStateSubmitted, ExpiresAt: testNow.Add(-time.Hour)},
			{ID: "01HXFRESH", State: schema.ProposalStateSubmitted, ExpiresAt: testNow.Add(time.Hour)},
		}, nil)
	m.store.EXPECT().
		TransitionProposal(gomock.Any(), "01HXSTALE",
			schema.ProposalStateSubmitted, schema.ProposalStateExpired, gomock.Nil(), gomock.Nil()).
		Return(true, nil)
	m.emitter.EXPECT().Emit(gomock.Any(), domain.EventCategoryGovernance, domain.EventTypeProposalExpired, "", gomock.Any())

	require.NoError(t, svc.Tick(context.Background()))
}
