package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/api/rest/dto"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/budget"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/byok"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/governance"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/idempotency"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/inference"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/ledger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/reconcile"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/registry"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/token"
)

// Handler carries the gateway's request-scoped collaborators.
type Handler struct {
	guard     *idempotency.Guard
	budget    budget.Engine
	router    byok.Router
	inference inference.Client
	ledger    ledger.Service
	gov       governance.Service
	sweeper   reconcile.Sweeper
	store     store.Store
	issuer    *token.Issuer
	pools     registry.PoolRegistry
	tiers     registry.TierRegistry
}

// NewHandler creates the REST handler
func NewHandler(
	guard *idempotency.Guard,
	budgetEngine budget.Engine,
	router byok.Router,
	inferenceClient inference.Client,
	ledgerService ledger.Service,
	gov governance.Service,
	sweeper reconcile.Sweeper,
	st store.Store,
	issuer *token.Issuer,
	pools registry.PoolRegistry,
	tiers registry.TierRegistry,
) *Handler {
	return &Handler{
		guard:     guard,
		budget:    budgetEngine,
		router:    router,
		inference: inferenceClient,
		ledger:    ledgerService,
		gov:       gov,
		sweeper:   sweeper,
		store:     st,
		issuer:    issuer,
		pools:     pools,
		tiers:     tiers,
	}
}

// HealthCheck reports process liveness
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MintToken issues a short-lived access token for an identity the chat
// platform adapter has already verified.
func (h *Handler) MintToken(c *gin.Context) {
	var req dto.MintTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid mint request body")
		return
	}

	bodyHash, err := idempotency.BodyHash(req.Body)
	if err != nil {
		respondValidation(c, "request body is not canonicalizable JSON")
		return
	}

	input := token.MintInput{
		TenantID:       req.TenantID,
		UserID:         req.UserID,
		ChannelID:      req.ChannelID,
		Tier:           domain.Tier(req.Tier),
		IdempotencyKey: req.IdempotencyKey,
		BodyHash:       bodyHash,
		Lifetime:       time.Duration(req.LifetimeSeconds) * time.Second,
	}
	signed, expiresAt, err := h.issuer.MintWithExpiry(input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MintTokenResponse{Token: signed, ExpiresAt: expiresAt})
}

// GetBudget returns one tenant's durable budget mirror.
func (h *Handler) GetBudget(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	b, err := h.store.GetTenantBudget(c.Request.Context(), tenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	if b == nil {
		respondError(c, fmt.Errorf("tenant %s has no budget: %w", tenantID, domain.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, dto.BudgetResponse{
		TenantID:   b.TenantID,
		SpendLimit: b.SpendLimit,
		Committed:  b.Committed,
		Reserved:   b.Reserved,
	})
}

// ListBudgets returns every tenant's budget mirror.
func (h *Handler) ListBudgets(c *gin.Context) {
	budgets, err := h.store.ListTenantBudgets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.BudgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, dto.BudgetResponse{
			TenantID:   b.TenantID,
			SpendLimit: b.SpendLimit,
			Committed:  b.Committed,
			Reserved:   b.Reserved,
		})
	}
	c.JSON(http.StatusOK, gin.H{"budgets": out})
}

// CreateGrant credits an account with a platform-issued lot.
func (h *Handler) CreateGrant(c *gin.Context) {
	var req dto.GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid grant request body")
		return
	}
	kind := schemaKind(req.Kind)
	if kind == "" {
		respondValidation(c, "kind must be tenant or agent")
		return
	}

	lot, err := h.ledger.Grant(c.Request.Context(), req.AccountID, kind, domain.LotSource(req.Source), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"lot_id": lot.ID, "amount": lot.OriginalAmount})
}

// CreateTransfer moves credits between two accounts.
func (h *Handler) CreateTransfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid transfer request body")
		return
	}

	transfer, err := h.ledger.Transfer(c.Request.Context(), req.From, req.To, req.Amount)
	if err != nil {
		respondError(c, err,
			zap.String("from", req.From),
			zap.String("to", req.To),
		)
		return
	}
	c.JSON(http.StatusCreated, dto.TransferResponse{
		TransferID: transfer.ID,
		From:       req.From,
		To:         req.To,
		Amount:     transfer.Amount,
		Status:     string(transfer.Status),
	})
}

// GetBalance returns an account's spendable balance.
func (h *Handler) GetBalance(c *gin.Context) {
	accountID := c.Param("account_id")
	balance, err := h.ledger.Balance(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{AccountID: accountID, Balance: balance})
}

// GetEntries returns an account's ledger entries, newest first.
func (h *Handler) GetEntries(c *gin.Context) {
	accountID := c.Param("account_id")
	limit := parseIntQuery(c, "limit", 50)
	offset := uint64(parseIntQuery(c, "offset", 0))

	entries, total, err := h.ledger.Entries(c.Request.Context(), accountID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": total})
}

// ResolveClawback drains the owed amount and closes the receivable.
func (h *Handler) ResolveClawback(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("receivable_id"), 10, 64)
	if err != nil {
		respondValidation(c, "receivable id must be an integer")
		return
	}
	if err := h.ledger.ResolveClawback(c.Request.Context(), id); err != nil {
		respondError(c, err, zap.Int64("receivable_id", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolved": true})
}

// CreateProposal submits a signed governance proposal.
func (h *Handler) CreateProposal(c *gin.Context) {
	var req dto.ProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid proposal request body")
		return
	}

	proposal, err := h.gov.Propose(c.Request.Context(), req.ProposerID, req.Payload, req.Signature)
	if err != nil {
		respondError(c, err, zap.String("proposer", req.ProposerID))
		return
	}
	c.JSON(http.StatusCreated, proposalResponse(proposal))
}

// GetProposal retrieves a proposal by id.
func (h *Handler) GetProposal(c *gin.Context) {
	proposal, err := h.gov.GetProposal(c.Request.Context(), c.Param("proposal_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposalResponse(proposal))
}

// CastVote records a signed vote on a proposal.
func (h *Handler) CastVote(c *gin.Context) {
	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid vote request body")
		return
	}

	proposal, err := h.gov.Vote(c.Request.Context(), c.Param("proposal_id"), req.VoterID, req.Signature)
	if err != nil {
		respondError(c, err, zap.String("voter", req.VoterID))
		return
	}
	c.JSON(http.StatusOK, proposalResponse(proposal))
}

// CreateDelegation assigns part of an agent's vote weight to another agent.
func (h *Handler) CreateDelegation(c *gin.Context) {
	var req dto.DelegateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid delegation request body")
		return
	}

	if err := h.gov.Delegate(c.Request.Context(), req.DelegatorID, req.DelegateID, req.Weight); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"delegated": true})
}

// GovernanceTick advances the proposal state machine on demand.
func (h *Handler) GovernanceTick(c *gin.Context) {
	if err := h.gov.Tick(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticked": true})
}

// TriggerReconciliation runs one reconciliation sweep immediately.
func (h *Handler) TriggerReconciliation(c *gin.Context) {
	run, err := h.sweeper.RunOnce(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	logger.InfoCtx(c.Request.Context(), "Reconciliation triggered via API",
		zap.String("run_id", run.ID),
		zap.Int("anomaly_count", run.AnomalyCount),
	)
	c.JSON(http.StatusOK, dto.ReconciliationRunResponse{
		ID:           run.ID,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		AnomalyCount: run.AnomalyCount,
		Checks:       run.Checks,
	})
}

// ListReconciliationRuns returns recent sweeps, newest first.
func (h *Handler) ListReconciliationRuns(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 20)
	runs, err := h.store.ListReconciliationRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.ReconciliationRunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, dto.ReconciliationRunResponse{
			ID:           run.ID,
			StartedAt:    run.StartedAt,
			FinishedAt:   run.FinishedAt,
			AnomalyCount: run.AnomalyCount,
			Checks:       run.Checks,
		})
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

// ListBYOKKeys lists a tenant's registered provider keys. Fingerprints only;
// key material never leaves the store.
func (h *Handler) ListBYOKKeys(c *gin.Context) {
	keys, err := h.store.GetBYOKKeys(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	type keyView struct {
		Provider    string    `json:"provider"`
		Fingerprint string    `json:"fingerprint"`
		CreatedAt   time.Time `json:"created_at"`
	}
	out := make([]keyView, 0, len(keys))
	for _, key := range keys {
		out = append(out, keyView{
			Provider:    string(key.Provider),
			Fingerprint: key.Fingerprint,
			CreatedAt:   key.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"keys": out})
}

// GetActiveSigningKey reports the kid currently used for minting.
func (h *Handler) GetActiveSigningKey(c *gin.Context) {
	key, err := h.store.GetActiveSigningKey(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if key == nil {
		respondError(c, fmt.Errorf("no active signing key: %w", domain.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, dto.SigningKeyResponse{
		Kid:       key.KID,
		Active:    key.Active,
		CreatedAt: key.CreatedAt,
	})
}

func proposalResponse(p *schema.Proposal) dto.ProposalResponse {
	return dto.ProposalResponse{
		ID:                p.ID,
		State:             string(p.State),
		AccumulatedWeight: p.AccumulatedWeight,
		ExpiresAt:         p.ExpiresAt,
		CooldownUntil:     p.CooldownUntil,
		ActivatedAt:       p.ActivatedAt,
	}
}

func schemaKind(raw string) schema.AccountKind {
	switch schema.AccountKind(raw) {
	case schema.AccountKindTenant:
		return schema.AccountKindTenant
	case schema.AccountKindAgent:
		return schema.AccountKindAgent
	default:
		return ""
	}
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
