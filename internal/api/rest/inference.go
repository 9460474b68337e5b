package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/api/middleware"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/api/rest/dto"
	sharederrors "github.com/0xHoneyJar/loa-freeside-sub004/internal/api/shared/errors"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/idempotency"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/inference"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

// inferenceSummary is the terminal outcome of one inference call. It is
// streamed as the usage frame, stored for idempotent replay, and is the
// only place actual cost is reported to the caller.
type inferenceSummary struct {
	ReservationID string          `json:"reservation_id"`
	Cost          decimal.Decimal `json:"cost"`
	Drift         decimal.Decimal `json:"drift"`
	Clamped       bool            `json:"clamped"`
	InputTokens   int64           `json:"input_tokens"`
	OutputTokens  int64           `json:"output_tokens"`
}

// Inference runs the full admission pipeline and forwards the request as a
// stream. Order is fixed: the idempotency claim precedes the reservation so
// a retry can never double-reserve, and the reservation precedes any
// upstream traffic so no token is ever bought without budget held for it.
func (h *Handler) Inference(c *gin.Context) {
	ctx := c.Request.Context()

	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, fmt.Errorf("no verified identity on request: %w", domain.ErrAuth))
		return
	}

	idemKey := c.GetHeader("Idempotency-Key")
	if idemKey == "" {
		respondValidation(c, "Idempotency-Key header is required")
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		respondValidation(c, "failed to read request body")
		return
	}

	// The token was minted for exactly one keyed payload; an intercepted
	// token cannot be replayed onto a different key or body.
	if identity.IdempotencyKey != idemKey {
		respondError(c, fmt.Errorf("token not minted for this idempotency key: %w", domain.ErrAuth))
		return
	}
	bodyHash, err := idempotency.BodyHash(raw)
	if err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	if identity.BodyHash != bodyHash {
		respondError(c, fmt.Errorf("token not minted for this payload: %w", domain.ErrAuth))
		return
	}

	var req dto.InferenceRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.Pool == "" {
		respondValidation(c, "invalid inference request body")
		return
	}
	if !req.EstimatedCost.IsPositive() {
		respondValidation(c, "estimated_cost must be positive")
		return
	}

	pool := domain.CapabilityPool(req.Pool)
	if minLevel, known := h.pools.MinAccessLevel(pool); !known {
		respondValidation(c, "unknown capability pool")
		return
	} else if !h.tiers.Satisfies(identity.AccessLevel, minLevel) {
		respondError(c, fmt.Errorf("tier %d lacks access to pool %s: %w",
			identity.Tier, pool, domain.ErrForbidden))
		return
	}

	adm, err := h.guard.Begin(ctx, identity.TenantID, idemKey, raw)
	if err != nil {
		respondError(c, err, zap.String("idempotency_key", idemKey))
		return
	}
	if adm.Replay {
		h.replay(c, adm.Record)
		return
	}
	if adm.InFlight {
		respondError(c, fmt.Errorf("operation already in flight: %w", domain.ErrConflict))
		return
	}

	reservation, err := h.budget.Reserve(ctx, identity.TenantID, req.EstimatedCost, idemKey)
	if err != nil {
		h.abandonBeforeUpstream(ctx, adm.Record, "")
		respondError(c, err, zap.String("tenant_id", identity.TenantID))
		return
	}

	resolution, err := h.router.Resolve(ctx, identity.TenantID, pool)
	if err != nil {
		h.abandonBeforeUpstream(ctx, adm.Record, reservation.ID)
		respondError(c, err, zap.String("tenant_id", identity.TenantID))
		return
	}

	stream, err := h.inference.Stream(ctx, &inference.Request{
		Provider: resolution.Provider,
		BaseURL:  resolution.BaseURL,
		APIKey:   string(resolution.Key.Ciphertext),
		Pool:     pool,
		Body:     req.Input,
	})
	if err != nil {
		h.abandonBeforeUpstream(ctx, adm.Record, reservation.ID)
		respondError(c, err, zap.String("provider", string(resolution.Provider)))
		return
	}
	defer func() { _ = stream.Close() }()

	h.forward(c, adm.Record, reservation.ID, identity.TenantID, stream)
}

// forward copies upstream frames to the client and settles exactly once.
func (h *Handler) forward(c *gin.Context, record *schema.IdempotencyRecord, reservationID, tenantID string, stream inference.Stream) {
	ctx := c.Request.Context()
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	var usage *inference.Usage
	for {
		frame, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				break
			}
			// Upstream broke or the client went away mid-stream. Settle at
			// the best-known cost and record the interruption; the client
			// sees a truncated stream, never a silent success.
			logger.WarnCtx(ctx, "Inference stream interrupted",
				zap.String("reservation_id", reservationID),
				zap.Error(err),
			)
			h.settleInterrupted(ctx, record, reservationID, tenantID, usage)
			return
		}

		switch frame.Type {
		case inference.FrameTypePartial:
			writeSSE(w, "partial", frame.Data)
		case inference.FrameTypeUsage:
			usage = frame.Usage
		case inference.FrameTypeDone:
			h.settleComplete(c, record, reservationID, tenantID, usage)
			return
		}
	}

	// EOF without a done frame counts as an interruption.
	h.settleInterrupted(ctx, record, reservationID, tenantID, usage)
}

// settleComplete finalizes at the upstream-reported cost, settles the
// ledger, stores the summary for replay, and emits the terminal frames.
func (h *Handler) settleComplete(c *gin.Context, record *schema.IdempotencyRecord, reservationID, tenantID string, usage *inference.Usage) {
	ctx := c.Request.Context()

	if usage == nil {
		// A done frame without a usage frame violates the stream protocol;
		// cost is unknown, so the reservation settles at its ceiling.
		logger.WarnCtx(ctx, "Upstream finished without a usage frame",
			zap.String("reservation_id", reservationID),
		)
		h.settleInterrupted(ctx, record, reservationID, tenantID, nil)
		return
	}

	settlement, err := h.budget.Finalize(ctx, reservationID, usage.Cost)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to finalize reservation: %w", err),
			zap.String("reservation_id", reservationID),
		)
		h.settleInterrupted(ctx, record, reservationID, tenantID, usage)
		return
	}

	h.settleLedger(ctx, tenantID, reservationID, settlement.ActualCost)

	summary := inferenceSummary{
		ReservationID: reservationID,
		Cost:          settlement.ActualCost,
		Drift:         settlement.Drift,
		Clamped:       settlement.ClampedAtCeil,
		InputTokens:   usage.InputTokens,
		OutputTokens:  usage.OutputTokens,
	}
	body, err := json.Marshal(summary)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to marshal inference summary: %w", err))
		body = []byte("{}")
	}

	if err := h.guard.Complete(ctx, record, datatypes.JSON(body), settlement.ActualCost); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to complete idempotency record: %w", err),
			zap.String("reservation_id", reservationID),
		)
	}

	writeSSE(c.Writer, "usage", body)
	writeSSE(c.Writer, "done", []byte("{}"))
}

// settleInterrupted finalizes a broken stream: at the usage-reported cost
// when the usage frame arrived, else at the reservation ceiling.
func (h *Handler) settleInterrupted(ctx context.Context, record *schema.IdempotencyRecord, reservationID, tenantID string, usage *inference.Usage) {
	// The request context may already be canceled; settlement must not be,
	// but its log and trace values still apply.
	ctx = context.WithoutCancel(ctx)

	var settlement *domain.Settlement
	var err error
	if usage != nil {
		settlement, err = h.budget.Finalize(ctx, reservationID, usage.Cost)
	} else {
		settlement, err = h.budget.Abort(ctx, reservationID)
	}
	if err != nil {
		// The stale-reservation sweep will abort it later.
		logger.ErrorCtx(ctx, fmt.Errorf("failed to settle interrupted stream: %w", err),
			zap.String("reservation_id", reservationID),
		)
		if markErr := h.guard.MarkResumeLost(ctx, record, decimal.Zero); markErr != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to mark record resume-lost: %w", markErr))
		}
		return
	}

	h.settleLedger(ctx, tenantID, reservationID, settlement.ActualCost)

	if err := h.guard.MarkResumeLost(ctx, record, settlement.ActualCost); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to mark record resume-lost: %w", err),
			zap.String("reservation_id", reservationID),
		)
	}
}

// settleLedger charges the tenant's lots. A shortfall opens a receivable
// inside Settle; only infrastructure failures surface here, and they never
// break the response.
func (h *Handler) settleLedger(ctx context.Context, tenantID, reservationID string, cost decimal.Decimal) {
	if _, err := h.ledger.Settle(ctx, tenantID, reservationID, cost); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to settle ledger: %w", err),
			zap.String("tenant_id", tenantID),
			zap.String("reservation_id", reservationID),
		)
	}
}

// abandonBeforeUpstream unwinds an admission that failed before any
// upstream traffic: the reservation settles at zero cost and the record
// aborts so a retry re-executes cleanly.
func (h *Handler) abandonBeforeUpstream(ctx context.Context, record *schema.IdempotencyRecord, reservationID string) {
	if reservationID != "" {
		if _, err := h.budget.Finalize(ctx, reservationID, decimal.Zero); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to release unused reservation: %w", err),
				zap.String("reservation_id", reservationID),
			)
		}
	}
	if err := h.guard.Abort(ctx, record); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to abort idempotency record: %w", err))
	}
}

// replay returns the stored outcome of a terminal operation without
// re-executing anything.
func (h *Handler) replay(c *gin.Context, record *schema.IdempotencyRecord) {
	switch record.State {
	case domain.IdempotencyStateCompleted:
		c.Data(http.StatusOK, "application/json", []byte(record.ResponseBody))
	case domain.IdempotencyStateResumeLost:
		c.JSON(http.StatusConflict, gin.H{
			"error": sharederrors.Detail{
				Code:    sharederrors.ErrCodeConflict,
				Message: "operation was interrupted and cannot be resumed",
			},
			"partial_cost": record.PartialCost,
		})
	default:
		respondError(c, fmt.Errorf("operation previously aborted: %w", domain.ErrConflict))
	}
}

func writeSSE(w gin.ResponseWriter, event string, data []byte) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	w.Flush()
}
