package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/gowebpki/jcs"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

// Admission is the outcome of presenting an idempotency key.
type Admission struct {
	// Record is the guard row for this key
	Record *schema.IdempotencyRecord
	// Replay is set when the operation already reached a terminal state; the
	// stored outcome must be returned instead of re-executing
	Replay bool
	// InFlight is set when another execution currently holds the key
	InFlight bool
}

// Guard is the replay shield for keyed operations. Exactly one execution
// owns a key at a time; retries either re-attach to the stored outcome or
// are rejected, never re-executed.
type Guard struct {
	store store.Store
}

// NewGuard creates an idempotency guard
func NewGuard(s store.Store) *Guard {
	return &Guard{store: s}
}

// BodyHash computes the canonical hash of a request payload. Equivalent
// JSON bodies (key order, whitespace) hash identically; any semantic change
// does not.
func BodyHash(body []byte) (string, error) {
	canonical, err := jcs.Transform(body)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize request body: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Begin admits a keyed operation. A fresh key claims the record and moves it
// to the active state; a repeated key either replays the stored outcome,
// reclaims an aborted attempt for re-execution, reports an in-flight
// execution, or rejects a payload swap.
func (g *Guard) Begin(ctx context.Context, tenantID, key string, body []byte) (*Admission, error) {
	hash, err := BodyHash(body)
	if err != nil {
		return nil, fmt.Errorf("invalid request body: %w", domain.ErrValidation)
	}

	record := &schema.IdempotencyRecord{
		TenantID:       tenantID,
		IdempotencyKey: key,
		BodyHash:       hash,
		State:          domain.IdempotencyStateNew,
	}

	record, created, err := g.store.CreateIdempotencyRecord(ctx, record)
	if err != nil {
		return nil, err
	}

	if !created {
		// Same key, different payload: never replay across a body swap
		if record.BodyHash != hash {
			return nil, fmt.Errorf("idempotency key reused with a different payload: %w", domain.ErrConflict)
		}

		switch record.State {
		case domain.IdempotencyStateCompleted, domain.IdempotencyStateResumeLost:
			return &Admission{Record: record, Replay: true}, nil
		case domain.IdempotencyStateAborted:
			// The aborted attempt never reached the upstream, so the retry
			// re-executes instead of replaying the rejection
			ok, err := g.store.TransitionIdempotencyRecord(ctx, record.ID,
				domain.IdempotencyStateAborted, domain.IdempotencyStateActive, nil, decimal.Zero)
			if err != nil {
				return nil, err
			}
			if !ok {
				return &Admission{Record: record, InFlight: true}, nil
			}
			record.State = domain.IdempotencyStateActive
			return &Admission{Record: record}, nil
		default:
			return &Admission{Record: record, InFlight: true}, nil
		}
	}

	ok, err := g.store.TransitionIdempotencyRecord(ctx, record.ID,
		domain.IdempotencyStateNew, domain.IdempotencyStateActive, nil, decimal.Zero)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the claim between insert and activation
		return &Admission{Record: record, InFlight: true}, nil
	}

	record.State = domain.IdempotencyStateActive
	return &Admission{Record: record}, nil
}

// Complete stores the terminal response for replay and closes the record
func (g *Guard) Complete(ctx context.Context, record *schema.IdempotencyRecord, response datatypes.JSON, cost decimal.Decimal) error {
	ok, err := g.store.TransitionIdempotencyRecord(ctx, record.ID,
		domain.IdempotencyStateActive, domain.IdempotencyStateCompleted, response, cost)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("idempotency record %d not active: %w", record.ID, domain.ErrConflict)
	}
	return nil
}

// Abort closes the record without a stored response
func (g *Guard) Abort(ctx context.Context, record *schema.IdempotencyRecord) error {
	ok, err := g.store.TransitionIdempotencyRecord(ctx, record.ID,
		domain.IdempotencyStateActive, domain.IdempotencyStateAborted, nil, decimal.Zero)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("idempotency record %d not active: %w", record.ID, domain.ErrConflict)
	}
	return nil
}

// MarkResumeLost closes a record whose execution died mid-stream. The
// partial cost already settled stays on the record so the retry surface can
// report it; the operation itself is never silently re-run.
func (g *Guard) MarkResumeLost(ctx context.Context, record *schema.IdempotencyRecord, partialCost decimal.Decimal) error {
	ok, err := g.store.TransitionIdempotencyRecord(ctx, record.ID,
		domain.IdempotencyStateActive, domain.IdempotencyStateResumeLost, nil, partialCost)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("idempotency record %d not active: %w", record.ID, domain.ErrConflict)
	}
	return nil
}
