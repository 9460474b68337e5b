package idempotency_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/idempotency"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/mocks"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

func TestBodyHash_CanonicalEquivalence(t *testing.T) {
	a, err := idempotency.BodyHash([]byte(`{"pool":"general","max_tokens":100}`))
	require.NoError(t, err)

	// Key order and whitespace do not change the hash
	b, err := idempotency.BodyHash([]byte(`{ "max_tokens": 100, "pool": "general" }`))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// A semantic change does
	c, err := idempotency.BodyHash([]byte(`{"pool":"general","max_tokens":101}`))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestBodyHash_InvalidJSON(t *testing.T) {
	_, err := idempotency.BodyHash([]byte(`{broken`))
	require.Error(t, err)
}

func TestGuard_Begin_FreshKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	guard := idempotency.NewGuard(mockStore)

	mockStore.EXPECT().
		CreateIdempotencyRecord(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *schema.IdempotencyRecord) (*schema.IdempotencyRecord, bool, error) {
			rec.ID = 7
			return rec, true, nil
		})
	mockStore.EXPECT().
		TransitionIdempotencyRecord(gomock.Any(), int64(7),
			domain.IdempotencyStateNew, domain.IdempotencyStateActive, gomock.Any(), gomock.Any()).
		Return(true, nil)

	adm, err := guard.Begin(context.Background(), "tenant-1", "key-1", []byte(`{"pool":"fast"}`))
	require.NoError(t, err)
	assert.False(t, adm.Replay)
	assert.False(t, adm.InFlight)
	assert.Equal(t, domain.IdempotencyStateActive, adm.Record.State)
}

func TestGuard_Begin_PayloadSwapRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	guard := idempotency.NewGuard(mockStore)

	originalHash, err := idempotency.BodyHash([]byte(`{"pool":"fast"}`))
	require.NoError(t, err)

	mockStore.EXPECT().
		CreateIdempotencyRecord(gomock.Any(), gomock.Any()).
		Return(&schema.IdempotencyRecord{
			ID:             7,
			TenantID:       "tenant-1",
			IdempotencyKey: "key-1",
			BodyHash:       originalHash,
			State:          domain.IdempotencyStateCompleted,
		}, false, nil)

	_, err = guard.Begin(context.Background(), "tenant-1", "key-1", []byte(`{"pool":"reasoning"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestGuard_Begin_ReplaysTerminalOutcome(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	guard := idempotency.NewGuard(mockStore)

	body := []byte(`{"pool":"fast"}`)
	hash, err := idempotency.BodyHash(body)
	require.NoError(t, err)

	stored := datatypes.JSON(`{"output":"done"}`)
	mockStore.EXPECT().
		CreateIdempotencyRecord(gomock.Any(), gomock.Any()).
		Return(&schema.IdempotencyRecord{
			ID:           7,
			BodyHash:     hash,
			State:        domain.IdempotencyStateCompleted,
			ResponseBody: stored,
		}, false, nil)

	adm, err := guard.Begin(context.Background(), "tenant-1", "key-1", body)
	require.NoError(t, err)
	assert.True(t, adm.Replay)
	assert.Equal(t, stored, adm.Record.ResponseBody)
}

func TestGuard_Begin_InFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	guard := idempotency.NewGuard(mockStore)

	body := []byte(`{"pool":"fast"}`)
	hash, err := idempotency.BodyHash(body)
	require.NoError(t, err)

	mockStore.EXPECT().
		CreateIdempotencyRecord(gomock.Any(), gomock.Any()).
		Return(&schema.IdempotencyRecord{ID: 7, BodyHash: hash, State: domain.IdempotencyStateActive}, false, nil)

	adm, err := guard.Begin(context.Background(), "tenant-1", "key-1", body)
	require.NoError(t, err)
	assert.True(t, adm.InFlight)
	assert.False(t, adm.Replay)
}

func TestGuard_Begin_ResumeLostReplays(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	guard := idempotency.NewGuard(mockStore)

	body := []byte(`{"pool":"fast"}`)
	hash, err := idempotency.BodyHash(body)
	require.NoError(t, err)

	mockStore.EXPECT().
		CreateIdempotencyRecord(gomock.Any(), gomock.Any()).
		Return(&schema.IdempotencyRecord{
			ID:          7,
			BodyHash:    hash,
			State:       domain.IdempotencyStateResumeLost,
			PartialCost: decimal.RequireFromString("0.25"),
		}, false, nil)

	adm, err := guard.Begin(context.Background(), "tenant-1", "key-1", body)
	require.NoError(t, err)
	// The lost execution is never re-run; the caller surfaces the partial cost
	assert.True(t, adm.Replay)
	assert.Equal(t, domain.IdempotencyStateResumeLost, adm.Record.State)
	assert.True(t, adm.Record.PartialCost.Equal(decimal.RequireFromString("0.25")))
}

func TestGuard_Begin_AbortedKeyReclaimed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	guard := idempotency.NewGuard(mockStore)

	body := []byte(`{"pool":"fast"}`)
	hash, err := idempotency.BodyHash(body)
	require.NoError(t, err)

	mockStore.EXPECT().
		CreateIdempotencyRecord(gomock.Any(), gomock.Any()).
		Return(&schema.IdempotencyRecord{ID: 7, BodyHash: hash, State: domain.IdempotencyStateAborted}, false, nil)
	mockStore.EXPECT().
		TransitionIdempotencyRecord(gomock.Any(), int64(7),
			domain.IdempotencyStateAborted, domain.IdempotencyStateActive, gomock.Any(), gomock.Any()).
		Return(true, nil)

	adm, err := guard.Begin(context.Background(), "tenant-1", "key-1", body)
	require.NoError(t, err)
	// An aborted attempt never reached the upstream; the retry re-executes
	assert.False(t, adm.Replay)
	assert.False(t, adm.InFlight)
	assert.Equal(t, domain.IdempotencyStateActive, adm.Record.State)
}

func TestGuard_Begin_AbortedReclaimRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	guard := idempotency.NewGuard(mockStore)

	body := []byte(`{"pool":"fast"}`)
	hash, err := idempotency.BodyHash(body)
	require.NoError(t, err)

	mockStore.EXPECT().
		CreateIdempotencyRecord(gomock.Any(), gomock.Any()).
		Return(&schema.IdempotencyRecord{ID: 7, BodyHash: hash, State: domain.IdempotencyStateAborted}, false, nil)
	// A concurrent retry won the reclaim
	mockStore.EXPECT().
		TransitionIdempotencyRecord(gomock.Any(), int64(7),
			domain.IdempotencyStateAborted, domain.IdempotencyStateActive, gomock.Any(), gomock.Any()).
		Return(false, nil)

	adm, err := guard.Begin(context.Background(), "tenant-1", "key-1", body)
	require.NoError(t, err)
	assert.True(t, adm.InFlight)
}

func TestGuard_Complete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	guard := idempotency.NewGuard(mockStore)

	record := &schema.IdempotencyRecord{ID: 7, State: domain.IdempotencyStateActive}
	response := datatypes.JSON(`{"output":"hi"}`)
	cost := decimal.RequireFromString("1.5")

	mockStore.EXPECT().
		TransitionIdempotencyRecord(gomock.Any(), int64(7),
			domain.IdempotencyStateActive, domain.IdempotencyStateCompleted, response, cost).
		Return(true, nil)

	require.NoError(t, guard.Complete(context.Background(), record, response, cost))
}

func TestGuard_Complete_NotActive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	guard := idempotency.NewGuard(mockStore)

	mockStore.EXPECT().
		TransitionIdempotencyRecord(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(false, nil)

	err := guard.Complete(context.Background(), &schema.IdempotencyRecord{ID: 7}, nil, decimal.Zero)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}
