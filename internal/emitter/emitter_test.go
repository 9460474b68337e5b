package emitter_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/adapter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/emitter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/mocks"
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

func TestEmit_PublishesEnvelope(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPublisher := mocks.NewMockPublisher(ctrl)
	mockClock := mocks.NewMockClock(ctrl)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	mockClock.EXPECT().Now().Return(now)

	var published *domain.GatewayEvent
	mockPublisher.EXPECT().
		PublishEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.GatewayEvent) error {
			published = event
			return nil
		})

	em := emitter.NewEmitter(mockPublisher, adapter.NewJSON(), mockClock)
	em.Emit(context.Background(), domain.EventCategoryBudget, domain.EventTypeDrift, "tenant-1", map[string]string{"drift": "0.5"})

	require.NotNil(t, published)
	assert.NotEmpty(t, published.ID)
	assert.Equal(t, domain.EventCategoryBudget, published.Category)
	assert.Equal(t, domain.EventTypeDrift, published.EventType)
	assert.Equal(t, "tenant-1", published.TenantID)
	assert.Equal(t, now, published.Timestamp)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(published.Payload, &payload))
	assert.Equal(t, "0.5", payload["drift"])
}

func TestEmit_PublishFailureDoesNotPropagate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPublisher := mocks.NewMockPublisher(ctrl)
	mockClock := mocks.NewMockClock(ctrl)
	mockClock.EXPECT().Now().Return(time.Now())

	mockPublisher.EXPECT().
		PublishEvent(gomock.Any(), gomock.Any()).
		Return(errors.New("broker down"))

	em := emitter.NewEmitter(mockPublisher, adapter.NewJSON(), mockClock)

	// Must not panic or surface the error
	em.Emit(context.Background(), domain.EventCategoryReconcile, domain.EventTypeAnomaly, "", map[string]string{"check": "lot_balance"})
}

func TestEmit_NilPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPublisher := mocks.NewMockPublisher(ctrl)
	mockClock := mocks.NewMockClock(ctrl)
	mockClock.EXPECT().Now().Return(time.Now())

	mockPublisher.EXPECT().
		PublishEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.GatewayEvent) error {
			assert.Nil(t, event.Payload)
			return nil
		})

	em := emitter.NewEmitter(mockPublisher, adapter.NewJSON(), mockClock)
	em.Emit(context.Background(), domain.EventCategoryGovernance, domain.EventTypeProposalExpired, "tenant-1", nil)
}
