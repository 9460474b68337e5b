package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/api/rest"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/mocks"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

// newLedgerRouter wires only the credit-ledger routes; the other
// collaborators are not on these paths.
func newLedgerRouter(t *testing.T) (*gin.Engine, *mocks.MockLedgerService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	ledger := mocks.NewMockLedgerService(ctrl)
	handler := rest.NewHandler(nil, nil, nil, nil, ledger, nil, nil, nil, nil, nil, nil)

	router := gin.New()
	router.POST("/api/v1/credits/grants", handler.CreateGrant)
	return router, ledger
}

func TestCreateGrant_CreatesLot(t *testing.T) {
	router, ledger := newLedgerRouter(t)

	amount := decimal.RequireFromString("25")
	ledger.EXPECT().
		Grant(gomock.Any(), "guild-1", schema.AccountKindTenant, domain.LotSourceGrant, amount).
		Return(&schema.CreditLot{ID: 7, OriginalAmount: amount, Remaining: amount}, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"account_id": "guild-1",
		"kind":       "tenant",
		"source":     "grant",
		"amount":     "25",
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/credits/grants", bytes.NewReader(body))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		LotID  int64           `json:"lot_id"`
		Amount decimal.Decimal `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.LotID)
	assert.True(t, resp.Amount.Equal(amount))
}

func TestCreateGrant_RejectsUnknownKind(t *testing.T) {
	router, _ := newLedgerRouter(t)

	body, _ := json.Marshal(map[string]interface{}{
		"account_id": "guild-1",
		"kind":       "robot",
		"source":     "grant",
		"amount":     "25",
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/credits/grants", bytes.NewReader(body))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "kind")
}
