package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/api/middleware"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/ratelimit"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/token"
)

// SetupRoutes registers the public inference surface and the key-protected
// admin surface on the given router.
func SetupRoutes(router *gin.Engine, handler *Handler, verifier *token.Verifier, limiter ratelimit.Limiter, adminKeys []string) {
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")

	v1.POST("/inference",
		middleware.TokenAuth(verifier),
		middleware.RateLimit(limiter),
		handler.Inference,
	)

	admin := v1.Group("/admin", middleware.APIKeyAuth(adminKeys))
	{
		admin.POST("/tokens/mint", handler.MintToken)
		admin.GET("/signing-keys/active", handler.GetActiveSigningKey)
		admin.POST("/signing-keys", handler.RotateSigningKey)

		admin.GET("/budgets", handler.ListBudgets)
		admin.GET("/budgets/:tenant_id", handler.GetBudget)

		admin.POST("/grants", handler.CreateGrant)
		admin.POST("/transfers", handler.CreateTransfer)
		admin.GET("/accounts/:account_id/balance", handler.GetBalance)
		admin.GET("/accounts/:account_id/entries", handler.GetEntries)
		admin.POST("/clawbacks/:receivable_id/resolve", handler.ResolveClawback)

		admin.GET("/tenants/:tenant_id/byok-keys", handler.ListBYOKKeys)
		admin.POST("/tenants/:tenant_id/byok-keys", handler.RegisterBYOKKey)
		admin.DELETE("/tenants/:tenant_id/byok-keys/:provider", handler.RevokeBYOKKey)

		admin.POST("/proposals", handler.CreateProposal)
		admin.GET("/proposals/:proposal_id", handler.GetProposal)
		admin.POST("/proposals/:proposal_id/votes", handler.CastVote)
		admin.POST("/delegations", handler.CreateDelegation)
		admin.POST("/governance/tick", handler.GovernanceTick)

		admin.POST("/reconciliation/runs", handler.TriggerReconciliation)
		admin.GET("/reconciliation/runs", handler.ListReconciliationRuns)
	}
}
