package rest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/api/rest/dto"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/token"
)

// RegisterBYOKKey stores a tenant's provider key. The routing layer resolves
// providers from this row, so the provider named here is authoritative.
func (h *Handler) RegisterBYOKKey(c *gin.Context) {
	var req dto.BYOKKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid key registration body")
		return
	}
	provider := domain.Provider(req.Provider)
	switch provider {
	case domain.ProviderAnthropic, domain.ProviderOpenAI, domain.ProviderOpenRouter:
	default:
		respondValidation(c, "unknown provider")
		return
	}

	tenantID := c.Param("tenant_id")
	sum := sha256.Sum256([]byte(req.Key))
	key := &schema.BYOKKey{
		TenantID:    tenantID,
		Provider:    provider,
		Fingerprint: hex.EncodeToString(sum[:]),
		Ciphertext:  []byte(req.Key),
	}
	if err := h.store.CreateBYOKKey(c.Request.Context(), key); err != nil {
		respondError(c, err, zap.String("tenant_id", tenantID))
		return
	}

	logger.InfoCtx(c.Request.Context(), "Registered BYOK key",
		zap.String("tenant_id", tenantID),
		zap.String("provider", string(provider)),
		zap.String("fingerprint", key.Fingerprint),
	)
	c.JSON(http.StatusCreated, gin.H{
		"provider":    string(provider),
		"fingerprint": key.Fingerprint,
	})
}

// RevokeBYOKKey excludes a tenant's provider key from routing.
func (h *Handler) RevokeBYOKKey(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	provider := domain.Provider(c.Param("provider"))

	if err := h.store.RevokeBYOKKey(c.Request.Context(), tenantID, provider); err != nil {
		respondError(c, err,
			zap.String("tenant_id", tenantID),
			zap.String("provider", string(provider)),
		)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revoked": true})
}

// RotateSigningKey retires the active verification key and installs a new
// one. Tokens signed by the retired key stay verifiable until they expire;
// the issuer picks up the new kid on redeploy.
func (h *Handler) RotateSigningKey(c *gin.Context) {
	var req dto.RotateSigningKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid rotation body")
		return
	}
	if _, err := token.ParseECPublicKey(req.PublicKeyPEM); err != nil {
		respondError(c, fmt.Errorf("public key is not a valid ECDSA PEM: %w", domain.ErrValidation))
		return
	}

	key := &schema.SigningKey{
		KID:          req.Kid,
		PublicKeyPEM: req.PublicKeyPEM,
		Active:       true,
	}
	if err := h.store.RotateSigningKey(c.Request.Context(), key); err != nil {
		respondError(c, err, zap.String("kid", req.Kid))
		return
	}

	logger.InfoCtx(c.Request.Context(), "Rotated signing key", zap.String("kid", req.Kid))
	c.JSON(http.StatusCreated, dto.SigningKeyResponse{
		Kid:       key.KID,
		Active:    key.Active,
		CreatedAt: key.CreatedAt,
	})
}
