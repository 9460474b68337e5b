package governance

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gowebpki/jcs"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// canonicalHash returns the hex-encoded SHA-256 of the JCS canonical form of
// a JSON payload, so semantically identical proposals hash identically.
func canonicalHash(payload []byte) (string, error) {
	canonical, err := jcs.Transform(payload)
	if err != nil {
		return "", fmt.Errorf("%w: payload is not valid JSON: %v", domain.ErrValidation, err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// RecoverSigner returns the address that produced an EIP-191 personal-sign
// signature over message.
func RecoverSigner(message []byte, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: malformed signature encoding", domain.ErrAuth)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: signature must be %d bytes", domain.ErrAuth, crypto.SignatureLength)
	}

	// Wallets emit V as 27/28; go-ethereum recovery expects 0/1
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: signature recovery failed", domain.ErrAuth)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// verifyAgentSignature checks that signature over message was produced by
// the agent's bound chain address.
func verifyAgentSignature(chainAddress string, message []byte, signature string) error {
	signer, err := RecoverSigner(message, signature)
	if err != nil {
		return err
	}
	if signer != common.HexToAddress(chainAddress) {
		return fmt.Errorf("%w: signature does not match agent identity", domain.ErrAuth)
	}
	return nil
}
