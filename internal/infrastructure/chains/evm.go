package chains

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-wallet-verify/internal/domain"
)

// EVMVerifier recovers the signer of an EIP-191 personal-sign message
// (the scheme browser wallets use for eth_sign / personal_sign).
type EVMVerifier struct{}

// Verify hashes the challenge with the personal-sign prefix, recovers the
// secp256k1 public key from the 65-byte signature and returns the signer's
// EIP-55 checksummed address.
func (v *EVMVerifier) Verify(challenge, signature string) (string, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return "", fmt.Errorf("signature is not hex: %w", domain.ErrSignature)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d: %w", crypto.SignatureLength, len(sig), domain.ErrSignature)
	}

	// Wallets emit V as 27/28; crypto.SigToPub expects 0/1.
	recovery := sig[crypto.RecoveryIDOffset]
	if recovery >= 27 {
		recovery -= 27
	}
	if recovery > 1 {
		return "", fmt.Errorf("invalid recovery id %d: %w", sig[crypto.RecoveryIDOffset], domain.ErrSignature)
	}
	normalized := make([]byte, crypto.SignatureLength)
	copy(normalized, sig)
	normalized[crypto.RecoveryIDOffset] = recovery

	pub, err := crypto.SigToPub(personalSignDigest(challenge), normalized)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", domain.ErrSignature)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// personalSignDigest computes keccak256("\x19Ethereum Signed Message:\n" + len + msg),
// the EIP-191 digest wallets actually sign.
func personalSignDigest(msg string) []byte {
	return crypto.Keccak256([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)))
}
