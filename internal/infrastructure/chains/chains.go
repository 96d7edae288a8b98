package chains

import (
	"fmt"

	"github.com/go-wallet-verify/internal/domain"
)

// Verifier recovers the signing wallet address from a challenge message and
// a signature. Implementations are chain-specific; the recovered address is
// returned in the chain's canonical rendering.
type Verifier interface {
	Verify(challenge, signature string) (string, error)
}

// Registry dispatches verification over the closed wallet-type set.
type Registry struct {
	verifiers map[domain.WalletType]Verifier
}

// NewRegistry builds a registry covering every member of domain.WalletTypes.
// SUI and SVM are registered as explicit unsupported stubs so an attempt on
// those chains fails with a typed error instead of a missing-key lookup.
func NewRegistry() *Registry {
	return &Registry{
		verifiers: map[domain.WalletType]Verifier{
			domain.WalletTypeEVM: &EVMVerifier{},
			domain.WalletTypeSUI: unsupported{chain: domain.WalletTypeSUI},
			domain.WalletTypeSVM: unsupported{chain: domain.WalletTypeSVM},
		},
	}
}

// Verify dispatches to the verifier for the claimed wallet type and checks
// that the recovered address matches the claimed chain's format. A format
// mismatch is a signature error, never a silent coercion.
func (r *Registry) Verify(walletType domain.WalletType, challenge, signature string) (string, error) {
	v, ok := r.verifiers[walletType]
	if !ok {
		return "", fmt.Errorf("wallet type %q: %w", walletType, domain.ErrUnsupportedChain)
	}
	addr, err := v.Verify(challenge, signature)
	if err != nil {
		return "", err
	}
	if !ValidAddress(addr, walletType) {
		return "", fmt.Errorf("recovered address %q is not a valid %s address: %w", addr, walletType, domain.ErrSignature)
	}
	return addr, nil
}

// unsupported is a placeholder verifier for chains whose signature scheme is
// not implemented yet.
type unsupported struct {
	chain domain.WalletType
}

func (u unsupported) Verify(string, string) (string, error) {
	return "", fmt.Errorf("%s wallet verification not yet implemented: %w", u.chain, domain.ErrUnsupportedChain)
}
