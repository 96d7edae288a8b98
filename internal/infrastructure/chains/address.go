package chains

import (
	"regexp"

	"github.com/go-wallet-verify/internal/domain"
	"github.com/mr-tron/base58"
)

var (
	evmAddressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	suiAddressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
	svmAddressRe = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)

// ValidAddress reports whether addr matches the canonical format of the given
// chain: EVM = 0x + 40 hex, SUI = 0x + 64 hex, SVM = base58 of 32-44 chars.
func ValidAddress(addr string, walletType domain.WalletType) bool {
	switch walletType {
	case domain.WalletTypeEVM:
		return evmAddressRe.MatchString(addr)
	case domain.WalletTypeSUI:
		return suiAddressRe.MatchString(addr)
	case domain.WalletTypeSVM:
		if !svmAddressRe.MatchString(addr) {
			return false
		}
		_, err := base58.Decode(addr)
		return err == nil
	}
	return false
}
