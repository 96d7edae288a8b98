package chains

import (
	"strings"
	"testing"

	"github.com/go-wallet-verify/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidAddress(t *testing.T) {
	evm := "0x" + strings.Repeat("ab", 20)                  // 0x + 40 hex
	sui := "0x" + strings.Repeat("ab", 32)                  // 0x + 64 hex
	svm := "DRpbCBMxVnDK7maPM5tGv6MvB3v1sRMC86PZ8okm21hy"   // 44-char base58

	cases := []struct {
		addr string
		evm  bool
		sui  bool
		svm  bool
	}{
		{evm, true, false, false},
		{sui, false, true, false},
		{svm, false, false, true},
		{"", false, false, false},
		{"0x", false, false, false},
		{evm + "ab", false, false, false},                     // 42 hex chars: too long for EVM, too short for SUI
		{"0x" + strings.Repeat("g", 40), false, false, false}, // not hex
		{strings.Repeat("1", 31), false, false, false},        // below SVM minimum length
		{strings.Repeat("1", 45), false, false, false},        // above SVM maximum length
		{"OOOOIIIIllll0000OOOOIIIIllll0000", false, false, false}, // chars excluded from base58
	}

	for _, c := range cases {
		assert.Equal(t, c.evm, ValidAddress(c.addr, domain.WalletTypeEVM), "EVM %q", c.addr)
		assert.Equal(t, c.sui, ValidAddress(c.addr, domain.WalletTypeSUI), "SUI %q", c.addr)
		assert.Equal(t, c.svm, ValidAddress(c.addr, domain.WalletTypeSVM), "SVM %q", c.addr)
	}
}

func TestValidAddressUnknownChain(t *testing.T) {
	assert.False(t, ValidAddress("0x"+strings.Repeat("ab", 20), domain.WalletType("DOGE")))
}
