package domain

// WalletType identifies the blockchain family an address belongs to.
// The set is closed: every switch over WalletType must handle all three
// members so that adding a chain is caught at review time.
type WalletType string

const (
	WalletTypeEVM WalletType = "EVM"
	WalletTypeSUI WalletType = "SUI"
	WalletTypeSVM WalletType = "SVM"
)

// WalletTypes lists every supported wallet type.
var WalletTypes = []WalletType{WalletTypeEVM, WalletTypeSUI, WalletTypeSVM}

// Valid reports whether t is a member of the closed wallet-type set.
func (t WalletType) Valid() bool {
	switch t {
	case WalletTypeEVM, WalletTypeSUI, WalletTypeSVM:
		return true
	}
	return false
}

// WalletBinding is the durable record of a verified user-to-address link.
// PK: address. At most one owner per address; re-verification by the same
// owner overwrites VerifiedAt, a different owner is a conflict.
type WalletBinding struct {
	Address    string     `json:"address" dynamodbav:"address"`
	UserID     string     `json:"user_id" dynamodbav:"user_id"`
	ChainType  WalletType `json:"chain_type" dynamodbav:"chain_type"`
	VerifiedAt int64      `json:"verified_at" dynamodbav:"verified_at"` // Unix seconds
}
