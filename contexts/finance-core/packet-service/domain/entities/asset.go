package entities

import "strings"

// AssetKind classifies how value is held on the ledger.
type AssetKind string

const (
	AssetKindNative        AssetKind = "native"
	AssetKindFungibleToken AssetKind = "fungible_token"
)

const nativeAssetKey = "native"

// Asset is identity metadata only; it carries no quantity.
type Asset struct {
	Kind     AssetKind
	ID       string
	Decimals int32
}

func NativeAsset(decimals int32) Asset {
	return Asset{Kind: AssetKindNative, Decimals: decimals}
}

func TokenAsset(id string, decimals int32) Asset {
	return Asset{Kind: AssetKindFungibleToken, ID: strings.TrimSpace(id), Decimals: decimals}
}

func (a Asset) Valid() bool {
	if a.Decimals < 0 || a.Decimals > 18 {
		return false
	}
	switch a.Kind {
	case AssetKindNative:
		return a.ID == ""
	case AssetKindFungibleToken:
		return strings.TrimSpace(a.ID) != ""
	default:
		return false
	}
}

// Key addresses the balance bucket of this asset inside an owner's accounts.
func (a Asset) Key() string {
	if a.Kind == AssetKindFungibleToken {
		return "token:" + a.ID
	}
	return nativeAssetKey
}

// AccountKind separates principal balances from packet vaults so that no
// principal identity can address a vault.
type AccountKind string

const (
	AccountKindPrincipal AccountKind = "principal"
	AccountKindVault     AccountKind = "vault"
)

// reservedPrincipalPrefix is the owner prefix of vault accounts.
const reservedPrincipalPrefix = "vault:"

// Account is a ledger balance holder: the owner's main balance for the native
// asset, or the owner's sub-account for a token.
type Account struct {
	Kind     AccountKind
	Owner    string
	AssetKey string
}

func PrincipalAccount(owner string, asset Asset) Account {
	return Account{Kind: AccountKindPrincipal, Owner: owner, AssetKey: asset.Key()}
}

func VaultOwner(id PacketID) string {
	return reservedPrincipalPrefix + id.String()
}

func VaultAccount(id PacketID, asset Asset) Account {
	return Account{Kind: AccountKindVault, Owner: VaultOwner(id), AssetKey: asset.Key()}
}

// ValidPrincipal reports whether p may act as a creator or claimant.
func ValidPrincipal(p string) bool {
	p = strings.TrimSpace(p)
	return p != "" && !strings.HasPrefix(strings.ToLower(p), reservedPrincipalPrefix)
}
