package blueprint

import "txengine/core"

// Account mirrors the reference Scrypto account blueprint
// (original_source/assets/account/src/lib.rs): a component holding one
// signer Address and a vault per resource definition it has ever
// received. Its withdraw methods require the transaction's signer set to
// contain the account's owner, mirroring the original's `auth` check,
// and additionally go through Vault.Take/TakeNft so a RESTRICTED_TRANSFER
// resource still demands its transfer badge.
//
// Unlike ComponentTest this blueprint's methods branch on a dynamic,
// unbounded-length value (the transaction's signer set) to decide
// authorisation. Hand-assembling that branch correctly in raw WASM
// bytecode without a compiler to check the encoding is impractical (see
// DESIGN.md); Account is instead implemented directly in Go against the
// same core.Vault/core.ResourceDef primitives a compiled blueprint's host
// calls would reach, and is exercised by account_test.go rather than
// through core/sandbox.go.
type Account struct {
	Owner  core.Address
	Vaults map[core.Address]*core.Vault
}

// NewAccount creates an account owned by owner, with no vaults yet.
func NewAccount(owner core.Address) *Account {
	return &Account{Owner: owner, Vaults: make(map[core.Address]*core.Vault)}
}

// authorised reports whether signers includes the account's owner
// (spec.md's supplemented account semantics; see original_source's
// `auth!` macro call on every mutating method).
func (a *Account) authorised(signers []core.Address) bool {
	for _, s := range signers {
		if s == a.Owner {
			return true
		}
	}
	return false
}

// Deposit puts bucket into the vault for its resource, creating the vault
// on first deposit. Deposits need no authorisation: anyone may pay into
// an account.
func (a *Account) Deposit(bucket *core.Bucket) error {
	v, ok := a.Vaults[bucket.ResourceDef]
	if !ok {
		v = core.NewVault(0, bucket.ResourceDef, bucket.ResourceType)
		a.Vaults[bucket.ResourceDef] = v
	}
	return v.Put(bucket)
}

// DepositBatch deposits every bucket in buckets, in order.
func (a *Account) DepositBatch(buckets []*core.Bucket) error {
	for _, b := range buckets {
		if err := a.Deposit(b); err != nil {
			return err
		}
	}
	return nil
}

// Withdraw takes amount from the account's vault for resourceAddr,
// requiring signers to contain the account's owner and, when def marks
// the resource RESTRICTED_TRANSFER, a bucket-ref proving possession of
// its transfer badge.
func (a *Account) Withdraw(amount core.Decimal, resourceAddr core.Address, def *core.ResourceDef, signers []core.Address, authRef *core.LockedBucket) (*core.Bucket, error) {
	if !a.authorised(signers) {
		return nil, &core.RuntimeError{Kind: core.ErrUnauthorized, Detail: "account withdraw: signer set does not include the owner"}
	}
	v, ok := a.Vaults[resourceAddr]
	if !ok {
		return nil, &core.RuntimeError{Kind: core.ErrVaultNotFound, Detail: "account has no vault for resource " + resourceAddr.String()}
	}
	return v.Take(amount, def, authRef)
}

// WithdrawNfts takes the single NFT id from the account's vault for
// resourceAddr, under the same authorisation rule as Withdraw.
func (a *Account) WithdrawNfts(id core.NftId, resourceAddr core.Address, def *core.ResourceDef, signers []core.Address, authRef *core.LockedBucket) (*core.Bucket, error) {
	if !a.authorised(signers) {
		return nil, &core.RuntimeError{Kind: core.ErrUnauthorized, Detail: "account withdraw_nfts: signer set does not include the owner"}
	}
	v, ok := a.Vaults[resourceAddr]
	if !ok {
		return nil, &core.RuntimeError{Kind: core.ErrVaultNotFound, Detail: "account has no vault for resource " + resourceAddr.String()}
	}
	return v.TakeNft(id, def, authRef)
}
