package core

// Vault mirrors Bucket but is persistent and addressable by Vid, owned
// (through the substate graph) by exactly one component (spec.md §3).
// Withdrawals additionally consult the owning ResourceDef's flags: when
// RestrictedTransfer is set, the caller must present a bucket-ref proving
// possession of the matching badge (spec.md §4.B, and the redesign flag in
// §9 resolving the TODO left in the sampled Rust source).
type Vault struct {
	Vid          Vid
	ResourceDef  Address
	ResourceType ResourceType
	Supply       ResourceSupply
}

// NewVault creates an empty vault for the given resource definition.
func NewVault(id Vid, def Address, rt ResourceType) *Vault {
	return &Vault{Vid: id, ResourceDef: def, ResourceType: rt, Supply: ResourceSupply{Kind: rt.Kind}}
}

// NewVaultWithBucket creates a vault pre-seeded with bucket's contents,
// consuming the bucket.
func NewVaultWithBucket(id Vid, bucket *Bucket) *Vault {
	v := NewVault(id, bucket.ResourceDef, bucket.ResourceType)
	v.Supply = bucket.Supply
	bucket.Supply = ResourceSupply{Kind: bucket.ResourceType.Kind}
	return v
}

// Amount reports the vault's current balance.
func (v *Vault) Amount() Decimal { return v.Supply.Amount() }

// Put merges bucket's contents into the vault, consuming bucket.
func (v *Vault) Put(bucket *Bucket) error {
	if v.ResourceDef != bucket.ResourceDef {
		return newErr(ErrMismatchingResourceDef, "vault put: %s into vault of %s", bucket.ResourceDef, v.ResourceDef)
	}
	tmp := &Bucket{ResourceDef: v.ResourceDef, ResourceType: v.ResourceType, Supply: v.Supply}
	if err := tmp.Put(bucket); err != nil {
		return err
	}
	v.Supply = tmp.Supply
	return nil
}

// withdrawAuthorised enforces the restricted-transfer policy: the caller
// must present a bucket-ref to the transfer badge, or authRef may be nil
// when the resource has no such restriction.
func withdrawAuthorised(def *ResourceDef, authRef *LockedBucket) error {
	if def == nil || !def.Flags.RestrictedTransfer {
		return nil
	}
	if !badgePresented(authRef, def.Flags.TransferBadge) {
		return newErr(ErrUnauthorized, "restricted-transfer vault requires badge %s", def.Flags.TransferBadge)
	}
	return nil
}

// Take withdraws amount from the vault as a new bucket, consulting def's
// RestrictedTransfer flag and authRef.
func (v *Vault) Take(amount Decimal, def *ResourceDef, authRef *LockedBucket) (*Bucket, error) {
	if err := withdrawAuthorised(def, authRef); err != nil {
		return nil, err
	}
	tmp := &Bucket{ResourceDef: v.ResourceDef, ResourceType: v.ResourceType, Supply: v.Supply}
	out, err := tmp.Take(amount)
	if err != nil {
		return nil, err
	}
	v.Supply = tmp.Supply
	return out, nil
}

// TakeNft withdraws a single NFT by id from the vault.
func (v *Vault) TakeNft(id NftId, def *ResourceDef, authRef *LockedBucket) (*Bucket, error) {
	if err := withdrawAuthorised(def, authRef); err != nil {
		return nil, err
	}
	tmp := &Bucket{ResourceDef: v.ResourceDef, ResourceType: v.ResourceType, Supply: v.Supply}
	out, err := tmp.TakeNft(id)
	if err != nil {
		return nil, err
	}
	v.Supply = tmp.Supply
	return out, nil
}
