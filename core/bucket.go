package core

// Bucket is a transient resource container scoped to a call frame
// (spec.md §3, §4.B). It is destroyed by a put into another
// bucket/vault or by burn, and is owned by exactly one call frame at a
// time.
type Bucket struct {
	ResourceDef  Address
	ResourceType ResourceType
	Supply       ResourceSupply
}

// NewFungibleBucket builds a bucket holding a fungible amount.
func NewFungibleBucket(def Address, rt ResourceType, amount Decimal) *Bucket {
	return &Bucket{ResourceDef: def, ResourceType: rt, Supply: ResourceSupply{Kind: ResourceFungible, Amount: amount}}
}

// NewNonFungibleBucket builds a bucket holding the given NFT entries.
func NewNonFungibleBucket(def Address, rt ResourceType, entries []NftEntry) *Bucket {
	return &Bucket{ResourceDef: def, ResourceType: rt, Supply: ResourceSupply{Kind: ResourceNonFungible, Entries: entries}}
}

// Amount returns the bucket's current logical amount.
func (b *Bucket) Amount() Decimal { return b.Supply.Amount() }

// IsEmpty reports whether the bucket holds nothing.
func (b *Bucket) IsEmpty() bool { return b.Amount().IsZero() }

// checkAmount enforces granularity and non-negativity (spec.md §3
// invariants "Granularity", "Non-negativity").
func checkAmount(amount Decimal, rt ResourceType) error {
	if amount.IsNegative() {
		return newErr(ErrNegativeAmount, "amount %s is negative", amount)
	}
	g := rt.EffectiveGranularity()
	if g < 1 || g > 36 {
		return newErr(ErrInvalidGranularity, "granularity %d out of range", g)
	}
	if amount.ModPow10(uint(g-1)).Sign() != 0 {
		return newErr(ErrGranularityCheckFailed, "amount %s not a multiple of 10^%d", amount, g-1)
	}
	return nil
}

// Put merges other into b: fungible amounts add, non-fungible entries
// concatenate while rejecting id collisions. other is left empty. Fails
// MismatchingResourceDef if the defs differ (spec.md §4.B).
func (b *Bucket) Put(other *Bucket) error {
	if b.ResourceDef != other.ResourceDef {
		return newErr(ErrMismatchingResourceDef, "put: %s into %s", other.ResourceDef, b.ResourceDef)
	}
	switch b.Supply.Kind {
	case ResourceFungible:
		sum, err := b.Supply.Amount.Add(other.Supply.Amount)
		if err != nil {
			return err
		}
		b.Supply.Amount = sum
	case ResourceNonFungible:
		for _, e := range other.Supply.Entries {
			if b.Supply.findEntry(e.Id) >= 0 {
				return newErr(ErrNftAlreadyExists, "duplicate nft id in put")
			}
		}
		b.Supply.Entries = append(b.Supply.Entries, other.Supply.Entries...)
	}
	other.Supply = ResourceSupply{Kind: other.ResourceType.Kind}
	return nil
}

// Take removes amount from b and returns it as a new bucket of the same
// def. Fails GranularityCheckFailed/NegativeAmount per checkAmount, or
// InsufficientBalance if amount exceeds the current balance.
func (b *Bucket) Take(amount Decimal) (*Bucket, error) {
	if err := checkAmount(amount, b.ResourceType); err != nil {
		return nil, err
	}
	if b.Amount().Cmp(amount) < 0 {
		return nil, newErr(ErrInsufficientBalance, "have %s, need %s", b.Amount(), amount)
	}
	switch b.Supply.Kind {
	case ResourceFungible:
		remaining, err := b.Supply.Amount.Sub(amount)
		if err != nil {
			return nil, err
		}
		b.Supply.Amount = remaining
		return NewFungibleBucket(b.ResourceDef, b.ResourceType, amount), nil
	default: // ResourceNonFungible
		n, err := amount.AsUint64Entries()
		if err != nil {
			return nil, err
		}
		split := b.Supply.Entries[uint64(len(b.Supply.Entries))-n:]
		b.Supply.Entries = b.Supply.Entries[:uint64(len(b.Supply.Entries))-n]
		out := append([]NftEntry{}, split...)
		return NewNonFungibleBucket(b.ResourceDef, b.ResourceType, out), nil
	}
}

// TakeNft removes and returns a single NFT by id, fails NftNotFound
// otherwise (spec.md §4.B).
func (b *Bucket) TakeNft(id NftId) (*Bucket, error) {
	if b.Supply.Kind != ResourceNonFungible {
		return nil, newErr(ErrUnsupportedOperation, "take_nft on fungible bucket")
	}
	idx := b.Supply.findEntry(id)
	if idx < 0 {
		return nil, newErr(ErrNftNotFound, "nft %x not in bucket", id)
	}
	entry := b.Supply.Entries[idx]
	b.Supply.Entries = append(b.Supply.Entries[:idx], b.Supply.Entries[idx+1:]...)
	return NewNonFungibleBucket(b.ResourceDef, b.ResourceType, []NftEntry{entry}), nil
}
