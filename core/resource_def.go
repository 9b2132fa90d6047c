package core

import "bytes"

// ResourceTypeKind distinguishes fungible from non-fungible resources.
type ResourceTypeKind uint8

const (
	ResourceFungible ResourceTypeKind = iota
	ResourceNonFungible
)

// ResourceType carries the granularity for fungible resources; a
// non-fungible resource implicitly has granularity 19 (spec.md §3).
type ResourceType struct {
	Kind        ResourceTypeKind
	Granularity uint8 // 1..=36, meaningful only when Kind == ResourceFungible
}

// EffectiveGranularity returns the granularity used for amount checks.
func (t ResourceType) EffectiveGranularity() uint8 {
	if t.Kind == ResourceNonFungible {
		return 19
	}
	return t.Granularity
}

// NftId is an opaque 128-bit non-fungible identifier, stored big-endian so
// that byte-comparison matches numeric ordering.
type NftId [16]byte

// NewNftId builds an NftId from a small integer.
func NewNftId(v uint64) NftId {
	var id NftId
	for i := 0; i < 8; i++ {
		id[15-i] = byte(v >> (8 * i))
	}
	return id
}

func (id NftId) Cmp(o NftId) int { return bytes.Compare(id[:], o[:]) }

// NftEntry is one (id, immutable, mutable) triple held inside a
// NonFungible ResourceSupply, in insertion order (spec.md §3).
type NftEntry struct {
	Id        NftId
	Immutable []byte
	Mutable   []byte
}

// ResourceSupply is the Fungible{amount} / NonFungible{entries} variant
// held by a Bucket or Vault.
type ResourceSupply struct {
	Kind    ResourceTypeKind
	Amount  Decimal // meaningful when Kind == ResourceFungible
	Entries []NftEntry
}

// Amount returns the logical amount represented by the supply: the
// fungible amount, or the entry count for non-fungible supplies.
func (s ResourceSupply) Amount() Decimal {
	if s.Kind == ResourceFungible {
		return s.Amount
	}
	return DecimalFromUint64(uint64(len(s.Entries)))
}

func (s ResourceSupply) findEntry(id NftId) int {
	for i, e := range s.Entries {
		if e.Id == id {
			return i
		}
	}
	return -1
}

// ResourceFlags records authorisation/feature policy for a ResourceDef:
// whether mint/burn/transfer/mutable-data-update require presenting a
// bucket-ref to the named badge resource (spec.md §4.B, §4.F).
type ResourceFlags struct {
	AllowMint              bool
	AllowBurn              bool
	RestrictedTransfer     bool
	AllowUpdateMutableData bool
	MintBadge              Address
	BurnBadge              Address
	TransferBadge          Address
	UpdateMutableDataBadge Address
}

// ResourceDef is the identity and policy of a resource kind: type,
// metadata, recorded total supply and authorisation flags (spec.md §3).
type ResourceDef struct {
	Addr        Address
	Type        ResourceType
	Metadata    map[string]string
	TotalSupply Decimal
	Flags       ResourceFlags
}

// badgePresented reports whether authRef locks a bucket of the given badge
// resource, non-empty. A zero badge address means no badge is required.
func badgePresented(authRef *LockedBucket, badge Address) bool {
	if badge.IsZero() {
		return true
	}
	if authRef == nil || authRef.Bucket == nil {
		return false
	}
	return authRef.Bucket.ResourceDef == badge && !authRef.Bucket.Amount().IsZero()
}

// Mint increases total supply and returns a fresh fungible bucket of the
// minted amount, gated by AllowMint and the mint badge.
func (rd *ResourceDef) Mint(amount Decimal, authRef *LockedBucket) (*Bucket, error) {
	if rd.Type.Kind != ResourceFungible {
		return nil, newErr(ErrUnsupportedOperation, "mint(amount) on non-fungible resource %s", rd.Addr)
	}
	if !rd.Flags.AllowMint {
		return nil, newErr(ErrUnauthorized, "minting disabled for resource %s", rd.Addr)
	}
	if !badgePresented(authRef, rd.Flags.MintBadge) {
		return nil, newErr(ErrUnauthorized, "mint badge not presented for resource %s", rd.Addr)
	}
	if err := checkAmount(amount, rd.Type); err != nil {
		return nil, err
	}
	newTotal, err := rd.TotalSupply.Add(amount)
	if err != nil {
		return nil, err
	}
	rd.TotalSupply = newTotal
	return NewFungibleBucket(rd.Addr, rd.Type, amount), nil
}

// MintNft mints a single NFT with the given id, gated the same way as
// fungible Mint. It does not check whether the id has been minted before
// and never returns NftAlreadyExists: a repeated id is minted again and
// counted in total supply, and is rejected only when two buckets holding
// it are merged by Bucket.Put.
func (rd *ResourceDef) MintNft(id NftId, immutable, mutable []byte, authRef *LockedBucket) (*Bucket, error) {
	if rd.Type.Kind != ResourceNonFungible {
		return nil, newErr(ErrUnsupportedOperation, "mint_nft on fungible resource %s", rd.Addr)
	}
	if !rd.Flags.AllowMint {
		return nil, newErr(ErrUnauthorized, "minting disabled for resource %s", rd.Addr)
	}
	if !badgePresented(authRef, rd.Flags.MintBadge) {
		return nil, newErr(ErrUnauthorized, "mint badge not presented for resource %s", rd.Addr)
	}
	newTotal, err := rd.TotalSupply.Add(DecimalFromUint64(1))
	if err != nil {
		return nil, err
	}
	rd.TotalSupply = newTotal
	b := NewNonFungibleBucket(rd.Addr, rd.Type, []NftEntry{{Id: id, Immutable: immutable, Mutable: mutable}})
	return b, nil
}

// Burn destroys bucket entirely, decreasing total supply by its amount,
// gated by AllowBurn and the burn badge.
func (rd *ResourceDef) Burn(bucket *Bucket, authRef *LockedBucket) error {
	if bucket.ResourceDef != rd.Addr {
		return newErr(ErrMismatchingResourceDef, "burn: bucket is of %s, resource is %s", bucket.ResourceDef, rd.Addr)
	}
	if !rd.Flags.AllowBurn {
		return newErr(ErrUnauthorized, "burning disabled for resource %s", rd.Addr)
	}
	if !badgePresented(authRef, rd.Flags.BurnBadge) {
		return newErr(ErrUnauthorized, "burn badge not presented for resource %s", rd.Addr)
	}
	newTotal, err := rd.TotalSupply.Sub(bucket.Amount())
	if err != nil {
		return err
	}
	rd.TotalSupply = newTotal
	bucket.Supply = ResourceSupply{Kind: bucket.ResourceType.Kind}
	return nil
}
