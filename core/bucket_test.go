package core

import "testing"

func testFungibleDef() (*ResourceDef, Address) {
	addr := NewResourceDefAddress(Hash{1})
	return &ResourceDef{
		Addr:        addr,
		Type:        ResourceType{Kind: ResourceFungible, Granularity: 18},
		Flags:       ResourceFlags{AllowMint: true, AllowBurn: true},
		TotalSupply: ZeroDecimal(),
	}, addr
}

func TestBucketPutTakeConservesAmount(t *testing.T) {
	rd, _ := testFungibleDef()
	minted, err := rd.Mint(mustDecimal(t, "100"), nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	half, err := minted.Take(mustDecimal(t, "40"))
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if minted.Amount().Cmp(mustDecimal(t, "60")) != 0 {
		t.Fatalf("expected 60 remaining, got %s", minted.Amount())
	}

	if err := minted.Put(half); err != nil {
		t.Fatalf("put back: %v", err)
	}
	if minted.Amount().Cmp(mustDecimal(t, "100")) != 0 {
		t.Fatalf("expected conservation back to 100, got %s", minted.Amount())
	}
	if !half.IsEmpty() {
		t.Fatalf("source bucket should be drained after Put")
	}
}

func TestBucketTakeRejectsFractionBelowGranularity(t *testing.T) {
	rd := &ResourceDef{
		Addr:        NewResourceDefAddress(Hash{2}),
		Type:        ResourceType{Kind: ResourceFungible, Granularity: 19}, // whole units only
		Flags:       ResourceFlags{AllowMint: true},
		TotalSupply: ZeroDecimal(),
	}
	minted, err := rd.Mint(mustDecimal(t, "10"), nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	_, err = minted.Take(mustDecimal(t, "0.5"))
	if err == nil {
		t.Fatalf("expected granularity check to reject a fractional take on a granularity-19 resource")
	}
	if KindOf(err) != ErrGranularityCheckFailed {
		t.Fatalf("expected ErrGranularityCheckFailed, got %v", err)
	}
}

func TestBucketTakeRejectsNegativeAmount(t *testing.T) {
	rd, _ := testFungibleDef()
	minted, err := rd.Mint(mustDecimal(t, "10"), nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	_, err = minted.Take(mustDecimal(t, "-1"))
	if KindOf(err) != ErrNegativeAmount {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestBucketPutRejectsNftCollision(t *testing.T) {
	rd := &ResourceDef{
		Addr:        NewResourceDefAddress(Hash{3}),
		Type:        ResourceType{Kind: ResourceNonFungible},
		Flags:       ResourceFlags{AllowMint: true},
		TotalSupply: ZeroDecimal(),
	}
	id := NewNftId(1)
	b1, err := rd.MintNft(id, nil, nil, nil)
	if err != nil {
		t.Fatalf("mint_nft: %v", err)
	}
	b2, err := rd.MintNft(id, nil, nil, nil)
	if err != nil {
		t.Fatalf("mint_nft (second, same id): %v", err)
	}
	if err := b1.Put(b2); err == nil {
		t.Fatalf("expected duplicate NFT id to be rejected on put")
	} else if KindOf(err) != ErrNftAlreadyExists {
		t.Fatalf("expected ErrNftAlreadyExists, got %v", err)
	}
}

func TestVaultWithdrawRequiresTransferBadgeWhenRestricted(t *testing.T) {
	badge := NewResourceDefAddress(Hash{9})
	rd := &ResourceDef{
		Addr:        NewResourceDefAddress(Hash{4}),
		Type:        ResourceType{Kind: ResourceFungible, Granularity: 18},
		Flags:       ResourceFlags{AllowMint: true, RestrictedTransfer: true, TransferBadge: badge},
		TotalSupply: ZeroDecimal(),
	}
	minted, err := rd.Mint(mustDecimal(t, "100"), nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	v := NewVaultWithBucket(Vid(1), minted)

	if _, err := v.Take(mustDecimal(t, "10"), rd, nil); KindOf(err) != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized without a badge-ref, got %v", err)
	}

	badgeBucket := NewFungibleBucket(badge, ResourceType{Kind: ResourceFungible, Granularity: 18}, mustDecimal(t, "1"))
	ref := &LockedBucket{Bucket: badgeBucket}
	out, err := v.Take(mustDecimal(t, "10"), rd, ref)
	if err != nil {
		t.Fatalf("expected withdraw to succeed with the badge presented: %v", err)
	}
	if out.Amount().Cmp(mustDecimal(t, "10")) != 0 {
		t.Fatalf("expected to withdraw 10, got %s", out.Amount())
	}
}
