package core

import "testing"

func TestFinishTopFrameFailsOnUnspentBucket(t *testing.T) {
	e := NewEngine(NewMemorySubstateStore(), nil, Hash{})
	e.StartTopFrame()

	rd, _ := testFungibleDef()
	bucket, err := rd.Mint(mustDecimal(t, "1"), nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	e.CurrentFrame().PutBucket(e.FreshBid(), bucket)

	if err := e.FinishTopFrame(); KindOf(err) != ErrResourceCheckFailure {
		t.Fatalf("expected ErrResourceCheckFailure for an unspent bucket, got %v", err)
	}
}

func TestFinishTopFrameSucceedsWhenEmpty(t *testing.T) {
	e := NewEngine(NewMemorySubstateStore(), nil, Hash{})
	e.StartTopFrame()
	if err := e.FinishTopFrame(); err != nil {
		t.Fatalf("expected a clean frame to finish without error, got %v", err)
	}
}

func TestPublishPackageRejectsInvalidModuleWithoutNewEntity(t *testing.T) {
	e := NewEngine(NewMemorySubstateStore(), nil, Hash{})
	code := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00} // magic + version, no sections

	// A module with no memory export fails ValidateModule, so
	// PublishPackage must surface that failure rather than minting an
	// address for invalid code.
	if _, err := e.PublishPackage(code); err == nil {
		t.Fatalf("expected PublishPackage to reject a memory-less module")
	}
	if len(e.NewEntities()) != 0 {
		t.Fatalf("a rejected publish must not record a new entity")
	}
}
