package blueprint

import (
	"testing"

	"txengine/core"
)

func testResourceAddr(tag byte) core.Address {
	return core.NewResourceDefAddress(core.Hash{tag})
}

func TestAccountDepositWithdrawRoundTrip(t *testing.T) {
	owner := core.NewPackageAddress([]byte("owner-key"), 1)
	other := core.NewPackageAddress([]byte("other-key"), 1)
	resource := testResourceAddr(1)
	rt := core.ResourceType{Kind: core.ResourceFungible, Granularity: 1}
	def := &core.ResourceDef{Addr: resource, Type: rt, Flags: core.ResourceFlags{}}

	acct := NewAccount(owner)
	amount := core.DecimalFromUint64(400)
	if err := acct.Deposit(core.NewFungibleBucket(resource, rt, amount)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	withdrawn, err := acct.Withdraw(amount, resource, def, []core.Address{owner}, nil)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if withdrawn.Amount().Cmp(amount) != 0 {
		t.Fatalf("expected withdrawn amount %v, got %v", amount, withdrawn.Amount())
	}
	if !acct.Vaults[resource].Amount().IsZero() {
		t.Fatalf("expected vault drained, got %v", acct.Vaults[resource].Amount())
	}

	// other is not a signer of this withdrawal: unauthorised.
	if err := acct.Deposit(withdrawn); err != nil {
		t.Fatalf("re-deposit: %v", err)
	}
	if _, err := acct.Withdraw(amount, resource, def, []core.Address{other}, nil); err == nil {
		t.Fatalf("expected withdraw without the owner's signature to fail")
	}
}

func TestAccountWithdrawRestrictedTransferRequiresBadge(t *testing.T) {
	owner := core.NewPackageAddress([]byte("owner-key"), 2)
	resource := testResourceAddr(2)
	badge := testResourceAddr(3)
	rt := core.ResourceType{Kind: core.ResourceFungible, Granularity: 1}
	def := &core.ResourceDef{
		Addr:  resource,
		Type:  rt,
		Flags: core.ResourceFlags{RestrictedTransfer: true, TransferBadge: badge},
	}

	acct := NewAccount(owner)
	amount := core.DecimalFromUint64(10)
	if err := acct.Deposit(core.NewFungibleBucket(resource, rt, amount)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	if _, err := acct.Withdraw(amount, resource, def, []core.Address{owner}, nil); err == nil {
		t.Fatalf("expected withdraw without the transfer badge to fail")
	}

	badgeBucket := core.NewFungibleBucket(badge, rt, core.DecimalFromUint64(1))
	ref := &core.LockedBucket{Bucket: badgeBucket}
	if _, err := acct.Withdraw(amount, resource, def, []core.Address{owner}, ref); err != nil {
		t.Fatalf("Withdraw with badge presented: %v", err)
	}
}
