package driver

import (
	"strings"
	"testing"

	"txengine/core"
	"txengine/core/blueprint"
)

func TestExecuteCallFunctionIsDeterministic(t *testing.T) {
	store := core.NewMemorySubstateStore()

	// publish the reference component-test package once, ahead of any
	// transaction (spec.md §4.H treats publish_package as a precondition,
	// not a manifest instruction).
	admin := core.NewEngine(store, nil, core.Hash{})
	pkgAddr, err := admin.PublishPackage(blueprint.BuildComponentTestModule())
	if err != nil {
		t.Fatalf("PublishPackage: %v", err)
	}
	if err := admin.Track().Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	owner := core.NewPackageAddress([]byte("owner"), 1)
	src := `CALL_FUNCTION Address("` + pkgAddr.String() + `") "ComponentTest" "new";`

	r1 := Execute(src, []core.Address{owner}, store)
	if r1.Status != StatusSuccess {
		t.Fatalf("expected success, got %s: %s", r1.Status, r1.ErrorDetail)
	}

	store2 := core.NewMemorySubstateStore()
	admin2 := core.NewEngine(store2, nil, core.Hash{})
	if _, err := admin2.PublishPackage(blueprint.BuildComponentTestModule()); err != nil {
		t.Fatalf("PublishPackage (2): %v", err)
	}
	if err := admin2.Track().Commit(); err != nil {
		t.Fatalf("Commit (2): %v", err)
	}
	r2 := Execute(src, []core.Address{owner}, store2)
	if r2.Status != StatusSuccess {
		t.Fatalf("expected success, got %s: %s", r2.Status, r2.ErrorDetail)
	}

	if r1.TxHash != r2.TxHash {
		t.Fatalf("identical manifest+signers produced different tx hashes")
	}
	if len(r1.NewAddresses) != 1 || len(r2.NewAddresses) != 1 {
		t.Fatalf("expected exactly one new entity per run, got %d and %d", len(r1.NewAddresses), len(r2.NewAddresses))
	}
}

func TestExecuteUnknownInstructionFails(t *testing.T) {
	store := core.NewMemorySubstateStore()
	r := Execute(`FROB_THE_WIDGET;`, nil, store)
	if r.Status != StatusFailure {
		t.Fatalf("expected failure, got %s", r.Status)
	}
	if !strings.Contains(r.ErrorDetail, "unknown instruction") {
		t.Fatalf("expected a populated error detail, got %q", r.ErrorDetail)
	}
}

func TestExecuteTakeFromEmptyWorktopFails(t *testing.T) {
	store := core.NewMemorySubstateStore()
	resource := core.NewResourceDefAddress(core.Hash{7})

	src := `DECLARE_TEMP_BUCKET "held";
TAKE_FROM_CONTEXT Decimal("1") Address("` + resource.String() + `") Bucket("held");`

	r := Execute(src, nil, store)
	if r.Status != StatusFailure {
		t.Fatalf("expected failure taking from an empty worktop, got %s", r.Status)
	}
	if r.ErrorKind != core.ErrBucketNotFound.String() {
		t.Fatalf("expected BucketNotFound, got %s: %s", r.ErrorKind, r.ErrorDetail)
	}
}
