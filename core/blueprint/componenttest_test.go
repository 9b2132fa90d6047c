package blueprint

import (
	"testing"

	"txengine/core"
)

func newTestEngine(t *testing.T) *core.Engine {
	t.Helper()
	store := core.NewMemorySubstateStore()
	e := core.NewEngine(store, nil, core.Hash{})
	e.StartTopFrame()
	return e
}

func TestComponentTestModuleValidates(t *testing.T) {
	if err := core.ValidateModule(BuildComponentTestModule()); err != nil {
		t.Fatalf("ValidateModule: %v", err)
	}
}

func TestComponentTestLifecycle(t *testing.T) {
	e := newTestEngine(t)

	pkgAddr, err := e.PublishPackage(BuildComponentTestModule())
	if err != nil {
		t.Fatalf("PublishPackage: %v", err)
	}

	result, err := e.CallFunction(pkgAddr, componentTestBlueprint, "new", core.Unit())
	if err != nil {
		t.Fatalf("CallFunction new: %v", err)
	}
	if !result.IsOk() {
		t.Fatalf("expected Ok, got %+v", result)
	}
	compAddr := result.Inner.Address

	got, err := e.CallMethod(compAddr, "get_state", core.Unit())
	if err != nil {
		t.Fatalf("CallMethod get_state: %v", err)
	}
	if !got.IsOk() {
		t.Fatalf("expected Ok, got %+v", got)
	}
	field, err := DecodeFieldState([]byte(got.Inner.Str))
	if err != nil {
		t.Fatalf("DecodeFieldState: %v", err)
	}
	if field != initialFieldValue {
		t.Fatalf("expected initial field %d, got %d", initialFieldValue, field)
	}

	if _, err := e.CallMethod(compAddr, "put_state", core.Unit()); err != nil {
		t.Fatalf("CallMethod put_state: %v", err)
	}

	got, err = e.CallMethod(compAddr, "get_state", core.Unit())
	if err != nil {
		t.Fatalf("CallMethod get_state (2): %v", err)
	}
	field, err = DecodeFieldState([]byte(got.Inner.Str))
	if err != nil {
		t.Fatalf("DecodeFieldState (2): %v", err)
	}
	if field != updatedFieldValue {
		t.Fatalf("expected updated field %d, got %d", updatedFieldValue, field)
	}

	if err := e.FinishTopFrame(); err != nil {
		t.Fatalf("FinishTopFrame: %v", err)
	}
}
