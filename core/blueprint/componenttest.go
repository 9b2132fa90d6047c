package blueprint

import "txengine/core"

// ComponentTest mirrors the reference Scrypto test component
// (original_source/radix-engine/tests/component/src/component.rs): a
// single component with one scalar field, exported as three methods that
// exercise the create_component/get_component_state/put_component_state
// host ops end to end through the real bytecode sandbox. Unlike account.go
// its methods take no dynamic argument, which keeps every function body
// branch-free (see wasmbuilder.go's package doc for why that matters).
const (
	componentTestBlueprint = "ComponentTest"
	initialFieldValue      = uint32(0)
	updatedFieldValue      = uint32(1)
)

// BuildComponentTestModule assembles the ComponentTest blueprint's WASM
// module. Its state is a single core.U32Value encoded with the engine's
// own SBOR codec, stored as the component's opaque state bytes.
func BuildComponentTestModule() []byte {
	b := newModuleBuilder()

	newReq := core.Encode(core.TupleValue(
		core.U32Value(uint32(core.OpCreateComponent)),
		core.TupleValue(core.StringValue(componentTestBlueprint), fieldStateValue(initialFieldValue)),
	))
	b.addExport(componentTestBlueprint+".new", callEngineWithLiteral(newReq))

	getReq := core.Encode(core.TupleValue(
		core.U32Value(uint32(core.OpGetComponentState)),
		core.Unit(),
	))
	b.addExport(componentTestBlueprint+".get_state", callEngineWithLiteral(getReq))

	putReq := core.Encode(core.TupleValue(
		core.U32Value(uint32(core.OpPutComponentState)),
		core.TupleValue(fieldStateValue(updatedFieldValue)),
	))
	b.addExport(componentTestBlueprint+".put_state", callEngineWithLiteral(putReq))

	return b.build()
}

// fieldStateValue encodes a component's scalar field as the opaque byte
// blob the engine's get/put_component_state ops pass around (the engine
// does not interpret component state; see core/engine_substates.go
// bytesValue/valueBytes).
func fieldStateValue(field uint32) core.Value {
	return core.StringValue(string(core.Encode(core.U32Value(field))))
}

// DecodeFieldState recovers the scalar field a get_state call returned.
func DecodeFieldState(stateBytes []byte) (uint32, error) {
	v, err := core.DecodeFull(stateBytes)
	if err != nil {
		return 0, err
	}
	return uint32(v.Int.Uint64()), nil
}
