package core

import (
	"encoding/binary"
	"fmt"

	"github.com/wasmerio/wasmer-go/wasmer"
)

// hostModuleName.hostFunctionName is the single import blueprint bytecode
// may declare —
// the dispatch-table ABI generalises the teacher's ad hoc host_consume_gas
// / host_read / host_write / host_log imports (core/virtual_machine.go
// registerHost) into one call_engine entry point, per design note
// "Host-call dispatch".
const (
	hostModuleName   = "env"
	hostFunctionName = "call_engine"
	memoryExportName = "memory"
	allocExportName  = "scrypto_alloc"
)

// CompiledModule is a validated, instantiable bytecode module bound to a
// dispatcher (spec.md §4.D).
type CompiledModule struct {
	engine *wasmer.Engine
	store  *wasmer.Store
	module *wasmer.Module
	code   []byte
}

// ValidateModule runs every publish/load-time check from spec.md §4.D
// against raw WASM bytes, returning the first violation found.
func ValidateModule(code []byte) error {
	if err := scanDisallowedSections(code); err != nil {
		return err
	}

	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)
	module, err := wasmer.NewModule(store, code)
	if err != nil {
		return newErr(ErrInvalidModule, "%v", err)
	}

	memCount := 0
	for _, exp := range module.Exports() {
		if exp.Type().Kind() == wasmer.MEMORY {
			memCount++
		}
	}
	if memCount != 1 {
		return newErr(ErrNoValidMemoryExport, "module exports %d memories, want exactly 1", memCount)
	}

	for _, imp := range module.Imports() {
		if imp.Module() != hostModuleName || imp.Name() != hostFunctionName {
			return newErr(ErrHostFunctionNotFound, "disallowed import %s.%s", imp.Module(), imp.Name())
		}
	}

	return nil
}

// CompileModule validates code and prepares it for instantiation.
func CompileModule(code []byte) (*CompiledModule, error) {
	if err := ValidateModule(code); err != nil {
		return nil, err
	}
	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)
	module, err := wasmer.NewModule(store, code)
	if err != nil {
		return nil, newErr(ErrInvalidModule, "%v", err)
	}
	return &CompiledModule{engine: engine, store: store, module: module, code: code}, nil
}

// Dispatcher is the engine-side callback invoked for every call_engine
// host call: it receives the SBOR-encoded request (op code + args) and
// must return an SBOR-encoded Result<Value,Error>.
type Dispatcher func(request []byte) (response []byte, err error)

// InvokeExport runs the (blueprint, function) export with the given
// SBOR-encoded argument tuple, marshalling through scrypto_alloc and the
// packed ptr|len i64 return convention (spec.md §4.D). dispatch answers
// every call_engine host call the export makes while running; its
// SBOR-encoded response is written into a fresh scrypto_alloc region and
// handed back to the module as a packed ptr|len i64, the same convention
// used for the export's own return value.
func (c *CompiledModule) InvokeExport(exportName string, args []byte, dispatch Dispatcher) ([]byte, error) {
	imports := wasmer.NewImportObject()
	var mem *wasmer.Memory
	var alloc *wasmer.Function

	hostFn := wasmer.NewFunction(
		c.store,
		wasmer.NewFunctionType(
			wasmer.NewValueTypes(wasmer.I32, wasmer.I32),
			wasmer.NewValueTypes(wasmer.I64),
		),
		func(callArgs []wasmer.Value) ([]wasmer.Value, error) {
			ptr := callArgs[0].I32()
			ln := callArgs[1].I32()
			if mem == nil || alloc == nil {
				return nil, newErr(ErrMemoryAccess, "call_engine: memory not bound")
			}
			req, err := readMemory(mem, ptr, ln)
			if err != nil {
				return nil, err
			}
			resp, err := dispatch(req)
			if err != nil {
				return nil, err
			}
			respPtr, err := writeScryptoBuffer(mem, alloc, resp)
			if err != nil {
				return nil, err
			}
			packed := (int64(len(resp)) << 32) | int64(uint32(respPtr))
			return []wasmer.Value{wasmer.NewI64(packed)}, nil
		},
	)

	imports.Register(hostModuleName, map[string]wasmer.IntoExtern{
		hostFunctionName: hostFn,
	})

	inst, err := wasmer.NewInstance(c.module, imports)
	if err != nil {
		return nil, newErr(ErrInvokeFailure, "instantiate: %v", err)
	}

	mem, err = inst.Exports.GetMemory(memoryExportName)
	if err != nil {
		return nil, newErr(ErrNoValidMemoryExport, "missing memory export")
	}

	alloc, err = inst.Exports.GetFunction(allocExportName)
	if err != nil {
		return nil, newErr(ErrMemoryAlloc, "missing %s export", allocExportName)
	}

	argPtr, err := writeScryptoBuffer(mem, alloc, args)
	if err != nil {
		return nil, err
	}

	entry, err := inst.Exports.GetFunction(exportName)
	if err != nil {
		return nil, newErr(ErrComponentNotFound, "no such export %s", exportName)
	}

	ret, err := entry(argPtr, int32(len(args)))
	if err != nil {
		return nil, newErr(ErrInvokeFailure, "%v", err)
	}

	packed, ok := ret.(int64)
	if !ok {
		return nil, newErr(ErrInvalidReturnType, "export did not return i64")
	}
	if packed == 0 {
		return nil, newErr(ErrNoReturnData, "export returned null pointer")
	}

	retPtr := int32(uint64(packed) & 0xFFFFFFFF)
	retLen := int32(uint64(packed) >> 32)
	return readMemory(mem, retPtr, retLen)
}

// writeScryptoBuffer allocates len(data) bytes via the module's
// scrypto_alloc export and copies data into the returned region.
func writeScryptoBuffer(mem *wasmer.Memory, alloc *wasmer.Function, data []byte) (int32, error) {
	ret, err := alloc(int32(len(data)))
	if err != nil {
		return 0, newErr(ErrMemoryAlloc, "%v", err)
	}
	ptr, ok := ret.(int32)
	if !ok {
		return 0, newErr(ErrMemoryAlloc, "scrypto_alloc did not return i32")
	}
	if err := writeMemory(mem, ptr, data); err != nil {
		return 0, err
	}
	return ptr, nil
}

func readMemory(mem *wasmer.Memory, ptr, ln int32) ([]byte, error) {
	data := mem.Data()
	if ptr < 0 || ln < 0 || int(ptr)+int(ln) > len(data) {
		return nil, newErr(ErrMemoryAccess, "out of bounds read at %d+%d", ptr, ln)
	}
	out := make([]byte, ln)
	copy(out, data[ptr:int(ptr)+int(ln)])
	return out, nil
}

func writeMemory(mem *wasmer.Memory, ptr int32, value []byte) error {
	data := mem.Data()
	if ptr < 0 || int(ptr)+len(value) > len(data) {
		return newErr(ErrMemoryAccess, "out of bounds write at %d+%d", ptr, len(value))
	}
	copy(data[ptr:], value)
	return nil
}

// scanDisallowedSections walks the raw WASM binary's section headers to
// reject a start function, a function type with an f32/f64 parameter or
// result, or a float opcode in the code section; local declarations and
// the global section are not examined.
// wasmer-go's Module type exposes imports/exports but not these module-
// level facts, so this is a minimal hand-rolled section scanner (a
// standard-library-only component: no example-repo dependency parses raw
// WASM sections — see DESIGN.md).
func scanDisallowedSections(code []byte) error {
	const (
		magic   = 0x6d736100
		secType = 1
		secFunc = 3
		secStart = 8
		secCode = 10
	)
	if len(code) < 8 || binary.LittleEndian.Uint32(code[0:4]) != magic {
		return newErr(ErrInvalidModule, "bad wasm magic")
	}
	pos := 8
	var typeIsFloat []bool
	var funcTypeIdx []uint32
	for pos < len(code) {
		if pos+1 > len(code) {
			break
		}
		id := code[pos]
		pos++
		size, n, err := readULEB128(code[pos:])
		if err != nil {
			return newErr(ErrInvalidModule, "malformed section header")
		}
		pos += n
		if pos+int(size) > len(code) {
			return newErr(ErrInvalidModule, "section overruns module")
		}
		body := code[pos : pos+int(size)]
		switch id {
		case secStart:
			return newErr(ErrStartFunctionNotAllowed, "module declares a start function")
		case secType:
			typeIsFloat = parseTypeSectionFloats(body)
		case secFunc:
			funcTypeIdx = parseFuncSectionIndices(body)
		case secCode:
			if containsFloatOpcode(body) {
				return newErr(ErrFloatingPointNotAllowed, "module contains a floating-point instruction")
			}
		}
		pos += int(size)
	}
	for _, idx := range funcTypeIdx {
		if int(idx) < len(typeIsFloat) && typeIsFloat[idx] {
			return newErr(ErrFloatingPointNotAllowed, "function signature uses a floating-point type")
		}
	}
	return nil
}

func readULEB128(b []byte) (uint64, int, error) {
	var result uint64
	var shift uint
	for i := 0; i < len(b); i++ {
		byt := b[i]
		result |= uint64(byt&0x7f) << shift
		if byt&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("truncated uleb128")
}

// parseTypeSectionFloats reports, per declared function type, whether any
// parameter or result uses f32 (0x7d) or f64 (0x7c).
func parseTypeSectionFloats(body []byte) []bool {
	pos := 0
	count, n, err := readULEB128(body[pos:])
	if err != nil {
		return nil
	}
	pos += n
	out := make([]bool, 0, count)
	for i := uint64(0); i < count && pos < len(body); i++ {
		if body[pos] != 0x60 {
			return out
		}
		pos++
		isFloat := false
		for _, seg := range []int{0, 1} {
			_ = seg
			numParams, n, err := readULEB128(body[pos:])
			if err != nil {
				return out
			}
			pos += n
			for j := uint64(0); j < numParams && pos < len(body); j++ {
				if body[pos] == 0x7d || body[pos] == 0x7c {
					isFloat = true
				}
				pos++
			}
		}
		out = append(out, isFloat)
	}
	return out
}

func parseFuncSectionIndices(body []byte) []uint32 {
	pos := 0
	count, n, err := readULEB128(body[pos:])
	if err != nil {
		return nil
	}
	pos += n
	out := make([]uint32, 0, count)
	for i := uint64(0); i < count && pos < len(body); i++ {
		idx, n, err := readULEB128(body[pos:])
		if err != nil {
			break
		}
		pos += n
		out = append(out, uint32(idx))
	}
	return out
}

// containsFloatOpcode does a conservative byte scan of a code section body
// for the f32/f64 const, load, store and arithmetic opcode ranges
// (0x43-0x44 const, 0x2a-0x39 load/store, 0x5b-0x98 comparison/arithmetic).
// A false positive is acceptable here (rejecting a borderline module is
// safe); a false negative is not, so the ranges are drawn generously from
// the WASM MVP opcode table.
func containsFloatOpcode(body []byte) bool {
	for _, b := range body {
		switch {
		case b == 0x43 || b == 0x44: // f32.const, f64.const
			return true
		case b >= 0x2a && b <= 0x39: // f32/f64 load/store
			return true
		case b >= 0x5b && b <= 0x66: // f32 comparisons
			return true
		case b >= 0x61 && b <= 0x6a:
			return true
		case b >= 0x8b && b <= 0xa6: // f32/f64 arithmetic, conversions
			return true
		}
	}
	return false
}
