// Package blueprint provides sample bytecode blueprints used to exercise
// the engine end to end: componenttest.go assembles a genuine, minimal
// WASM module by hand (there is no compiler in this toolchain to target
// WASM from Go), and account.go is the reference implementation of the
// account blueprint's authorisation semantics, run directly against the
// engine's Go API rather than through the sandbox (see DESIGN.md for why
// the account blueprint's signer-membership check is not hand-assembled).
package blueprint

// moduleBuilder assembles a minimal valid WASM binary module by hand:
// one imported host function (env.call_engine), one exported linear
// memory, a bump-pointer scrypto_alloc export, and any number of
// additional exported functions whose bodies are supplied as raw
// instruction bytes (see funcBuilder). This mirrors, at one level below
// wasmer-go, the same module shape core/sandbox.go validates and runs.
type moduleBuilder struct {
	exportFuncs []exportFunc
}

type exportFunc struct {
	name string
	body []byte // raw instruction bytes, params (i32 argPtr, i32 argLen) -> i64
}

func newModuleBuilder() *moduleBuilder { return &moduleBuilder{} }

// addExport registers a module-defined function (beyond scrypto_alloc)
// exported under name, with the given instruction body. Every such
// function has signature (i32, i32) -> i64, the export calling
// convention core/sandbox.go's InvokeExport uses.
func (m *moduleBuilder) addExport(name string, body []byte) {
	m.exportFuncs = append(m.exportFuncs, exportFunc{name: name, body: body})
}

// Fixed layout: type 0 = (i32)->i32 [alloc], type 1 = (i32,i32)->i64
// [call_engine import and every exported function]. Function index 0 is
// the imported call_engine; index 1 is scrypto_alloc; indices 2.. are the
// caller-supplied exports in registration order.
const (
	allocFuncIdx       = 1
	firstExportFuncIdx = 2
	bumpGlobalIdx      = 0
	bumpGlobalInit     = 1024 // leave the first KiB of linear memory unused
)

func (m *moduleBuilder) build() []byte {
	var out []byte
	out = append(out, 0x00, 0x61, 0x73, 0x6d) // magic "\0asm"
	out = append(out, 0x01, 0x00, 0x00, 0x00) // version 1

	out = append(out, section(1, m.typeSection())...)
	out = append(out, section(2, m.importSection())...)
	out = append(out, section(3, m.functionSection())...)
	out = append(out, section(5, m.memorySection())...)
	out = append(out, section(6, m.globalSection())...)
	out = append(out, section(7, m.exportSection())...)
	out = append(out, section(10, m.codeSection())...)
	return out
}

func section(id byte, body []byte) []byte {
	out := []byte{id}
	out = append(out, uleb128(uint64(len(body)))...)
	return append(out, body...)
}

// typeSection declares the two function signatures every function in
// this module uses.
func (m *moduleBuilder) typeSection() []byte {
	var b []byte
	b = append(b, uleb128(2)...)
	// type 0: (i32) -> i32  (scrypto_alloc)
	b = append(b, funcType([]byte{0x7f}, []byte{0x7f})...)
	// type 1: (i32,i32) -> i64  (call_engine and every export)
	b = append(b, funcType([]byte{0x7f, 0x7f}, []byte{0x7e})...)
	return b
}

func funcType(params, results []byte) []byte {
	var b []byte
	b = append(b, 0x60)
	b = append(b, uleb128(uint64(len(params)))...)
	b = append(b, params...)
	b = append(b, uleb128(uint64(len(results)))...)
	b = append(b, results...)
	return b
}

// importSection declares the single permitted host import (spec.md §6
// "Bytecode module contract").
func (m *moduleBuilder) importSection() []byte {
	var b []byte
	b = append(b, uleb128(1)...)
	b = append(b, name("env")...)
	b = append(b, name("call_engine")...)
	b = append(b, 0x00)             // import kind: func
	b = append(b, uleb128(1)...)    // type index 1: (i32,i32)->i64
	return b
}

func name(s string) []byte {
	b := uleb128(uint64(len(s)))
	return append(b, []byte(s)...)
}

// functionSection lists the type index of every module-defined function
// (scrypto_alloc plus each registered export), in function-index order
// starting after the imported call_engine.
func (m *moduleBuilder) functionSection() []byte {
	var b []byte
	count := 1 + len(m.exportFuncs)
	b = append(b, uleb128(uint64(count))...)
	b = append(b, uleb128(0)...) // scrypto_alloc: type 0, (i32)->i32
	for range m.exportFuncs {
		b = append(b, uleb128(1)...) // type 1: (i32,i32)->i64
	}
	return b
}

func (m *moduleBuilder) memorySection() []byte {
	var b []byte
	b = append(b, uleb128(1)...)
	b = append(b, 0x00)          // limits flag: min only
	b = append(b, uleb128(4)...) // 4 pages = 256 KiB
	return b
}

// globalSection declares the single mutable i32 bump pointer backing
// scrypto_alloc.
func (m *moduleBuilder) globalSection() []byte {
	var b []byte
	b = append(b, uleb128(1)...)
	b = append(b, 0x7f, 0x01) // i32, mutable
	b = append(b, 0x41)       // i32.const
	b = append(b, sleb128(bumpGlobalInit)...)
	b = append(b, 0x0b) // end
	return b
}

func (m *moduleBuilder) exportSection() []byte {
	var b []byte
	count := 2 + len(m.exportFuncs) // memory + scrypto_alloc + exports
	b = append(b, uleb128(uint64(count))...)
	b = append(b, name("memory")...)
	b = append(b, 0x02) // mem
	b = append(b, uleb128(0)...)
	b = append(b, name("scrypto_alloc")...)
	b = append(b, 0x00) // func
	b = append(b, uleb128(allocFuncIdx)...)
	for i, f := range m.exportFuncs {
		b = append(b, name(f.name)...)
		b = append(b, 0x00)
		b = append(b, uleb128(uint64(firstExportFuncIdx+i))...)
	}
	return b
}

func (m *moduleBuilder) codeSection() []byte {
	var b []byte
	count := 1 + len(m.exportFuncs)
	b = append(b, uleb128(uint64(count))...)
	b = append(b, funcBody(allocBody())...)
	for _, f := range m.exportFuncs {
		b = append(b, funcBody(f.body)...)
	}
	return b
}

// funcBody wraps instrs with a declaration of one extra i32 local, a size
// prefix and a trailing end opcode.
func funcBody(instrs []byte) []byte {
	var body []byte
	body = append(body, uleb128(1)...) // one local-decl group
	body = append(body, uleb128(1)...) // one local
	body = append(body, 0x7f)          // i32
	body = append(body, instrs...)
	body = append(body, 0x0b) // end

	var out []byte
	out = append(out, uleb128(uint64(len(body)))...)
	return append(out, body...)
}

// allocBody implements scrypto_alloc(len) -> ptr as a bump allocator over
// the module's single mutable global: it returns the pointer's old value
// and advances the global by len. Local 0 is the len parameter; local 1
// (declared by funcBody) stashes the return pointer.
func allocBody() []byte {
	var b []byte
	b = append(b, 0x23, byte(bumpGlobalIdx)) // global.get bump
	b = append(b, 0x21, 0x01)                // local.set 1 (retPtr)
	b = append(b, 0x23, byte(bumpGlobalIdx)) // global.get bump
	b = append(b, 0x20, 0x00)                // local.get 0 (len)
	b = append(b, 0x6a)                      // i32.add
	b = append(b, 0x24, byte(bumpGlobalIdx)) // global.set bump
	b = append(b, 0x20, 0x01)                // local.get 1 (retPtr)
	return b
}

// --- instruction-emission helpers used by componenttest.go ---

func i32Const(v int32) []byte { return append([]byte{0x41}, sleb128(int64(v))...) }
func localGet(idx uint32) []byte { return append([]byte{0x20}, uleb128(uint64(idx))...) }
func localSet(idx uint32) []byte { return append([]byte{0x21}, uleb128(uint64(idx))...) }
func i32Store8(offset uint32) []byte {
	b := []byte{0x3a}
	b = append(b, uleb128(0)...) // align
	b = append(b, uleb128(uint64(offset))...)
	return b
}
func call(idx uint32) []byte { return append([]byte{0x10}, uleb128(uint64(idx))...) }

// writeConstBytes emits, for each byte of data, the triplet that stores a
// literal constant at bufPtrLocal+offset — no loop is needed because both
// data and its length are fixed at build time.
func writeConstBytes(bufPtrLocal uint32, data []byte) []byte {
	var b []byte
	for i, c := range data {
		b = append(b, localGet(bufPtrLocal)...)
		b = append(b, i32Const(int32(c))...)
		b = append(b, i32Store8(uint32(i))...)
	}
	return b
}

// callEngineWithLiteral builds a function body that allocates a buffer
// exactly large enough for the literal SBOR request reqBytes, writes it,
// calls call_engine, and returns its packed i64 response unmodified. This
// is the shape every componenttest export uses: the request never
// depends on the caller-supplied argPtr/argLen (see package doc). The
// function's two params (argPtr, argLen) occupy locals 0 and 1, so the
// scratch buffer pointer funcBody declares lives at local 2.
const exportBufPtrLocal = 2

func callEngineWithLiteral(reqBytes []byte) []byte {
	var b []byte
	// allocate request buffer
	b = append(b, i32Const(int32(len(reqBytes)))...)
	b = append(b, call(allocFuncIdx)...)
	b = append(b, localSet(exportBufPtrLocal)...)
	b = append(b, writeConstBytes(exportBufPtrLocal, reqBytes)...)
	// call_engine(bufPtr, reqLen) -> i64 packed response, left on the
	// stack as the function's own return value.
	b = append(b, localGet(exportBufPtrLocal)...)
	b = append(b, i32Const(int32(len(reqBytes)))...)
	b = append(b, call(0)...) // function index 0: imported call_engine
	return b
}

func uleb128(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb128(v int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}
