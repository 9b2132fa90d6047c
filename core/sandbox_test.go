package core

import "testing"

// emptyWasmModule is the minimal valid WASM binary: magic number + version,
// no sections at all — a module with zero exports, zero imports.
var emptyWasmModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func TestValidateModuleRejectsMissingMemoryExport(t *testing.T) {
	err := ValidateModule(emptyWasmModule)
	if KindOf(err) != ErrNoValidMemoryExport {
		t.Fatalf("expected ErrNoValidMemoryExport for a memory-less module, got %v", err)
	}
}

func TestValidateModuleRejectsGarbageBytes(t *testing.T) {
	err := ValidateModule([]byte("this is not a wasm module"))
	if err == nil {
		t.Fatalf("expected garbage bytes to be rejected")
	}
}

func TestValidateModuleRejectsTruncatedMagic(t *testing.T) {
	err := ValidateModule([]byte{0x00, 0x61, 0x73})
	if err == nil {
		t.Fatalf("expected a truncated magic number to be rejected")
	}
}
