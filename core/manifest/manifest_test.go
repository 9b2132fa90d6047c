package manifest

import "testing"

func TestParseSimpleTransaction(t *testing.T) {
	src := `
# deposit everything the transaction minted into account A
DEPOSIT_ALL_BUCKETS Address("cmp1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqs6cmjj");
`
	instrs, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(instrs) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(instrs))
	}
	if instrs[0].Kind != InstrDepositAllBuckets {
		t.Fatalf("expected InstrDepositAllBuckets, got %d", instrs[0].Kind)
	}
}

func TestParseTakeAndCallMethod(t *testing.T) {
	src := `
DECLARE_TEMP_BUCKET "payment";
TAKE_FROM_CONTEXT Decimal("400") Address("rsrc1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqsm304rx") Bucket("payment");
CALL_METHOD Address("cmp1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqs6cmjj") "deposit" Bucket("payment");
`
	instrs, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(instrs) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(instrs))
	}
	if instrs[0].Kind != InstrDeclareTempBucket || instrs[0].Name != "payment" {
		t.Fatalf("unexpected first instruction: %+v", instrs[0])
	}
	if instrs[1].Kind != InstrTakeFromContext || instrs[1].Name != "payment" {
		t.Fatalf("unexpected second instruction: %+v", instrs[1])
	}
	if instrs[2].Kind != InstrCallMethod || instrs[2].Method != "deposit" {
		t.Fatalf("unexpected third instruction: %+v", instrs[2])
	}
	if len(instrs[2].Args) != 1 || instrs[2].Args[0].Kind != VBucketName {
		t.Fatalf("expected a single Bucket(name) argument, got %+v", instrs[2].Args)
	}
}

func TestParseRejectsUnknownInstruction(t *testing.T) {
	if _, err := Parse(`FROB_THE_WIDGET;`); err == nil {
		t.Fatalf("expected an error for an unknown instruction")
	}
}

func TestParseStructAndEnumArgs(t *testing.T) {
	src := `CALL_FUNCTION Address("pkg1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqsp3p9u5") "Widget" "new" Struct(Decimal("1"), true) Enum(2)();`
	instrs, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(instrs) != 1 || instrs[0].Kind != InstrCallFunction {
		t.Fatalf("unexpected instructions: %+v", instrs)
	}
	if len(instrs[0].Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(instrs[0].Args))
	}
	if instrs[0].Args[0].Kind != VStruct || len(instrs[0].Args[0].Fields) != 2 {
		t.Fatalf("unexpected struct arg: %+v", instrs[0].Args[0])
	}
	if instrs[0].Args[1].Kind != VEnum || instrs[0].Args[1].Disc != 2 {
		t.Fatalf("unexpected enum arg: %+v", instrs[0].Args[1])
	}
}

func TestParseUndeclaredBucketUseFailsAtEval(t *testing.T) {
	src := `TAKE_FROM_CONTEXT Decimal("1") Address("rsrc1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqsm304rx") Bucket("nope");`
	instrs, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ev := NewEvaluator(nil)
	if err := ev.exec(instrs[0]); err == nil {
		t.Fatalf("expected an error for an undeclared bucket name")
	}
}
