package core

import (
	"math/big"
	"testing"
)

func TestSborRoundTripScalarKinds(t *testing.T) {
	addr := NewPackageAddress([]byte("pub"), 1)
	cases := []Value{
		Unit(),
		BoolValue(true),
		BoolValue(false),
		StringValue("hello, sbor"),
		U32Value(4_294_000_000),
		IntValue(KindI64, big.NewInt(-12345)),
		DecimalValue(mustDecimal(t, "12.5")),
		AddressValue(addr),
		BidValue(Bid(7)),
		RidValue(Rid(3)),
	}
	for _, v := range cases {
		encoded := Encode(v)
		got, err := DecodeFull(encoded)
		if err != nil {
			t.Fatalf("DecodeFull(%v): %v", v, err)
		}
		if got.Kind != v.Kind {
			t.Fatalf("kind mismatch: want %v got %v", v.Kind, got.Kind)
		}
	}
}

func TestSborRoundTripCompositeKinds(t *testing.T) {
	v := TupleValue(
		StringValue("a"),
		U32Value(9),
		OkValue(StringValue("ok")),
		Value{Kind: KindVec, ElemKind: KindU32, Elements: []Value{U32Value(1), U32Value(2), U32Value(3)}},
	)
	encoded := Encode(v)
	got, err := DecodeFull(encoded)
	if err != nil {
		t.Fatalf("DecodeFull: %v", err)
	}
	if got.Kind != KindTuple || len(got.Tuple) != 4 {
		t.Fatalf("expected a 4-field tuple back, got %+v", got)
	}
	if got.Tuple[0].Str != "a" {
		t.Fatalf("expected first field %q, got %q", "a", got.Tuple[0].Str)
	}
	if !got.Tuple[2].IsOk() {
		t.Fatalf("expected third field to round-trip as Result::Ok")
	}
	if len(got.Tuple[3].Elements) != 3 {
		t.Fatalf("expected a 3-element vec back, got %d elements", len(got.Tuple[3].Elements))
	}
}

func TestSborErrorValueRoundTrips(t *testing.T) {
	v := ErrorValue(ErrInsufficientBalance, "have 1 need 2")
	encoded := Encode(v)
	got, err := DecodeFull(encoded)
	if err != nil {
		t.Fatalf("DecodeFull: %v", err)
	}
	if got.IsOk() {
		t.Fatalf("expected Result::Err, decoded as Ok")
	}
	if got.Inner.Tuple[1].Str != "have 1 need 2" {
		t.Fatalf("error detail did not round-trip: %+v", got.Inner)
	}
}

func mustDecimal(t *testing.T, s string) Decimal {
	t.Helper()
	d, err := ParseDecimal(s)
	if err != nil {
		t.Fatalf("ParseDecimal(%q): %v", s, err)
	}
	return d
}
