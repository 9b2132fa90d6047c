package core

import "math/big"

// ValueKind tags the arm of the Value variant a given Value holds
// (spec.md §4.A). It doubles as the one-byte SBOR type-id.
type ValueKind byte

const (
	KindUnit ValueKind = iota
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindString
	KindStruct // named fields
	KindTuple  // positional fields (also used for tuple/unit structs and enum field lists)
	KindEnum   // discriminant + tuple of fields
	KindOption
	KindResult
	KindArray // fixed-kind, fixed-length
	KindVec
	KindSet
	KindMap
	KindDecimal
	KindAddress
	KindBid
	KindRid
	KindVid
	KindMid
)

// NamedValue is one field of a KindStruct value.
type NamedValue struct {
	Name  string
	Value Value
}

// MapEntry is one key/value pair of a KindMap value.
type MapEntry struct {
	Key   Value
	Value Value
}

// Value is the tagged variant tree used for every piece of cross-boundary
// data: function arguments, return values, component state and lazy-map
// entries (spec.md §4.A). Exactly one field group is meaningful for a
// given Kind; the others are left zero.
type Value struct {
	Kind ValueKind

	Bool bool
	Int  *big.Int // magnitude+sign for all integer kinds (I8..U128)
	Str  string

	Fields []NamedValue // KindStruct
	Tuple  []Value      // KindTuple, KindEnum field list
	Disc   uint8        // KindEnum discriminant

	Inner *Value // KindOption (nil = None), KindResult-as-Ok is Inner set & ResultErr=false

	ResultErr   bool // KindResult: false=Ok carried in Inner, true=Err carried in Inner
	ElemKind    ValueKind
	Elements    []Value // KindArray, KindVec, KindSet
	MapKeyKind  ValueKind
	MapValKind  ValueKind
	Map         []MapEntry // KindMap

	Decimal Decimal
	Address Address
	Bid     Bid
	Rid     Rid
	Vid     Vid
	Mid     Mid
}

// Unit is the canonical unit value.
func Unit() Value { return Value{Kind: KindUnit} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue builds an integer value of the given kind and magnitude.
func IntValue(kind ValueKind, v *big.Int) Value { return Value{Kind: kind, Int: v} }

// U32Value is a convenience constructor used pervasively for ids/lengths.
func U32Value(v uint32) Value { return Value{Kind: KindU32, Int: new(big.Int).SetUint64(uint64(v))} }

// DecimalValue wraps a Decimal.
func DecimalValue(d Decimal) Value { return Value{Kind: KindDecimal, Decimal: d} }

// AddressValue wraps an Address.
func AddressValue(a Address) Value { return Value{Kind: KindAddress, Address: a} }

// BidValue wraps a Bid.
func BidValue(b Bid) Value { return Value{Kind: KindBid, Bid: b} }

// RidValue wraps a Rid.
func RidValue(r Rid) Value { return Value{Kind: KindRid, Rid: r} }

// TupleValue builds a positional-fields value.
func TupleValue(vals ...Value) Value { return Value{Kind: KindTuple, Tuple: vals} }

// OkValue builds a Result::Ok(v).
func OkValue(v Value) Value { return Value{Kind: KindResult, ResultErr: false, Inner: &v} }

// ErrValue builds a Result::Err(v).
func ErrValue(v Value) Value { return Value{Kind: KindResult, ResultErr: true, Inner: &v} }

// ErrorValue encodes a RuntimeError/ErrorKind as the payload of Result::Err,
// using a two-field tuple (code, detail) so it SBOR round-trips.
func ErrorValue(kind ErrorKind, detail string) Value {
	return ErrValue(TupleValue(U32Value(uint32(kind)), StringValue(detail)))
}

// IsOk reports whether a KindResult value is the Ok arm.
func (v Value) IsOk() bool { return v.Kind == KindResult && !v.ResultErr }

// walkIDs recursively visits every Bid/Rid leaf in the value tree, calling
// fn for each. Used by the call-frame protocol to discover which
// buckets/bucket-refs move across an invocation boundary (spec.md §4.E).
func (v Value) walkIDs(onBid func(Bid), onRid func(Rid)) {
	switch v.Kind {
	case KindBid:
		onBid(v.Bid)
	case KindRid:
		onRid(v.Rid)
	case KindStruct:
		for _, f := range v.Fields {
			f.Value.walkIDs(onBid, onRid)
		}
	case KindTuple, KindEnum:
		for _, e := range v.Tuple {
			e.walkIDs(onBid, onRid)
		}
	case KindOption, KindResult:
		if v.Inner != nil {
			v.Inner.walkIDs(onBid, onRid)
		}
	case KindArray, KindVec, KindSet:
		for _, e := range v.Elements {
			e.walkIDs(onBid, onRid)
		}
	case KindMap:
		for _, e := range v.Map {
			e.Key.walkIDs(onBid, onRid)
			e.Value.walkIDs(onBid, onRid)
		}
	}
}

// CollectIDs returns every distinct Bid and Rid referenced anywhere in v,
// in first-encountered order.
func (v Value) CollectIDs() (bids []Bid, rids []Rid) {
	seenB := map[Bid]bool{}
	seenR := map[Rid]bool{}
	v.walkIDs(func(b Bid) {
		if !seenB[b] {
			seenB[b] = true
			bids = append(bids, b)
		}
	}, func(r Rid) {
		if !seenR[r] {
			seenR[r] = true
			rids = append(rids, r)
		}
	})
	return
}
