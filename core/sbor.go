package core

import (
	"bytes"
	"encoding/binary"
	"math/big"
)

// SBOR (substrate binary object representation) is the tagged,
// length-prefixed, little-endian, canonical encoding used for every Value
// that crosses a call boundary (spec.md §4.A, §6). Encode/Decode are a
// pair of total functions over the Value variant (design note 9): there is
// exactly one way to encode a given Value, and Decode rejects any byte
// stream that isn't that canonical form (duplicate map/set entries,
// mismatched element kinds, trailing garbage).

var intWidths = map[ValueKind]int{
	KindI8: 1, KindU8: 1,
	KindI16: 2, KindU16: 2,
	KindI32: 4, KindU32: 4,
	KindI64: 8, KindU64: 8,
	KindI128: 16, KindU128: 16,
}

var signedKinds = map[ValueKind]bool{
	KindI8: true, KindI16: true, KindI32: true, KindI64: true, KindI128: true,
}

// Encode serialises v into its canonical SBOR byte form.
func Encode(v Value) []byte {
	var buf bytes.Buffer
	encodeInto(&buf, v)
	return buf.Bytes()
}

func putU32LE(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func encodeIntFixed(v *big.Int, width int) []byte {
	out := make([]byte, width)
	mag := new(big.Int).Set(v)
	neg := mag.Sign() < 0
	if neg {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
		mag.Add(mag, mod)
	}
	be := mag.Bytes()
	// be is big-endian, right-aligned; reverse into little-endian `out`.
	for i := 0; i < len(be) && i < width; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}

func decodeIntFixed(b []byte, width int, signed bool) *big.Int {
	be := make([]byte, width)
	for i := 0; i < width; i++ {
		be[width-1-i] = b[i]
	}
	v := new(big.Int).SetBytes(be)
	if signed && width > 0 && b[width-1]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
		v.Sub(v, mod)
	}
	return v
}

func encodeInto(buf *bytes.Buffer, v Value) {
	buf.WriteByte(byte(v.Kind))
	switch v.Kind {
	case KindUnit:
	case KindBool:
		if v.Bool {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case KindI8, KindI16, KindI32, KindI64, KindI128,
		KindU8, KindU16, KindU32, KindU64, KindU128:
		buf.Write(encodeIntFixed(v.Int, intWidths[v.Kind]))
	case KindString:
		putU32LE(buf, uint32(len(v.Str)))
		buf.WriteString(v.Str)
	case KindStruct:
		putU32LE(buf, uint32(len(v.Fields)))
		for _, f := range v.Fields {
			putU32LE(buf, uint32(len(f.Name)))
			buf.WriteString(f.Name)
			encodeInto(buf, f.Value)
		}
	case KindTuple:
		putU32LE(buf, uint32(len(v.Tuple)))
		for _, e := range v.Tuple {
			encodeInto(buf, e)
		}
	case KindEnum:
		buf.WriteByte(v.Disc)
		putU32LE(buf, uint32(len(v.Tuple)))
		for _, e := range v.Tuple {
			encodeInto(buf, e)
		}
	case KindOption:
		if v.Inner == nil {
			buf.WriteByte(0)
		} else {
			buf.WriteByte(1)
			encodeInto(buf, *v.Inner)
		}
	case KindResult:
		if v.ResultErr {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		encodeInto(buf, *v.Inner)
	case KindArray, KindVec, KindSet:
		buf.WriteByte(byte(v.ElemKind))
		putU32LE(buf, uint32(len(v.Elements)))
		for _, e := range v.Elements {
			encodeInto(buf, e)
		}
	case KindMap:
		buf.WriteByte(byte(v.MapKeyKind))
		buf.WriteByte(byte(v.MapValKind))
		putU32LE(buf, uint32(len(v.Map)))
		for _, e := range v.Map {
			encodeInto(buf, e.Key)
			encodeInto(buf, e.Value)
		}
	case KindDecimal:
		buf.Write(encodeIntFixed(v.Decimal.Raw, 16))
	case KindAddress:
		buf.Write(v.Address[:])
	case KindBid:
		putU32LE(buf, uint32(v.Bid))
	case KindRid:
		putU32LE(buf, uint32(v.Rid))
	case KindVid:
		putU32LE(buf, uint32(v.Vid))
	case KindMid:
		putU32LE(buf, uint32(v.Mid))
	}
}

// Decode parses exactly one canonical Value from b and returns any
// trailing bytes. It rejects non-canonical input (duplicate map/set keys,
// element-kind mismatches, truncated streams).
func Decode(b []byte) (Value, []byte, error) {
	if len(b) < 1 {
		return Value{}, nil, newErr(ErrInvalidData, "empty SBOR input")
	}
	kind := ValueKind(b[0])
	rest := b[1:]
	switch kind {
	case KindUnit:
		return Value{Kind: KindUnit}, rest, nil
	case KindBool:
		if len(rest) < 1 {
			return Value{}, nil, newErr(ErrInvalidData, "truncated bool")
		}
		if rest[0] > 1 {
			return Value{}, nil, newErr(ErrInvalidData, "non-canonical bool byte %d", rest[0])
		}
		return Value{Kind: KindBool, Bool: rest[0] != 0}, rest[1:], nil
	case KindI8, KindI16, KindI32, KindI64, KindI128,
		KindU8, KindU16, KindU32, KindU64, KindU128:
		w := intWidths[kind]
		if len(rest) < w {
			return Value{}, nil, newErr(ErrInvalidData, "truncated integer")
		}
		return Value{Kind: kind, Int: decodeIntFixed(rest[:w], w, signedKinds[kind])}, rest[w:], nil
	case KindString:
		n, r, err := readU32LE(rest)
		if err != nil {
			return Value{}, nil, err
		}
		if uint32(len(r)) < n {
			return Value{}, nil, newErr(ErrInvalidData, "truncated string")
		}
		return Value{Kind: KindString, Str: string(r[:n])}, r[n:], nil
	case KindStruct:
		n, r, err := readU32LE(rest)
		if err != nil {
			return Value{}, nil, err
		}
		fields := make([]NamedValue, 0, n)
		for i := uint32(0); i < n; i++ {
			nl, r2, err := readU32LE(r)
			if err != nil {
				return Value{}, nil, err
			}
			if uint32(len(r2)) < nl {
				return Value{}, nil, newErr(ErrInvalidData, "truncated field name")
			}
			name := string(r2[:nl])
			val, r3, err := Decode(r2[nl:])
			if err != nil {
				return Value{}, nil, err
			}
			fields = append(fields, NamedValue{Name: name, Value: val})
			r = r3
		}
		return Value{Kind: KindStruct, Fields: fields}, r, nil
	case KindTuple:
		elems, r, err := decodeTuple(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return Value{Kind: KindTuple, Tuple: elems}, r, nil
	case KindEnum:
		if len(rest) < 1 {
			return Value{}, nil, newErr(ErrInvalidData, "truncated enum discriminant")
		}
		disc := rest[0]
		elems, r, err := decodeTuple(rest[1:])
		if err != nil {
			return Value{}, nil, err
		}
		return Value{Kind: KindEnum, Disc: disc, Tuple: elems}, r, nil
	case KindOption:
		if len(rest) < 1 {
			return Value{}, nil, newErr(ErrInvalidData, "truncated option tag")
		}
		if rest[0] > 1 {
			return Value{}, nil, newErr(ErrInvalidData, "non-canonical option tag %d", rest[0])
		}
		if rest[0] == 0 {
			return Value{Kind: KindOption, Inner: nil}, rest[1:], nil
		}
		inner, r, err := Decode(rest[1:])
		if err != nil {
			return Value{}, nil, err
		}
		return Value{Kind: KindOption, Inner: &inner}, r, nil
	case KindResult:
		if len(rest) < 1 {
			return Value{}, nil, newErr(ErrInvalidData, "truncated result tag")
		}
		if rest[0] > 1 {
			return Value{}, nil, newErr(ErrInvalidData, "non-canonical result tag %d", rest[0])
		}
		isErr := rest[0] != 0
		inner, r, err := Decode(rest[1:])
		if err != nil {
			return Value{}, nil, err
		}
		return Value{Kind: KindResult, ResultErr: isErr, Inner: &inner}, r, nil
	case KindArray, KindVec, KindSet:
		if len(rest) < 1 {
			return Value{}, nil, newErr(ErrInvalidData, "truncated collection elem-kind")
		}
		elemKind := ValueKind(rest[0])
		n, r, err := readU32LE(rest[1:])
		if err != nil {
			return Value{}, nil, err
		}
		elems := make([]Value, 0, n)
		seen := map[string]bool{}
		for i := uint32(0); i < n; i++ {
			val, r2, err := Decode(r)
			if err != nil {
				return Value{}, nil, err
			}
			if val.Kind != elemKind {
				return Value{}, nil, newErr(ErrInvalidData, "collection element kind mismatch")
			}
			if kind == KindSet {
				enc := string(Encode(val))
				if seen[enc] {
					return Value{}, nil, newErr(ErrInvalidData, "duplicate set entry")
				}
				seen[enc] = true
			}
			elems = append(elems, val)
			r = r2
		}
		return Value{Kind: kind, ElemKind: elemKind, Elements: elems}, r, nil
	case KindMap:
		if len(rest) < 2 {
			return Value{}, nil, newErr(ErrInvalidData, "truncated map kinds")
		}
		keyKind, valKind := ValueKind(rest[0]), ValueKind(rest[1])
		n, r, err := readU32LE(rest[2:])
		if err != nil {
			return Value{}, nil, err
		}
		entries := make([]MapEntry, 0, n)
		seen := map[string]bool{}
		for i := uint32(0); i < n; i++ {
			key, r2, err := Decode(r)
			if err != nil {
				return Value{}, nil, err
			}
			if key.Kind != keyKind {
				return Value{}, nil, newErr(ErrInvalidData, "map key kind mismatch")
			}
			val, r3, err := Decode(r2)
			if err != nil {
				return Value{}, nil, err
			}
			if val.Kind != valKind {
				return Value{}, nil, newErr(ErrInvalidData, "map value kind mismatch")
			}
			enc := string(Encode(key))
			if seen[enc] {
				return Value{}, nil, newErr(ErrInvalidData, "duplicate map key")
			}
			seen[enc] = true
			entries = append(entries, MapEntry{Key: key, Value: val})
			r = r3
		}
		return Value{Kind: KindMap, MapKeyKind: keyKind, MapValKind: valKind, Map: entries}, r, nil
	case KindDecimal:
		if len(rest) < 16 {
			return Value{}, nil, newErr(ErrInvalidData, "truncated decimal")
		}
		return Value{Kind: KindDecimal, Decimal: Decimal{Raw: decodeIntFixed(rest[:16], 16, true)}}, rest[16:], nil
	case KindAddress:
		if len(rest) < 27 {
			return Value{}, nil, newErr(ErrInvalidData, "truncated address")
		}
		var a Address
		copy(a[:], rest[:27])
		return Value{Kind: KindAddress, Address: a}, rest[27:], nil
	case KindBid:
		n, r, err := readU32LE(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return Value{Kind: KindBid, Bid: Bid(n)}, r, nil
	case KindRid:
		n, r, err := readU32LE(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return Value{Kind: KindRid, Rid: Rid(n)}, r, nil
	case KindVid:
		n, r, err := readU32LE(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return Value{Kind: KindVid, Vid: Vid(n)}, r, nil
	case KindMid:
		n, r, err := readU32LE(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return Value{Kind: KindMid, Mid: Mid(n)}, r, nil
	default:
		return Value{}, nil, newErr(ErrInvalidData, "unknown SBOR type id %d", kind)
	}
}

func decodeTuple(b []byte) ([]Value, []byte, error) {
	n, r, err := readU32LE(b)
	if err != nil {
		return nil, nil, err
	}
	elems := make([]Value, 0, n)
	for i := uint32(0); i < n; i++ {
		val, r2, err := Decode(r)
		if err != nil {
			return nil, nil, err
		}
		elems = append(elems, val)
		r = r2
	}
	return elems, r, nil
}

func readU32LE(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, nil, newErr(ErrInvalidData, "truncated length prefix")
	}
	return binary.LittleEndian.Uint32(b[:4]), b[4:], nil
}

// DecodeFull decodes exactly one Value and requires no trailing bytes;
// used at the host-call boundary where every argument/return blob must be
// a single self-contained value.
func DecodeFull(b []byte) (Value, error) {
	v, rest, err := Decode(b)
	if err != nil {
		return Value{}, err
	}
	if len(rest) != 0 {
		return Value{}, newErr(ErrInvalidData, "%d trailing bytes after SBOR value", len(rest))
	}
	return v, nil
}
