package manifest

import (
	"fmt"
	"sort"

	"txengine/core"
)

// Evaluator drives a core.Engine through a parsed manifest (spec.md
// §4.G "Evaluation"). It owns the name table mapping DECLARE_TEMP_BUCKET
// [_REF] names to the Bid/Rid TAKE_FROM_CONTEXT/BORROW_FROM_CONTEXT bind
// them to; the worktop itself is just the engine's top call frame, which
// the evaluator manipulates directly via WorktopTake/WorktopBorrow.
type Evaluator struct {
	engine *core.Engine

	declaredBuckets map[string]bool
	declaredRefs    map[string]bool
	bucketNames     map[string]core.Bid
	refNames        map[string]core.Rid
}

// NewEvaluator builds an evaluator over an engine that has already had
// StartTopFrame called (the driver owns frame/track lifecycle; see
// spec.md §4.H).
func NewEvaluator(engine *core.Engine) *Evaluator {
	return &Evaluator{
		engine:          engine,
		declaredBuckets: make(map[string]bool),
		declaredRefs:    make(map[string]bool),
		bucketNames:     make(map[string]core.Bid),
		refNames:        make(map[string]core.Rid),
	}
}

// Evaluate parses src and runs it against engine.
func Evaluate(engine *core.Engine, src string) error {
	instrs, err := Parse(src)
	if err != nil {
		return err
	}
	return NewEvaluator(engine).Run(instrs)
}

// Run executes instrs in order (spec.md §5 "Ordering": manifest
// instructions execute in manifest order).
func (ev *Evaluator) Run(instrs []Instruction) error {
	for _, instr := range instrs {
		if err := ev.exec(instr); err != nil {
			return fmt.Errorf("manifest:%d: %w", instr.Line, err)
		}
	}
	return nil
}

func (ev *Evaluator) exec(instr Instruction) error {
	switch instr.Kind {
	case InstrDeclareTempBucket:
		if ev.declaredBuckets[instr.Name] {
			return fmt.Errorf("bucket %q already declared", instr.Name)
		}
		ev.declaredBuckets[instr.Name] = true
		return nil

	case InstrDeclareTempBucketRef:
		if ev.declaredRefs[instr.Name] {
			return fmt.Errorf("bucket-ref %q already declared", instr.Name)
		}
		ev.declaredRefs[instr.Name] = true
		return nil

	case InstrTakeFromContext:
		if !ev.declaredBuckets[instr.Name] {
			return fmt.Errorf("bucket %q was not declared with DECLARE_TEMP_BUCKET", instr.Name)
		}
		amount, err := ev.resolveDecimal(*instr.Amount)
		if err != nil {
			return err
		}
		addr, err := ev.resolveAddress(*instr.ResourceAddr)
		if err != nil {
			return err
		}
		bid, err := ev.engine.WorktopTake(addr, amount)
		if err != nil {
			return err
		}
		ev.bucketNames[instr.Name] = bid
		return nil

	case InstrBorrowFromContext:
		if !ev.declaredRefs[instr.Name] {
			return fmt.Errorf("bucket-ref %q was not declared with DECLARE_TEMP_BUCKET_REF", instr.Name)
		}
		amount, err := ev.resolveDecimal(*instr.Amount)
		if err != nil {
			return err
		}
		addr, err := ev.resolveAddress(*instr.ResourceAddr)
		if err != nil {
			return err
		}
		rid, err := ev.engine.WorktopBorrow(addr, amount)
		if err != nil {
			return err
		}
		ev.refNames[instr.Name] = rid
		return nil

	case InstrCallFunction:
		addr, err := ev.resolveAddress(*instr.TargetAddr)
		if err != nil {
			return err
		}
		args, err := ev.resolveArgs(instr.Args)
		if err != nil {
			return err
		}
		_, err = ev.engine.CallFunction(addr, instr.Blueprint, instr.Method, args)
		return err

	case InstrCallMethod:
		addr, err := ev.resolveAddress(*instr.TargetAddr)
		if err != nil {
			return err
		}
		args, err := ev.resolveArgs(instr.Args)
		if err != nil {
			return err
		}
		_, err = ev.engine.CallMethod(addr, instr.Method, args)
		return err

	case InstrDropAllBucketRefs:
		ev.engine.CurrentFrame().DropAllRefs()
		ev.declaredRefs = make(map[string]bool)
		ev.refNames = make(map[string]core.Rid)
		return nil

	case InstrDepositAllBuckets:
		addr, err := ev.resolveAddress(*instr.TargetAddr)
		if err != nil {
			return err
		}
		return ev.depositAllBuckets(addr)

	default:
		return fmt.Errorf("unhandled instruction kind %d", instr.Kind)
	}
}

// depositAllBuckets sends every bucket remaining on the worktop to the
// named account's deposit method, one bucket per call, in ascending Bid
// order for determinism (spec.md §4.G, §9 "Determinism").
func (ev *Evaluator) depositAllBuckets(account core.Address) error {
	frame := ev.engine.CurrentFrame()
	var bids []core.Bid
	for bid := range frame.Buckets {
		bids = append(bids, bid)
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i] < bids[j] })
	for _, bid := range bids {
		if _, err := ev.engine.CallMethod(account, "deposit", core.BidValue(bid)); err != nil {
			return err
		}
	}
	ev.bucketNames = make(map[string]core.Bid)
	ev.declaredBuckets = make(map[string]bool)
	return nil
}

func (ev *Evaluator) resolveDecimal(v Value) (core.Decimal, error) {
	if v.Kind != VDecimal {
		return core.Decimal{}, fmt.Errorf("expected Decimal(...) value")
	}
	return core.ParseDecimal(v.Str)
}

func (ev *Evaluator) resolveAddress(v Value) (core.Address, error) {
	if v.Kind != VAddress {
		return core.Address{}, fmt.Errorf("expected Address(...) value")
	}
	return core.ParseAddress(v.Str)
}

func (ev *Evaluator) resolveArgs(vals []Value) (core.Value, error) {
	out := make([]core.Value, 0, len(vals))
	for _, v := range vals {
		rv, err := ev.resolveValue(v)
		if err != nil {
			return core.Value{}, err
		}
		out = append(out, rv)
	}
	return core.TupleValue(out...), nil
}

// resolveValue converts one manifest value-grammar node into a core.Value,
// resolving Bucket/BucketRef name literals against the name table built up
// by DECLARE_TEMP_BUCKET[_REF]/TAKE_FROM_CONTEXT/BORROW_FROM_CONTEXT
// (spec.md §9 "Parser handling of string-named bucket/ref literals").
func (ev *Evaluator) resolveValue(v Value) (core.Value, error) {
	switch v.Kind {
	case VString:
		return core.StringValue(v.Str), nil
	case VBool:
		return core.BoolValue(v.Bool), nil
	case VU32:
		return core.U32Value(v.U32), nil
	case VDecimal:
		d, err := core.ParseDecimal(v.Str)
		if err != nil {
			return core.Value{}, err
		}
		return core.DecimalValue(d), nil
	case VAddress:
		a, err := core.ParseAddress(v.Str)
		if err != nil {
			return core.Value{}, err
		}
		return core.AddressValue(a), nil
	case VBucketIndex:
		return core.BidValue(core.Bid(v.U32)), nil
	case VBucketName:
		bid, ok := ev.bucketNames[v.Str]
		if !ok {
			return core.Value{}, fmt.Errorf("bucket %q has no bound value (missing TAKE_FROM_CONTEXT)", v.Str)
		}
		return core.BidValue(bid), nil
	case VBucketRefIndex:
		return core.RidValue(core.Rid(v.U32)), nil
	case VBucketRefName:
		rid, ok := ev.refNames[v.Str]
		if !ok {
			return core.Value{}, fmt.Errorf("bucket-ref %q has no bound value (missing BORROW_FROM_CONTEXT)", v.Str)
		}
		return core.RidValue(rid), nil
	case VStruct:
		fields, err := ev.resolveList(v.Fields)
		if err != nil {
			return core.Value{}, err
		}
		// The manifest grammar's Struct constructor carries no field
		// names, so its fields are represented positionally as a tuple;
		// blueprint code decodes them in declared order.
		return core.TupleValue(fields...), nil
	case VEnum:
		fields, err := ev.resolveList(v.Fields)
		if err != nil {
			return core.Value{}, err
		}
		return core.Value{Kind: core.KindEnum, Disc: v.Disc, Tuple: fields}, nil
	case VVec:
		elems, err := ev.resolveList(v.Fields)
		if err != nil {
			return core.Value{}, err
		}
		return core.Value{Kind: core.KindVec, ElemKind: vecElemKind(v.Elem), Elements: elems}, nil
	default:
		return core.Value{}, fmt.Errorf("unresolvable value kind %d", v.Kind)
	}
}

func (ev *Evaluator) resolveList(vals []Value) ([]core.Value, error) {
	out := make([]core.Value, 0, len(vals))
	for _, v := range vals {
		rv, err := ev.resolveValue(v)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, nil
}

func vecElemKind(name string) core.ValueKind {
	switch name {
	case "String":
		return core.KindString
	case "Bool":
		return core.KindBool
	case "U32":
		return core.KindU32
	case "Decimal":
		return core.KindDecimal
	case "Address":
		return core.KindAddress
	case "Bucket":
		return core.KindBid
	case "BucketRef":
		return core.KindRid
	default:
		return core.KindString
	}
}
