package core

// ActorKind distinguishes a blueprint function invocation (no receiver)
// from a component method invocation (bound to a specific component
// address), spec.md §4.E.
type ActorKind uint8

const (
	ActorFunction ActorKind = iota
	ActorMethod
)

// Actor identifies who is executing inside a call frame.
type Actor struct {
	Kind          ActorKind
	Package       Address
	BlueprintName string
	Component     Address // zero value when Kind == ActorFunction
}

// CallFrame is the engine's unit of resource isolation (spec.md §4.E): the
// moveable resources (buckets and bucket-refs) owned by this invocation,
// keyed by the transaction-scoped Bid/Rid the frame itself assigned them.
// A frame's buckets/refs are invisible to every other frame; they move
// across a call boundary only via the arguments/return value passed
// explicitly, the same way the Value tree's CollectIDs walk finds them.
type CallFrame struct {
	Actor   Actor
	Buckets map[Bid]*Bucket
	Refs    map[Rid]*LockedBucket
}

// NewCallFrame starts an empty frame for the given actor.
func NewCallFrame(actor Actor) *CallFrame {
	return &CallFrame{
		Actor:   actor,
		Buckets: make(map[Bid]*Bucket),
		Refs:    make(map[Rid]*LockedBucket),
	}
}

// TakeBucket removes and returns a bucket owned by this frame, for moving
// it into a callee's frame or the worktop. Returns false if absent.
func (f *CallFrame) TakeBucket(id Bid) (*Bucket, bool) {
	b, ok := f.Buckets[id]
	if ok {
		delete(f.Buckets, id)
	}
	return b, ok
}

// PutBucket installs a bucket under id, e.g. a value returned from a
// callee or moved from the worktop.
func (f *CallFrame) PutBucket(id Bid, b *Bucket) { f.Buckets[id] = b }

// TakeRef removes and returns a bucket-ref owned by this frame.
func (f *CallFrame) TakeRef(id Rid) (*LockedBucket, bool) {
	r, ok := f.Refs[id]
	if ok {
		delete(f.Refs, id)
	}
	return r, ok
}

// PutRef installs a bucket-ref under id.
func (f *CallFrame) PutRef(id Rid, r *LockedBucket) { f.Refs[id] = r }

// DrainAll removes every bucket and ref the frame still holds, used by
// invoke to hand a returning callee's leftover resources back to its
// caller.
func (f *CallFrame) DrainAll() (buckets []*Bucket, refs []*LockedBucket) {
	for id, b := range f.Buckets {
		buckets = append(buckets, b)
		delete(f.Buckets, id)
	}
	for id, r := range f.Refs {
		refs = append(refs, r)
		delete(f.Refs, id)
	}
	return buckets, refs
}

// DropAllRefs releases every outstanding bucket-ref the frame holds,
// decrementing each underlying bucket's refcount without touching the
// buckets themselves (spec.md §4.G DROP_ALL_BUCKET_REFS).
func (f *CallFrame) DropAllRefs() {
	for rid, ref := range f.Refs {
		if ref.RefCount != nil {
			*ref.RefCount--
		}
		delete(f.Refs, rid)
	}
}

// IsEmpty reports whether the frame holds no moveable resources — the
// condition required of every non-terminal frame when it returns, and of
// the terminal frame after the manifest's closing instructions run.
func (f *CallFrame) IsEmpty() bool { return len(f.Buckets) == 0 && len(f.Refs) == 0 }
