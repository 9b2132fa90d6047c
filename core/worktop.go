package core

import "sort"

// WorktopTake satisfies the manifest evaluator's TAKE_FROM_CONTEXT
// instruction: it merges every bucket the top frame holds for
// resourceAddr into one, splits amount off, and leaves any remainder back
// on the worktop under a fresh id (spec.md §4.G "worktop"). Buckets are
// visited in ascending Bid order so the merge is deterministic regardless
// of Go's randomised map iteration (design note 9 "Determinism").
func (e *Engine) WorktopTake(resourceAddr Address, amount Decimal) (Bid, error) {
	frame, err := e.requireFrame()
	if err != nil {
		return 0, err
	}

	var matching []Bid
	for bid, b := range frame.Buckets {
		if b.ResourceDef == resourceAddr {
			matching = append(matching, bid)
		}
	}
	if len(matching) == 0 {
		return 0, newErr(ErrBucketNotFound, "no bucket of resource %s on the worktop", resourceAddr)
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i] < matching[j] })

	var combined *Bucket
	for _, bid := range matching {
		b, _ := frame.TakeBucket(bid)
		if combined == nil {
			combined = b
			continue
		}
		if err := combined.Put(b); err != nil {
			return 0, err
		}
	}

	out, err := combined.Take(amount)
	if err != nil {
		frame.PutBucket(e.freshBid(), combined)
		return 0, err
	}
	if !combined.IsEmpty() {
		frame.PutBucket(e.freshBid(), combined)
	}

	bid := e.freshBid()
	frame.PutBucket(bid, out)
	return bid, nil
}

// WorktopBorrow satisfies BORROW_FROM_CONTEXT: it takes amount off the
// worktop exactly as WorktopTake does, then locks the resulting bucket
// behind a fresh bucket-ref (spec.md §4.G, §9 "Refcounted bucket
// borrows").
func (e *Engine) WorktopBorrow(resourceAddr Address, amount Decimal) (Rid, error) {
	bid, err := e.WorktopTake(resourceAddr, amount)
	if err != nil {
		return 0, err
	}
	frame, err := e.requireFrame()
	if err != nil {
		return 0, err
	}
	bucket := frame.Buckets[bid]
	if bucket.IsEmpty() {
		return 0, newErr(ErrEmptyBucketRef, "cannot reference empty bucket %s", bid)
	}
	count := 1
	rid := e.freshRid()
	frame.PutRef(rid, &LockedBucket{BucketID: bid, Bucket: bucket, RefCount: &count})
	return rid, nil
}
