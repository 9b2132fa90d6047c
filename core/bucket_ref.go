package core

// LockedBucket is a reference-counted handle to a bucket locked for the
// lifetime of any outstanding BucketRef naming it (spec.md §3). A bucket
// with RefCount > 0 may still be inspected (GetBucketRefAmount) but cannot
// be put/taken-from/dropped — mutation attempts yield UnsupportedOperation
// (spec.md §5). Because the engine is single-threaded, a plain int
// refcount suffices; no atomics are needed (design note 9).
type LockedBucket struct {
	BucketID Bid
	Bucket   *Bucket
	RefCount *int
}

// Locked reports whether the underlying bucket currently has any
// outstanding ref.
func (lb *LockedBucket) Locked() bool { return lb.RefCount != nil && *lb.RefCount > 0 }

// Amount reports the locked bucket's current amount, usable even while
// locked (read-only inspection is always permitted).
func (lb *LockedBucket) Amount() Decimal {
	if lb.Bucket == nil {
		return ZeroDecimal()
	}
	return lb.Bucket.Amount()
}
