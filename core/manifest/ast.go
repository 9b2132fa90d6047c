package manifest

// InstructionKind tags one manifest instruction (spec.md §4.G grammar).
type InstructionKind int

const (
	InstrDeclareTempBucket InstructionKind = iota
	InstrDeclareTempBucketRef
	InstrTakeFromContext
	InstrBorrowFromContext
	InstrCallFunction
	InstrCallMethod
	InstrDropAllBucketRefs
	InstrDepositAllBuckets
)

// Instruction is one parsed manifest statement, prior to name resolution.
type Instruction struct {
	Kind InstructionKind
	Line int

	Name string // DECLARE_TEMP_BUCKET[_REF], TAKE/BORROW_FROM_CONTEXT destination name

	Amount       *Value // TAKE_FROM_CONTEXT, BORROW_FROM_CONTEXT
	ResourceAddr *Value // TAKE_FROM_CONTEXT, BORROW_FROM_CONTEXT

	TargetAddr *Value // CALL_FUNCTION/CALL_METHOD/DEPOSIT_ALL_BUCKETS address
	Blueprint  string // CALL_FUNCTION
	Method     string // CALL_FUNCTION/CALL_METHOD

	Args []Value
}

// ValueKind tags the arm of the pre-resolution manifest value grammar
// (spec.md §4.G "value"). Named Bucket/BucketRef literals are resolved
// against the evaluator's name table at evaluation time (design note 9:
// the original's unfinished parser TODO, resolved here per spec).
type ValueKind int

const (
	VString ValueKind = iota
	VBool
	VU32
	VDecimal
	VAddress
	VBucketIndex
	VBucketName
	VBucketRefIndex
	VBucketRefName
	VStruct
	VEnum
	VVec
)

// Value is one node of the manifest argument grammar: either a bare
// scalar literal or a type-tagged constructor (spec.md §4.G).
type Value struct {
	Kind ValueKind

	Str    string
	Bool   bool
	U32    uint32
	Disc   uint8   // VEnum discriminant
	Fields []Value // VStruct/VEnum/VVec elements
	Elem   string  // VVec element type name, e.g. "Decimal"
}
