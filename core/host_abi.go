package core

// OpCode identifies a host-call operation blueprint code may request
// (spec.md §4.F). Using a stable numeric code instead of per-import
// bindings keeps the ABI a data table (design note "Host-call dispatch"),
// generalising the teacher's four ad hoc host_* imports into one table.
type OpCode uint32

const (
	OpPublishPackage OpCode = iota
	OpCallFunction
	OpCallMethod
	OpCreateComponent
	OpGetComponentInfo
	OpGetComponentState
	OpPutComponentState
	OpCreateLazyMap
	OpGetLazyMapEntry
	OpPutLazyMapEntry
	OpCreateResource
	OpMintResource
	OpBurnResource
	OpCreateVault
	OpPutIntoVault
	OpTakeFromVault
	OpTakeNftFromVault
	OpCreateBucket
	OpPutIntoBucket
	OpTakeFromBucket
	OpCreateBucketRef
	OpDropBucketRef
	OpGetBucketRefAmount
	OpGetNftData
	OpUpdateNftMutableData
	OpEmitLog
	OpTransactionSigners
	OpTransactionHash
)

// hostRequest is the decoded shape of every call_engine request: an op
// code followed by a single SBOR tuple of arguments. Requests and
// responses are themselves SBOR-encoded Values so the same codec
// (sbor.go) serves both the manifest evaluator and the sandbox boundary.
type hostRequest struct {
	Op   OpCode
	Args Value
}

func decodeHostRequest(raw []byte) (hostRequest, error) {
	v, err := DecodeFull(raw)
	if err != nil {
		return hostRequest{}, newErr(ErrInvalidRequestData, "%v", err)
	}
	if v.Kind != KindTuple || len(v.Tuple) != 2 || v.Tuple[0].Kind != KindU32 {
		return hostRequest{}, newErr(ErrInvalidRequestData, "malformed host request envelope")
	}
	return hostRequest{Op: OpCode(v.Tuple[0].Int.Uint64()), Args: v.Tuple[1]}, nil
}

func encodeHostResponse(result Value) []byte { return Encode(result) }

// recoverableResourceErrors is exactly the "Resource errors" bullet from
// spec.md §7: the only RuntimeError kinds a host call is permitted to
// surface to blueprint code as an observable Result::Err rather than a
// trap (spec.md §7 propagation policy).
var recoverableResourceErrors = map[ErrorKind]bool{
	ErrMismatchingResourceDef: true,
	ErrInsufficientBalance:    true,
	ErrInvalidGranularity:     true,
	ErrGranularityCheckFailed: true,
	ErrNegativeAmount:         true,
	ErrUnsupportedOperation:   true,
}

// resultOrTrap converts a (Value, error) pair produced by a host handler
// into the Dispatch-level (Value, error) contract: a recoverable resource
// error becomes an encoded Result::Err for the blueprint to inspect; any
// other error propagates as a Go error, which Dispatch turns into a
// WASM-level trap that aborts the whole transaction.
func resultOrTrap(v Value, err error) (Value, error) {
	if err == nil {
		return OkValue(v), nil
	}
	if re, ok := err.(*RuntimeError); ok && recoverableResourceErrors[re.Kind] {
		return ErrorValue(re.Kind, re.Detail), nil
	}
	return Value{}, err
}

// Dispatch is the engine's single switch over every OpCode (spec.md §4.F,
// design note "Host-call dispatch"). Module, invocation, entity-existence,
// type/address, authorisation, frame and terminal errors all trap
// (returned as a Go error here, which aborts the sandbox call); only the
// resource-error subset is encoded as a Result::Err value the blueprint
// can observe.
func (e *Engine) Dispatch(raw []byte) ([]byte, error) {
	req, err := decodeHostRequest(raw)
	if err != nil {
		return nil, err
	}

	var result Value
	switch req.Op {
	case OpPublishPackage:
		result, err = e.hostPublishPackage(req.Args)
	case OpCallFunction:
		result, err = e.hostCallFunction(req.Args)
	case OpCallMethod:
		result, err = e.hostCallMethod(req.Args)
	case OpCreateComponent:
		result, err = e.hostCreateComponent(req.Args)
	case OpGetComponentInfo:
		result, err = e.hostGetComponentInfo(req.Args)
	case OpGetComponentState:
		result, err = e.hostGetComponentState(req.Args)
	case OpPutComponentState:
		result, err = e.hostPutComponentState(req.Args)
	case OpCreateLazyMap:
		result, err = e.hostCreateLazyMap(req.Args)
	case OpGetLazyMapEntry:
		result, err = e.hostGetLazyMapEntry(req.Args)
	case OpPutLazyMapEntry:
		result, err = e.hostPutLazyMapEntry(req.Args)
	case OpCreateResource:
		result, err = e.hostCreateResource(req.Args)
	case OpMintResource:
		result, err = e.hostMintResource(req.Args)
	case OpBurnResource:
		result, err = e.hostBurnResource(req.Args)
	case OpCreateVault:
		result, err = e.hostCreateVault(req.Args)
	case OpPutIntoVault:
		result, err = e.hostPutIntoVault(req.Args)
	case OpTakeFromVault:
		result, err = e.hostTakeFromVault(req.Args)
	case OpTakeNftFromVault:
		result, err = e.hostTakeNftFromVault(req.Args)
	case OpCreateBucket:
		result, err = e.hostCreateBucket(req.Args)
	case OpPutIntoBucket:
		result, err = e.hostPutIntoBucket(req.Args)
	case OpTakeFromBucket:
		result, err = e.hostTakeFromBucket(req.Args)
	case OpCreateBucketRef:
		result, err = e.hostCreateBucketRef(req.Args)
	case OpDropBucketRef:
		result, err = e.hostDropBucketRef(req.Args)
	case OpGetBucketRefAmount:
		result, err = e.hostGetBucketRefAmount(req.Args)
	case OpGetNftData:
		result, err = e.hostGetNftData(req.Args)
	case OpUpdateNftMutableData:
		result, err = e.hostUpdateNftMutableData(req.Args)
	case OpEmitLog:
		result, err = e.hostEmitLog(req.Args)
	case OpTransactionSigners:
		result, err = e.hostTransactionSigners(req.Args)
	case OpTransactionHash:
		result, err = e.hostTransactionHash(req.Args)
	default:
		return nil, newErr(ErrInvalidRequestCode, "unknown op code %d", req.Op)
	}

	wrapped, err := resultOrTrap(result, err)
	if err != nil {
		return nil, err
	}
	return encodeHostResponse(wrapped), nil
}
