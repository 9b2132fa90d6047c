package core

import "fmt"

// ErrorKind enumerates the flat RuntimeError taxonomy from the engine spec.
// Business-level resource errors (insufficient balance, mismatching def,
// ...) are normally surfaced to blueprint code as an encoded Result::Err
// value rather than a Go error; RuntimeError is reserved for trap-level
// failures that abort the whole transaction.
type ErrorKind int

const (
	// Module errors
	ErrInvalidModule ErrorKind = iota
	ErrStartFunctionNotAllowed
	ErrFloatingPointNotAllowed
	ErrNoValidMemoryExport
	ErrHostFunctionNotFound

	// Invocation errors
	ErrInvokeFailure
	ErrMemoryAccess
	ErrMemoryAlloc
	ErrNoReturnData
	ErrInvalidReturnType
	ErrInvalidRequestCode
	ErrInvalidRequestData
	ErrInvalidData

	// Entity-existence errors
	ErrPackageNotFound
	ErrPackageAlreadyExists
	ErrComponentNotFound
	ErrComponentAlreadyExists
	ErrResourceDefNotFound
	ErrResourceDefAlreadyExists
	ErrLazyMapNotFound
	ErrLazyMapAlreadyExists
	ErrVaultNotFound
	ErrVaultAlreadyExists
	ErrBucketNotFound
	ErrBucketAlreadyExists
	ErrBucketRefNotFound
	ErrBucketRefAlreadyExists
	ErrNftNotFound
	ErrNftAlreadyExists

	// Type/address errors
	ErrInvalidPackageAddress
	ErrInvalidComponentAddress
	ErrInvalidResourceDefAddress

	// Resource errors
	ErrMismatchingResourceDef
	ErrInsufficientBalance
	ErrInvalidGranularity
	ErrGranularityCheckFailed
	ErrNegativeAmount
	ErrUnsupportedOperation

	// Authorisation errors
	ErrUnauthorized

	// Frame errors
	ErrBucketNotAllowed
	ErrBucketRefNotAllowed
	ErrEmptyBucketRef
	ErrInterpreterNotStarted
	ErrInvalidLogLevel
	ErrBucketNotReserved
	ErrBucketRefNotReserved

	// Terminal check
	ErrResourceCheckFailure
)

var errorKindNames = map[ErrorKind]string{
	ErrInvalidModule:             "InvalidModule",
	ErrStartFunctionNotAllowed:   "StartFunctionNotAllowed",
	ErrFloatingPointNotAllowed:   "FloatingPointNotAllowed",
	ErrNoValidMemoryExport:       "NoValidMemoryExport",
	ErrHostFunctionNotFound:      "HostFunctionNotFound",
	ErrInvokeFailure:             "InvokeFailure",
	ErrMemoryAccess:              "MemoryAccessError",
	ErrMemoryAlloc:               "MemoryAllocError",
	ErrNoReturnData:              "NoReturnData",
	ErrInvalidReturnType:         "InvalidReturnType",
	ErrInvalidRequestCode:        "InvalidRequestCode",
	ErrInvalidRequestData:        "InvalidRequestData",
	ErrInvalidData:               "InvalidData",
	ErrPackageNotFound:           "PackageNotFound",
	ErrPackageAlreadyExists:      "PackageAlreadyExists",
	ErrComponentNotFound:         "ComponentNotFound",
	ErrComponentAlreadyExists:    "ComponentAlreadyExists",
	ErrResourceDefNotFound:       "ResourceDefNotFound",
	ErrResourceDefAlreadyExists:  "ResourceDefAlreadyExists",
	ErrLazyMapNotFound:           "LazyMapNotFound",
	ErrLazyMapAlreadyExists:      "LazyMapAlreadyExists",
	ErrVaultNotFound:             "VaultNotFound",
	ErrVaultAlreadyExists:        "VaultAlreadyExists",
	ErrBucketNotFound:            "BucketNotFound",
	ErrBucketAlreadyExists:       "BucketAlreadyExists",
	ErrBucketRefNotFound:         "BucketRefNotFound",
	ErrBucketRefAlreadyExists:    "BucketRefAlreadyExists",
	ErrNftNotFound:               "NftNotFound",
	ErrNftAlreadyExists:          "NftAlreadyExists",
	ErrInvalidPackageAddress:     "InvalidPackageAddress",
	ErrInvalidComponentAddress:   "InvalidComponentAddress",
	ErrInvalidResourceDefAddress: "InvalidResourceDefAddress",
	ErrMismatchingResourceDef:    "MismatchingResourceDef",
	ErrInsufficientBalance:       "InsufficientBalance",
	ErrInvalidGranularity:        "InvalidGranularity",
	ErrGranularityCheckFailed:    "GranularityCheckFailed",
	ErrNegativeAmount:            "NegativeAmount",
	ErrUnsupportedOperation:      "UnsupportedOperation",
	ErrUnauthorized:              "Unauthorized",
	ErrBucketNotAllowed:          "BucketNotAllowed",
	ErrBucketRefNotAllowed:       "BucketRefNotAllowed",
	ErrEmptyBucketRef:            "EmptyBucketRef",
	ErrInterpreterNotStarted:     "InterpreterNotStarted",
	ErrInvalidLogLevel:           "InvalidLogLevel",
	ErrBucketNotReserved:         "BucketNotReserved",
	ErrBucketRefNotReserved:      "BucketRefNotReserved",
	ErrResourceCheckFailure:      "ResourceCheckFailure",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// RuntimeError is the single flat error type propagated by the engine. A
// RuntimeError that reaches the driver aborts the transaction; it never
// crosses the sandbox boundary as a stack trace, only as this struct.
type RuntimeError struct {
	Kind   ErrorKind
	Detail string
}

func (e *RuntimeError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func newErr(kind ErrorKind, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind carried by err, if any, for receipt
// reporting. Any non-RuntimeError is reported as InvokeFailure.
func KindOf(err error) ErrorKind {
	if err == nil {
		return -1
	}
	if re, ok := err.(*RuntimeError); ok {
		return re.Kind
	}
	return ErrInvokeFailure
}
