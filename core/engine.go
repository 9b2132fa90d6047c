package core

// LogEntry is a single emit_log record attached to the transaction receipt.
type LogEntry struct {
	Level   string
	Message string
}

var allowedLogLevels = map[string]bool{
	"ERROR": true, "WARN": true, "INFO": true, "DEBUG": true, "TRACE": true,
}

// Engine is the per-transaction execution context: the call-frame stack,
// the layered Track over the backing SubstateStore, transaction-scoped id
// counters, and a cache of compiled packages (spec.md §4.D/§4.E). One
// Engine serves exactly one transaction; the driver (driver package)
// constructs a fresh Engine per Execute call.
type Engine struct {
	track   *Track
	frames  []*CallFrame
	nextBid uint32
	nextRid uint32

	packageCache map[Address]*CompiledModule
	addressNonce uint64

	signers []Address
	txHash  Hash
	logs    []LogEntry

	newEntities []Address
}

// NewEntities lists every package/component/resource-def address minted
// during this transaction, in creation order (spec.md §4.H "new-entity
// addresses").
func (e *Engine) NewEntities() []Address { return e.newEntities }

func (e *Engine) recordNewEntity(addr Address) { e.newEntities = append(e.newEntities, addr) }

// nextAddressNonce hands out a fresh per-transaction nonce for address
// derivation (publish_package, create_component, create_resource), mixed
// with the transaction hash so addresses are unique across transactions
// without a global counter (spec.md §4.A "frameNonce").
func (e *Engine) nextAddressNonce() uint64 {
	e.addressNonce++
	return e.addressNonce
}

// NewEngine opens an engine over store for a transaction signed by signers
// with the given precomputed transaction hash.
func NewEngine(store SubstateStore, signers []Address, txHash Hash) *Engine {
	return &Engine{
		track:        NewTrack(store),
		packageCache: make(map[Address]*CompiledModule),
		signers:      signers,
		txHash:       txHash,
	}
}

// Track exposes the engine's track for the driver to commit/discard.
func (e *Engine) Track() *Track { return e.track }

// Logs returns every log emitted so far, in emission order.
func (e *Engine) Logs() []LogEntry { return e.logs }

func (e *Engine) currentFrame() *CallFrame {
	if len(e.frames) == 0 {
		return nil
	}
	return e.frames[len(e.frames)-1]
}

// CurrentFrame exposes the engine's top call frame to the manifest
// evaluator, which runs as the transaction's outermost actor and manages
// the worktop directly against that frame's bucket/ref maps.
func (e *Engine) CurrentFrame() *CallFrame { return e.currentFrame() }

// FreshBid hands out a transaction-scoped bucket id, exposed for the
// manifest evaluator's worktop bookkeeping.
func (e *Engine) FreshBid() Bid { return e.freshBid() }

// FreshRid hands out a transaction-scoped bucket-ref id, exposed for the
// manifest evaluator's BORROW_FROM_CONTEXT handling.
func (e *Engine) FreshRid() Rid { return e.freshRid() }

func (e *Engine) freshBid() Bid {
	e.nextBid++
	return Bid(e.nextBid)
}

func (e *Engine) freshRid() Rid {
	e.nextRid++
	return Rid(e.nextRid)
}

func (e *Engine) freshVid() (Vid, error) {
	n, err := e.bumpCounter("vault")
	return Vid(n), err
}

func (e *Engine) freshMid() (Mid, error) {
	n, err := e.bumpCounter("lazymap")
	return Mid(n), err
}

// bumpCounter persists a monotonically increasing counter in the track so
// that Vid/Mid allocation survives across transactions against the same
// store (spec.md glossary: Vid/Mid are "persisted, globally unique").
func (e *Engine) bumpCounter(name string) (uint32, error) {
	key := keyCounter(name)
	raw, ok, err := e.track.Get(key)
	if err != nil {
		return 0, newErr(ErrInvokeFailure, "%v", err)
	}
	var next uint32 = 1
	if ok && len(raw) == 4 {
		next = beUint32(raw) + 1
	}
	e.track.Set(key, beBytes32(next))
	return next, nil
}

// StartTopFrame pushes the transaction's outermost frame, whose authoriser
// set is the transaction's signers (spec.md §4.E).
func (e *Engine) StartTopFrame() {
	e.track.PushLayer()
	e.frames = append(e.frames, NewCallFrame(Actor{Kind: ActorFunction}))
}

// FinishTopFrame runs the terminal resource-leak check and, if the frame
// is clean, merges its layer into the track (spec.md §4.E, §4.H).
func (e *Engine) FinishTopFrame() error {
	top := e.currentFrame()
	if top == nil {
		return newErr(ErrInterpreterNotStarted, "no open frame")
	}
	if !top.IsEmpty() {
		e.track.PopAndDiscard()
		e.frames = e.frames[:len(e.frames)-1]
		return newErr(ErrResourceCheckFailure, "transaction ended with %d bucket(s), %d ref(s) outstanding",
			len(top.Buckets), len(top.Refs))
	}
	e.track.PopAndMerge()
	e.frames = e.frames[:len(e.frames)-1]
	return nil
}

// PublishPackage validates code and stores it, returning a fresh package
// address (spec.md §4.F publish_package). Publishing needs no open call
// frame: it happens once, ahead of any transaction that will reference
// the package, unlike CallFunction/CallMethod which run inside one.
func (e *Engine) PublishPackage(code []byte) (Address, error) {
	v, err := e.hostPublishPackage(TupleValue(bytesValue(code)))
	if err != nil {
		return Address{}, err
	}
	return v.Address, nil
}

// CallFunction invokes a blueprint function with no receiver component
// (spec.md §4.E, §4.F call_function). argsValue is the decoded argument
// tuple, SBOR-encoded by invoke on the way into the sandbox; any Bid/Rid it
// references is moved from the caller's frame into the callee's.
func (e *Engine) CallFunction(pkg Address, blueprint, fn string, argsValue Value) (Value, error) {
	pkgEntity, err := e.loadPackage(pkg)
	if err != nil {
		return Value{}, err
	}
	if !pkgEntity.HasExport(blueprint, fn) {
		return Value{}, newErr(ErrComponentNotFound, "no export %s.%s in package %s", blueprint, fn, pkg)
	}
	actor := Actor{Kind: ActorFunction, Package: pkg, BlueprintName: blueprint}
	return e.invoke(pkgEntity, exportKey(blueprint, fn), actor, argsValue)
}

// CallMethod invokes a method bound to an existing component (spec.md
// §4.E, §4.F call_method).
func (e *Engine) CallMethod(comp Address, method string, argsValue Value) (Value, error) {
	compVal, ok, err := e.getComponent(comp)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newErr(ErrComponentNotFound, "component %s not found", comp)
	}
	pkgEntity, err := e.loadPackage(compVal.Blueprint)
	if err != nil {
		return Value{}, err
	}
	if !pkgEntity.HasExport(compVal.BlueprintName, method) {
		return Value{}, newErr(ErrComponentNotFound, "no export %s.%s", compVal.BlueprintName, method)
	}
	actor := Actor{Kind: ActorMethod, Package: compVal.Blueprint, BlueprintName: compVal.BlueprintName, Component: comp}

	// Bundle the component address and the caller-supplied arguments so
	// the blueprint entry point can recover both without a second host
	// round-trip: the sandbox export always receives (component, args).
	wrapped := TupleValue(AddressValue(comp), argsValue)
	return e.invoke(pkgEntity, exportKey(compVal.BlueprintName, method), actor, wrapped)
}

// invoke implements the four-step protocol from spec.md §4.E: move ids out
// of the caller's frame, push a child frame and a track layer, run the
// sandbox export via Dispatch, then merge or discard depending on the
// outcome and hand any resources the callee still holds back to the
// caller.
func (e *Engine) invoke(pkgEntity *PackageEntity, export string, actor Actor, args Value) (Value, error) {
	caller := e.currentFrame()
	bids, rids := args.CollectIDs()

	callee := NewCallFrame(actor)
	if caller != nil {
		for _, bid := range bids {
			if b, ok := caller.TakeBucket(bid); ok {
				callee.PutBucket(bid, b)
			}
		}
		for _, rid := range rids {
			if r, ok := caller.TakeRef(rid); ok {
				callee.PutRef(rid, r)
			}
		}
	}

	e.frames = append(e.frames, callee)
	e.track.PushLayer()

	module, err := e.compiledModuleFor(pkgEntity)
	if err != nil {
		e.abortFrame()
		return Value{}, err
	}

	reqBytes := Encode(args)
	respBytes, err := module.InvokeExport(export, reqBytes, e.Dispatch)
	if err != nil {
		e.abortFrame()
		return Value{}, err
	}

	result, err := DecodeFull(respBytes)
	if err != nil {
		e.abortFrame()
		return Value{}, newErr(ErrInvalidReturnType, "%v", err)
	}

	// Resource handoff: anything the callee still holds moves back to the
	// caller (spec.md §4.E step 3), whether the export's own Result was Ok
	// or Err — only a RuntimeError-level trap discards the frame.
	leftBuckets, leftRefs := e.currentFrame().DrainAll()
	e.frames = e.frames[:len(e.frames)-1]
	e.track.PopAndMerge()
	if caller != nil {
		for _, b := range leftBuckets {
			caller.PutBucket(e.freshBid(), b)
		}
		for _, r := range leftRefs {
			caller.PutRef(e.freshRid(), r)
		}
	}

	return result, nil
}

func (e *Engine) abortFrame() {
	e.track.PopAndDiscard()
	e.frames = e.frames[:len(e.frames)-1]
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
func beBytes32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func (e *Engine) requireFrame() (*CallFrame, error) {
	f := e.currentFrame()
	if f == nil {
		return nil, newErr(ErrInterpreterNotStarted, "no call frame open")
	}
	return f, nil
}
