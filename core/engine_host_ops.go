package core

import "github.com/ethereum/go-ethereum/crypto"

// Host op handlers, one per row of spec.md §4.F's table. Each receives the
// decoded argument tuple and returns the Value to encode as the call's
// Result::Ok payload; a non-nil error aborts the sandbox call as a trap
// (see resultOrTrap in host_abi.go for which errors are recoverable
// instead). Argument positions follow the ABI table's declared order.

func (e *Engine) hostPublishPackage(args Value) (Value, error) {
	code := valueBytes(args.Tuple[0])
	if err := ValidateModule(code); err != nil {
		return Value{}, err
	}
	nonce := e.nextAddressNonce()
	addr := NewPackageAddress(e.txHash[:], nonce)
	if _, ok, _ := e.getPackage(addr); ok {
		return Value{}, newErr(ErrPackageAlreadyExists, "package %s already exists", addr)
	}
	exports, err := scanExports(code)
	if err != nil {
		return Value{}, err
	}
	e.putPackage(&PackageEntity{Addr: addr, Code: code, Exports: exports})
	e.recordNewEntity(addr)
	return AddressValue(addr), nil
}

// scanExports lists the WASM module's non-memory, non-alloc exports as
// "Blueprint.function" names, trusting the bytecode publisher's naming
// convention — the engine has no separate blueprint manifest to consult.
func scanExports(code []byte) (map[string]bool, error) {
	m, err := CompileModule(code)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for _, exp := range m.module.Exports() {
		name := exp.Name()
		if name == memoryExportName || name == allocExportName {
			continue
		}
		out[name] = true
	}
	return out, nil
}

func (e *Engine) hostCallFunction(args Value) (Value, error) {
	pkg := args.Tuple[0].Address
	bp := args.Tuple[1].Str
	fn := args.Tuple[2].Str
	result, err := e.CallFunction(pkg, bp, fn, args.Tuple[3])
	if err != nil {
		return Value{}, err
	}
	return result, nil
}

func (e *Engine) hostCallMethod(args Value) (Value, error) {
	comp := args.Tuple[0].Address
	method := args.Tuple[1].Str
	result, err := e.CallMethod(comp, method, args.Tuple[2])
	if err != nil {
		return Value{}, err
	}
	return result, nil
}

func (e *Engine) hostCreateComponent(args Value) (Value, error) {
	actor := e.currentFrame().Actor
	bp := args.Tuple[0].Str
	state := valueBytes(args.Tuple[1])
	nonce := e.nextAddressNonce()
	mixed := crypto.Keccak256(e.txHash[:], beBytes32(uint32(nonce)))
	frameNonce := uint64(beUint32(mixed[0:4]))<<32 | uint64(beUint32(mixed[4:8]))
	addr := NewComponentAddress(actor.Package, bp, frameNonce)
	e.putComponent(&Component{Addr: addr, Blueprint: actor.Package, BlueprintName: bp, State: state})
	e.recordNewEntity(addr)
	return AddressValue(addr), nil
}

func (e *Engine) hostGetComponentInfo(args Value) (Value, error) {
	addr := args.Tuple[0].Address
	c, ok, err := e.getComponent(addr)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newErr(ErrComponentNotFound, "component %s not found", addr)
	}
	return Value{Kind: KindStruct, Fields: []NamedValue{
		{Name: "blueprint", Value: AddressValue(c.Blueprint)},
		{Name: "blueprint_name", Value: StringValue(c.BlueprintName)},
	}}, nil
}

// actorComponent resolves the component a frame's actor is bound to,
// required for the actor-scoped get/put_component_state ops.
func (e *Engine) actorComponent() (*Component, error) {
	frame, err := e.requireFrame()
	if err != nil {
		return nil, err
	}
	if frame.Actor.Kind != ActorMethod {
		return nil, newErr(ErrComponentNotFound, "no bound component in a function frame")
	}
	c, ok, err := e.getComponent(frame.Actor.Component)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(ErrComponentNotFound, "component %s not found", frame.Actor.Component)
	}
	return c, nil
}

func (e *Engine) hostGetComponentState(args Value) (Value, error) {
	c, err := e.actorComponent()
	if err != nil {
		return Value{}, err
	}
	return bytesValue(c.State), nil
}

func (e *Engine) hostPutComponentState(args Value) (Value, error) {
	c, err := e.actorComponent()
	if err != nil {
		return Value{}, err
	}
	c.State = valueBytes(args.Tuple[0])
	e.putComponent(c)
	return Unit(), nil
}

func (e *Engine) hostCreateLazyMap(args Value) (Value, error) {
	mid, err := e.freshMid()
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: KindMid, Mid: mid}, nil
}

func (e *Engine) hostGetLazyMapEntry(args Value) (Value, error) {
	mid := args.Tuple[0].Mid
	key := valueBytes(args.Tuple[1])
	val, ok, err := e.getLazyMapEntry(mid, key)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{Kind: KindOption, Inner: nil}, nil
	}
	inner := bytesValue(val)
	return Value{Kind: KindOption, Inner: &inner}, nil
}

func (e *Engine) hostPutLazyMapEntry(args Value) (Value, error) {
	mid := args.Tuple[0].Mid
	key := valueBytes(args.Tuple[1])
	val := valueBytes(args.Tuple[2])
	e.putLazyMapEntry(mid, key, val)
	return Unit(), nil
}

// resourceTypeFromValue decodes the `type` argument of create_resource,
// a Struct{kind u8, granularity u8}.
func resourceTypeFromValue(v Value) ResourceType {
	var rt ResourceType
	for _, f := range v.Fields {
		switch f.Name {
		case "kind":
			rt.Kind = ResourceTypeKind(f.Value.Int.Uint64())
		case "granularity":
			rt.Granularity = uint8(f.Value.Int.Uint64())
		}
	}
	return rt
}

func resourceFlagsFromValue(v Value) ResourceFlags {
	var f ResourceFlags
	for _, fv := range v.Fields {
		switch fv.Name {
		case "allow_mint":
			f.AllowMint = fv.Value.Bool
		case "allow_burn":
			f.AllowBurn = fv.Value.Bool
		case "restricted_transfer":
			f.RestrictedTransfer = fv.Value.Bool
		case "allow_update_mutable_data":
			f.AllowUpdateMutableData = fv.Value.Bool
		case "mint_badge":
			f.MintBadge = fv.Value.Address
		case "burn_badge":
			f.BurnBadge = fv.Value.Address
		case "transfer_badge":
			f.TransferBadge = fv.Value.Address
		case "update_mutable_data_badge":
			f.UpdateMutableDataBadge = fv.Value.Address
		}
	}
	return f
}

func (e *Engine) hostCreateResource(args Value) (Value, error) {
	rt := resourceTypeFromValue(args.Tuple[0])
	metadata := make(map[string]string)
	for _, entry := range args.Tuple[1].Map {
		metadata[entry.Key.Str] = entry.Value.Str
	}
	flags := resourceFlagsFromValue(args.Tuple[2])
	initial := args.Tuple[3] // Option<Decimal>

	nonce := e.nextAddressNonce()
	receipt := crypto.Keccak256(e.txHash[:], beBytes32(uint32(nonce)))
	var receiptHash Hash
	copy(receiptHash[:], receipt)
	addr := NewResourceDefAddress(receiptHash)

	rd := &ResourceDef{Addr: addr, Type: rt, Metadata: metadata, Flags: flags, TotalSupply: ZeroDecimal()}

	var bucketVal Value
	if initial.Kind == KindOption && initial.Inner != nil {
		amount := initial.Inner.Decimal
		bucket, err := rd.Mint(amount, nil)
		if err != nil {
			return Value{}, err
		}
		bid := e.freshBid()
		frame, err := e.requireFrame()
		if err != nil {
			return Value{}, err
		}
		frame.PutBucket(bid, bucket)
		v := Value{Kind: KindBid, Bid: bid}
		bucketVal = Value{Kind: KindOption, Inner: &v}
	} else {
		bucketVal = Value{Kind: KindOption, Inner: nil}
	}

	e.putResourceDef(rd)
	e.recordNewEntity(addr)
	return TupleValue(AddressValue(addr), bucketVal), nil
}

func (e *Engine) resolveAuthRef(auth Value) (*LockedBucket, error) {
	if auth.Kind != KindOption || auth.Inner == nil {
		return nil, nil
	}
	rid := auth.Inner.Rid
	frame, err := e.requireFrame()
	if err != nil {
		return nil, err
	}
	ref, ok := frame.Refs[rid]
	if !ok {
		return nil, newErr(ErrBucketRefNotFound, "bucket-ref %s not found", rid)
	}
	return ref, nil
}

func (e *Engine) hostMintResource(args Value) (Value, error) {
	def := args.Tuple[0].Address
	amount := args.Tuple[1].Decimal
	authRef, err := e.resolveAuthRef(args.Tuple[2])
	if err != nil {
		return Value{}, err
	}
	rd, ok, err := e.getResourceDef(def)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newErr(ErrResourceDefNotFound, "resource-def %s not found", def)
	}
	bucket, mErr := rd.Mint(amount, authRef)
	if mErr != nil {
		return Value{}, mErr
	}
	e.putResourceDef(rd)
	frame, err := e.requireFrame()
	if err != nil {
		return Value{}, err
	}
	bid := e.freshBid()
	frame.PutBucket(bid, bucket)
	return Value{Kind: KindBid, Bid: bid}, nil
}

func (e *Engine) hostBurnResource(args Value) (Value, error) {
	bid := args.Tuple[0].Bid
	authRef, err := e.resolveAuthRef(args.Tuple[1])
	if err != nil {
		return Value{}, err
	}
	frame, err := e.requireFrame()
	if err != nil {
		return Value{}, err
	}
	bucket, ok := frame.TakeBucket(bid)
	if !ok {
		return Value{}, newErr(ErrBucketNotFound, "bucket %s not found", bid)
	}
	rd, ok, err := e.getResourceDef(bucket.ResourceDef)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newErr(ErrResourceDefNotFound, "resource-def %s not found", bucket.ResourceDef)
	}
	if bErr := rd.Burn(bucket, authRef); bErr != nil {
		frame.PutBucket(bid, bucket)
		return Value{}, bErr
	}
	e.putResourceDef(rd)
	return Unit(), nil
}

func (e *Engine) hostCreateVault(args Value) (Value, error) {
	def := args.Tuple[0].Address
	rd, ok, err := e.getResourceDef(def)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newErr(ErrResourceDefNotFound, "resource-def %s not found", def)
	}
	vid, err := e.freshVid()
	if err != nil {
		return Value{}, err
	}
	e.putVault(NewVault(vid, def, rd.Type))
	return Value{Kind: KindVid, Vid: vid}, nil
}

func (e *Engine) hostPutIntoVault(args Value) (Value, error) {
	vid := args.Tuple[0].Vid
	bid := args.Tuple[1].Bid
	frame, err := e.requireFrame()
	if err != nil {
		return Value{}, err
	}
	bucket, ok := frame.TakeBucket(bid)
	if !ok {
		return Value{}, newErr(ErrBucketNotFound, "bucket %s not found", bid)
	}
	vault, ok, err := e.getVault(vid)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		frame.PutBucket(bid, bucket)
		return Value{}, newErr(ErrVaultNotFound, "vault %s not found", vid)
	}
	if pErr := vault.Put(bucket); pErr != nil {
		frame.PutBucket(bid, bucket)
		return Value{}, pErr
	}
	e.putVault(vault)
	return Unit(), nil
}

func (e *Engine) hostTakeFromVault(args Value) (Value, error) {
	vid := args.Tuple[0].Vid
	amount := args.Tuple[1].Decimal
	authRef, err := e.resolveAuthRef(args.Tuple[2])
	if err != nil {
		return Value{}, err
	}
	vault, ok, err := e.getVault(vid)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newErr(ErrVaultNotFound, "vault %s not found", vid)
	}
	rd, ok, err := e.getResourceDef(vault.ResourceDef)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newErr(ErrResourceDefNotFound, "resource-def %s not found", vault.ResourceDef)
	}
	bucket, tErr := vault.Take(amount, rd, authRef)
	if tErr != nil {
		return Value{}, tErr
	}
	e.putVault(vault)
	frame, err := e.requireFrame()
	if err != nil {
		return Value{}, err
	}
	bid := e.freshBid()
	frame.PutBucket(bid, bucket)
	return Value{Kind: KindBid, Bid: bid}, nil
}

func (e *Engine) hostTakeNftFromVault(args Value) (Value, error) {
	vid := args.Tuple[0].Vid
	id, err := nftIdFromValue(args.Tuple[1])
	if err != nil {
		return Value{}, err
	}
	authRef, err := e.resolveAuthRef(args.Tuple[2])
	if err != nil {
		return Value{}, err
	}
	vault, ok, err := e.getVault(vid)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newErr(ErrVaultNotFound, "vault %s not found", vid)
	}
	rd, ok, err := e.getResourceDef(vault.ResourceDef)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newErr(ErrResourceDefNotFound, "resource-def %s not found", vault.ResourceDef)
	}
	bucket, tErr := vault.TakeNft(id, rd, authRef)
	if tErr != nil {
		return Value{}, tErr
	}
	e.putVault(vault)
	frame, err := e.requireFrame()
	if err != nil {
		return Value{}, err
	}
	bid := e.freshBid()
	frame.PutBucket(bid, bucket)
	return Value{Kind: KindBid, Bid: bid}, nil
}

func (e *Engine) hostCreateBucket(args Value) (Value, error) {
	def := args.Tuple[0].Address
	rd, ok, err := e.getResourceDef(def)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newErr(ErrResourceDefNotFound, "resource-def %s not found", def)
	}
	frame, err := e.requireFrame()
	if err != nil {
		return Value{}, err
	}
	bid := e.freshBid()
	frame.PutBucket(bid, NewFungibleBucket(def, rd.Type, ZeroDecimal()))
	return Value{Kind: KindBid, Bid: bid}, nil
}

func (e *Engine) hostPutIntoBucket(args Value) (Value, error) {
	dst := args.Tuple[0].Bid
	src := args.Tuple[1].Bid
	frame, err := e.requireFrame()
	if err != nil {
		return Value{}, err
	}
	srcBucket, ok := frame.TakeBucket(src)
	if !ok {
		return Value{}, newErr(ErrBucketNotFound, "bucket %s not found", src)
	}
	dstBucket, ok := frame.Buckets[dst]
	if !ok {
		frame.PutBucket(src, srcBucket)
		return Value{}, newErr(ErrBucketNotFound, "bucket %s not found", dst)
	}
	if pErr := dstBucket.Put(srcBucket); pErr != nil {
		frame.PutBucket(src, srcBucket)
		return Value{}, pErr
	}
	return Unit(), nil
}

func (e *Engine) hostTakeFromBucket(args Value) (Value, error) {
	bid := args.Tuple[0].Bid
	amount := args.Tuple[1].Decimal
	frame, err := e.requireFrame()
	if err != nil {
		return Value{}, err
	}
	bucket, ok := frame.Buckets[bid]
	if !ok {
		return Value{}, newErr(ErrBucketNotFound, "bucket %s not found", bid)
	}
	out, tErr := bucket.Take(amount)
	if tErr != nil {
		return Value{}, tErr
	}
	newBid := e.freshBid()
	frame.PutBucket(newBid, out)
	return Value{Kind: KindBid, Bid: newBid}, nil
}

func (e *Engine) hostCreateBucketRef(args Value) (Value, error) {
	bid := args.Tuple[0].Bid
	frame, err := e.requireFrame()
	if err != nil {
		return Value{}, err
	}
	bucket, ok := frame.Buckets[bid]
	if !ok {
		return Value{}, newErr(ErrBucketNotFound, "bucket %s not found", bid)
	}
	if bucket.IsEmpty() {
		return Value{}, newErr(ErrEmptyBucketRef, "cannot reference empty bucket %s", bid)
	}
	count := 1
	rid := e.freshRid()
	frame.PutRef(rid, &LockedBucket{BucketID: bid, Bucket: bucket, RefCount: &count})
	return Value{Kind: KindRid, Rid: rid}, nil
}

func (e *Engine) hostDropBucketRef(args Value) (Value, error) {
	rid := args.Tuple[0].Rid
	frame, err := e.requireFrame()
	if err != nil {
		return Value{}, err
	}
	ref, ok := frame.TakeRef(rid)
	if !ok {
		return Value{}, newErr(ErrBucketRefNotFound, "bucket-ref %s not found", rid)
	}
	if ref.RefCount != nil {
		*ref.RefCount--
	}
	return Unit(), nil
}

func (e *Engine) hostGetBucketRefAmount(args Value) (Value, error) {
	rid := args.Tuple[0].Rid
	frame, err := e.requireFrame()
	if err != nil {
		return Value{}, err
	}
	ref, ok := frame.Refs[rid]
	if !ok {
		return Value{}, newErr(ErrBucketRefNotFound, "bucket-ref %s not found", rid)
	}
	return DecimalValue(ref.Amount()), nil
}

func (e *Engine) hostGetNftData(args Value) (Value, error) {
	def := args.Tuple[0].Address
	id, err := nftIdFromValue(args.Tuple[1])
	if err != nil {
		return Value{}, err
	}
	n, ok, err := e.getNft(def, id)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newErr(ErrNftNotFound, "nft %s of %s not found", id, def)
	}
	return Value{Kind: KindStruct, Fields: []NamedValue{
		{Name: "immutable", Value: bytesValue(n.Immutable)},
		{Name: "mutable", Value: bytesValue(n.Mutable)},
	}}, nil
}

func (e *Engine) hostUpdateNftMutableData(args Value) (Value, error) {
	def := args.Tuple[0].Address
	id, err := nftIdFromValue(args.Tuple[1])
	if err != nil {
		return Value{}, err
	}
	data := valueBytes(args.Tuple[2])
	authRef, err := e.resolveAuthRef(args.Tuple[3])
	if err != nil {
		return Value{}, err
	}
	rd, ok, err := e.getResourceDef(def)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newErr(ErrResourceDefNotFound, "resource-def %s not found", def)
	}
	if !rd.Flags.AllowUpdateMutableData || !badgePresented(authRef, rd.Flags.UpdateMutableDataBadge) {
		return Value{}, newErr(ErrUnauthorized, "update-mutable-data requires badge %s", rd.Flags.UpdateMutableDataBadge)
	}
	n, ok, err := e.getNft(def, id)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newErr(ErrNftNotFound, "nft %s of %s not found", id, def)
	}
	n.SetMutableData(data)
	e.putNft(def, n)
	return Unit(), nil
}

func (e *Engine) hostEmitLog(args Value) (Value, error) {
	level := args.Tuple[0].Str
	message := args.Tuple[1].Str
	if !allowedLogLevels[level] {
		return Value{}, newErr(ErrInvalidLogLevel, "unknown log level %q", level)
	}
	e.logs = append(e.logs, LogEntry{Level: level, Message: message})
	return Unit(), nil
}

func (e *Engine) hostTransactionSigners(args Value) (Value, error) {
	elems := make([]Value, 0, len(e.signers))
	for _, s := range e.signers {
		elems = append(elems, AddressValue(s))
	}
	return Value{Kind: KindVec, ElemKind: KindAddress, Elements: elems}, nil
}

func (e *Engine) hostTransactionHash(args Value) (Value, error) {
	return bytesValue(e.txHash[:]), nil
}
