package core

import "math/big"

// This file implements the persistent-entity (de)serialisation and the
// host-call handlers Dispatch (host_abi.go) switches on. Every substate is
// round-tripped through the same Value/SBOR codec used at the sandbox
// boundary (design note 9: "codec is a pair of total functions"), so a
// substate read is just Decode(track.Get(key)) and a write is
// track.Set(key, Encode(value)).

func bytesValue(b []byte) Value { return Value{Kind: KindString, Str: string(b)} }
func valueBytes(v Value) []byte { return []byte(v.Str) }

func nftIdValue(id NftId) Value {
	return Value{Kind: KindU128, Int: new(big.Int).SetBytes(id[:])}
}

func nftIdFromValue(v Value) (NftId, error) {
	if v.Kind != KindU128 {
		return NftId{}, newErr(ErrInvalidRequestData, "expected u128 nft id")
	}
	var id NftId
	b := v.Int.Bytes()
	if len(b) > 16 {
		return NftId{}, newErr(ErrInvalidRequestData, "nft id overflow")
	}
	copy(id[16-len(b):], b)
	return id, nil
}

// --- PackageEntity ---

func packageToValue(p *PackageEntity) Value {
	exports := make([]MapEntry, 0, len(p.Exports))
	for k := range p.Exports {
		exports = append(exports, MapEntry{Key: Value{Kind: KindString, Str: k}, Value: Value{Kind: KindBool, Bool: true}})
	}
	return Value{Kind: KindStruct, Fields: []NamedValue{
		{Name: "code", Value: bytesValue(p.Code)},
		{Name: "exports", Value: Value{Kind: KindMap, MapKeyKind: KindString, MapValKind: KindBool, Map: exports}},
	}}
}

func valueToPackage(addr Address, v Value) *PackageEntity {
	p := &PackageEntity{Addr: addr, Exports: make(map[string]bool)}
	for _, f := range v.Fields {
		switch f.Name {
		case "code":
			p.Code = valueBytes(f.Value)
		case "exports":
			for _, e := range f.Value.Map {
				p.Exports[e.Key.Str] = e.Value.Bool
			}
		}
	}
	return p
}

func (e *Engine) getPackage(addr Address) (*PackageEntity, bool, error) {
	raw, ok, err := e.track.Get(keyPackage(addr))
	if err != nil || !ok {
		return nil, ok, err
	}
	v, err := DecodeFull(raw)
	if err != nil {
		return nil, false, err
	}
	return valueToPackage(addr, v), true, nil
}

func (e *Engine) putPackage(p *PackageEntity) {
	e.track.Set(keyPackage(p.Addr), Encode(packageToValue(p)))
}

// loadPackage fetches a package substate, failing PackageNotFound if it is
// absent; compiledModuleFor compiles and caches its code.
func (e *Engine) loadPackage(addr Address) (*PackageEntity, error) {
	p, ok, err := e.getPackage(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(ErrPackageNotFound, "package %s not found", addr)
	}
	return p, nil
}

func (e *Engine) compiledModuleFor(p *PackageEntity) (*CompiledModule, error) {
	if m, ok := e.packageCache[p.Addr]; ok {
		return m, nil
	}
	m, err := CompileModule(p.Code)
	if err != nil {
		return nil, err
	}
	e.packageCache[p.Addr] = m
	return m, nil
}

// --- Component ---

func componentToValue(c *Component) Value {
	return Value{Kind: KindStruct, Fields: []NamedValue{
		{Name: "blueprint", Value: AddressValue(c.Blueprint)},
		{Name: "blueprint_name", Value: StringValue(c.BlueprintName)},
		{Name: "state", Value: bytesValue(c.State)},
	}}
}

func valueToComponent(addr Address, v Value) *Component {
	c := &Component{Addr: addr}
	for _, f := range v.Fields {
		switch f.Name {
		case "blueprint":
			c.Blueprint = f.Value.Address
		case "blueprint_name":
			c.BlueprintName = f.Value.Str
		case "state":
			c.State = valueBytes(f.Value)
		}
	}
	return c
}

func (e *Engine) getComponent(addr Address) (*Component, bool, error) {
	raw, ok, err := e.track.Get(keyComponent(addr))
	if err != nil || !ok {
		return nil, ok, err
	}
	v, err := DecodeFull(raw)
	if err != nil {
		return nil, false, err
	}
	return valueToComponent(addr, v), true, nil
}

func (e *Engine) putComponent(c *Component) {
	e.track.Set(keyComponent(c.Addr), Encode(componentToValue(c)))
}

// --- ResourceDef ---

func resourceDefToValue(rd *ResourceDef) Value {
	meta := make([]MapEntry, 0, len(rd.Metadata))
	for k, v := range rd.Metadata {
		meta = append(meta, MapEntry{Key: StringValue(k), Value: StringValue(v)})
	}
	return Value{Kind: KindStruct, Fields: []NamedValue{
		{Name: "type_kind", Value: Value{Kind: KindU8, Int: big.NewInt(int64(rd.Type.Kind))}},
		{Name: "granularity", Value: Value{Kind: KindU8, Int: big.NewInt(int64(rd.Type.Granularity))}},
		{Name: "metadata", Value: Value{Kind: KindMap, MapKeyKind: KindString, MapValKind: KindString, Map: meta}},
		{Name: "total_supply", Value: DecimalValue(rd.TotalSupply)},
		{Name: "allow_mint", Value: Value{Kind: KindBool, Bool: rd.Flags.AllowMint}},
		{Name: "allow_burn", Value: Value{Kind: KindBool, Bool: rd.Flags.AllowBurn}},
		{Name: "restricted_transfer", Value: Value{Kind: KindBool, Bool: rd.Flags.RestrictedTransfer}},
		{Name: "allow_update_mutable_data", Value: Value{Kind: KindBool, Bool: rd.Flags.AllowUpdateMutableData}},
		{Name: "mint_badge", Value: AddressValue(rd.Flags.MintBadge)},
		{Name: "burn_badge", Value: AddressValue(rd.Flags.BurnBadge)},
		{Name: "transfer_badge", Value: AddressValue(rd.Flags.TransferBadge)},
		{Name: "update_mutable_data_badge", Value: AddressValue(rd.Flags.UpdateMutableDataBadge)},
	}}
}

func valueToResourceDef(addr Address, v Value) *ResourceDef {
	rd := &ResourceDef{Addr: addr, Metadata: make(map[string]string)}
	for _, f := range v.Fields {
		switch f.Name {
		case "type_kind":
			rd.Type.Kind = ResourceTypeKind(f.Value.Int.Uint64())
		case "granularity":
			rd.Type.Granularity = uint8(f.Value.Int.Uint64())
		case "metadata":
			for _, e := range f.Value.Map {
				rd.Metadata[e.Key.Str] = e.Value.Str
			}
		case "total_supply":
			rd.TotalSupply = f.Value.Decimal
		case "allow_mint":
			rd.Flags.AllowMint = f.Value.Bool
		case "allow_burn":
			rd.Flags.AllowBurn = f.Value.Bool
		case "restricted_transfer":
			rd.Flags.RestrictedTransfer = f.Value.Bool
		case "allow_update_mutable_data":
			rd.Flags.AllowUpdateMutableData = f.Value.Bool
		case "mint_badge":
			rd.Flags.MintBadge = f.Value.Address
		case "burn_badge":
			rd.Flags.BurnBadge = f.Value.Address
		case "transfer_badge":
			rd.Flags.TransferBadge = f.Value.Address
		case "update_mutable_data_badge":
			rd.Flags.UpdateMutableDataBadge = f.Value.Address
		}
	}
	return rd
}

func (e *Engine) getResourceDef(addr Address) (*ResourceDef, bool, error) {
	raw, ok, err := e.track.Get(keyResourceDef(addr))
	if err != nil || !ok {
		return nil, ok, err
	}
	v, err := DecodeFull(raw)
	if err != nil {
		return nil, false, err
	}
	return valueToResourceDef(addr, v), true, nil
}

func (e *Engine) putResourceDef(rd *ResourceDef) {
	e.track.Set(keyResourceDef(rd.Addr), Encode(resourceDefToValue(rd)))
}

// --- Vault ---

func resourceSupplyToValue(s ResourceSupply) Value {
	entries := make([]Value, 0, len(s.Entries))
	for _, ent := range s.Entries {
		entries = append(entries, Value{Kind: KindStruct, Fields: []NamedValue{
			{Name: "id", Value: nftIdValue(ent.Id)},
			{Name: "immutable", Value: bytesValue(ent.Immutable)},
			{Name: "mutable", Value: bytesValue(ent.Mutable)},
		}})
	}
	return Value{Kind: KindStruct, Fields: []NamedValue{
		{Name: "kind", Value: Value{Kind: KindU8, Int: big.NewInt(int64(s.Kind))}},
		{Name: "amount", Value: DecimalValue(s.Amount)},
		{Name: "entries", Value: Value{Kind: KindVec, ElemKind: KindStruct, Elements: entries}},
	}}
}

func valueToResourceSupply(v Value) ResourceSupply {
	var s ResourceSupply
	for _, f := range v.Fields {
		switch f.Name {
		case "kind":
			s.Kind = ResourceTypeKind(f.Value.Int.Uint64())
		case "amount":
			s.Amount = f.Value.Decimal
		case "entries":
			for _, ev := range f.Value.Elements {
				var ent NftEntry
				for _, ef := range ev.Fields {
					switch ef.Name {
					case "id":
						ent.Id, _ = nftIdFromValue(ef.Value)
					case "immutable":
						ent.Immutable = valueBytes(ef.Value)
					case "mutable":
						ent.Mutable = valueBytes(ef.Value)
					}
				}
				s.Entries = append(s.Entries, ent)
			}
		}
	}
	return s
}

func vaultToValue(v *Vault) Value {
	return Value{Kind: KindStruct, Fields: []NamedValue{
		{Name: "resource_def", Value: AddressValue(v.ResourceDef)},
		{Name: "type_kind", Value: Value{Kind: KindU8, Int: big.NewInt(int64(v.ResourceType.Kind))}},
		{Name: "granularity", Value: Value{Kind: KindU8, Int: big.NewInt(int64(v.ResourceType.Granularity))}},
		{Name: "supply", Value: resourceSupplyToValue(v.Supply)},
	}}
}

func valueToVault(id Vid, v Value) *Vault {
	vault := &Vault{Vid: id}
	for _, f := range v.Fields {
		switch f.Name {
		case "resource_def":
			vault.ResourceDef = f.Value.Address
		case "type_kind":
			vault.ResourceType.Kind = ResourceTypeKind(f.Value.Int.Uint64())
		case "granularity":
			vault.ResourceType.Granularity = uint8(f.Value.Int.Uint64())
		case "supply":
			vault.Supply = valueToResourceSupply(f.Value)
		}
	}
	return vault
}

func (e *Engine) getVault(id Vid) (*Vault, bool, error) {
	raw, ok, err := e.track.Get(keyVault(id))
	if err != nil || !ok {
		return nil, ok, err
	}
	v, err := DecodeFull(raw)
	if err != nil {
		return nil, false, err
	}
	return valueToVault(id, v), true, nil
}

func (e *Engine) putVault(v *Vault) {
	e.track.Set(keyVault(v.Vid), Encode(vaultToValue(v)))
}

// --- Nft ---

func (e *Engine) getNft(resourceAddr Address, id NftId) (*Nft, bool, error) {
	raw, ok, err := e.track.Get(keyNft(resourceAddr, id))
	if err != nil || !ok {
		return nil, ok, err
	}
	v, err := DecodeFull(raw)
	if err != nil {
		return nil, false, err
	}
	n := &Nft{Id: id}
	for _, f := range v.Fields {
		switch f.Name {
		case "immutable":
			n.Immutable = valueBytes(f.Value)
		case "mutable":
			n.Mutable = valueBytes(f.Value)
		}
	}
	return n, true, nil
}

func (e *Engine) putNft(resourceAddr Address, n *Nft) {
	v := Value{Kind: KindStruct, Fields: []NamedValue{
		{Name: "immutable", Value: bytesValue(n.Immutable)},
		{Name: "mutable", Value: bytesValue(n.Mutable)},
	}}
	e.track.Set(keyNft(resourceAddr, n.Id), Encode(v))
}

// --- LazyMap entries ---

func (e *Engine) getLazyMapEntry(mid Mid, key []byte) ([]byte, bool, error) {
	return e.track.Get(keyLazyMapEntry(mid, key))
}

func (e *Engine) putLazyMapEntry(mid Mid, key, val []byte) {
	e.track.Set(keyLazyMapEntry(mid, key), val)
}
