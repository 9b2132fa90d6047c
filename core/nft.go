package core

// Nft is a piece of data uniquely identified within a resource
// (spec.md §3, glossary). NFT ids are stored both in their parent vault's
// entry list (NftEntry, see resource_def.go) and in the nft/* substate
// namespace for direct data lookup, mirroring spec.md §6 "Persisted state
// layout".
type Nft struct {
	Id        NftId
	Immutable []byte
	Mutable   []byte
}

// SetMutableData replaces the NFT's mutable field.
func (n *Nft) SetMutableData(data []byte) { n.Mutable = data }
