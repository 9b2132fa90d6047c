package core

import (
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressKind tags an Address with the entity kind it names.
type AddressKind byte

const (
	AddressKindPackage     AddressKind = 0x00
	AddressKindComponent   AddressKind = 0x01
	AddressKindResourceDef AddressKind = 0x03
)

func (k AddressKind) hrp() string {
	switch k {
	case AddressKindPackage:
		return "pkg"
	case AddressKindComponent:
		return "cmp"
	case AddressKindResourceDef:
		return "rsrc"
	default:
		return "unk"
	}
}

// Address is a 27-byte tagged identifier: one kind byte followed by a
// 26-byte truncated hash. Construction is deterministic (spec.md §3):
// packages from publisher key + nonce, components from instantiating
// package + blueprint + frame nonce, resource-defs from the mint receipt.
type Address [27]byte

// Hash is a 32-byte cryptographic digest, used for transaction hashes,
// code hashes and mint-receipt hashes.
type Hash [32]byte

func (h Hash) Bytes() []byte { return h[:] }

func addressFromDigest(kind AddressKind, digest []byte) Address {
	var a Address
	a[0] = byte(kind)
	copy(a[1:], digest[:26])
	return a
}

// NewPackageAddress derives a package address from the publisher's public
// key and the nonce supplied at publish time.
func NewPackageAddress(publisherPubKey []byte, nonce uint64) Address {
	buf := append(append([]byte{}, publisherPubKey...), uint64ToBytes(nonce)...)
	digest := crypto.Keccak256(buf)
	return addressFromDigest(AddressKindPackage, digest)
}

// NewComponentAddress derives a component address from the instantiating
// package, the blueprint name, and a per-frame nonce (so that two
// `create_component` calls within the same frame never collide).
func NewComponentAddress(pkg Address, blueprint string, frameNonce uint64) Address {
	buf := append(append([]byte{}, pkg[:]...), []byte(blueprint)...)
	buf = append(buf, uint64ToBytes(frameNonce)...)
	digest := crypto.Keccak256(buf)
	return addressFromDigest(AddressKindComponent, digest)
}

// NewResourceDefAddress derives a resource-definition address from the
// mint-receipt hash produced by `create_resource`.
func NewResourceDefAddress(mintReceipt Hash) Address {
	digest := crypto.Keccak256(mintReceipt[:])
	return addressFromDigest(AddressKindResourceDef, digest)
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * (7 - i)))
	}
	return b
}

// Kind reports the tagged entity kind for this address.
func (a Address) Kind() AddressKind { return AddressKind(a[0]) }

// Bytes returns the raw 27-byte address.
func (a Address) Bytes() []byte { return a[:] }

// IsZero reports whether the address is the zero value (used as an
// "absent" sentinel for optional badge addresses).
func (a Address) IsZero() bool { return a == Address{} }

// String renders the address in its Bech32-like textual form, HRP chosen
// by entity kind (spec.md §6).
func (a Address) String() string {
	converted, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return fmt.Sprintf("invalid-address-%x", a[:])
	}
	s, err := bech32.Encode(a.Kind().hrp(), converted)
	if err != nil {
		return fmt.Sprintf("invalid-address-%x", a[:])
	}
	return s
}

// ParseAddress decodes the Bech32-like textual form produced by String.
func ParseAddress(s string) (Address, error) {
	var out Address
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return out, newErr(ErrInvalidComponentAddress, "bech32 decode %q: %v", s, err)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil || len(raw) != 27 {
		return out, newErr(ErrInvalidComponentAddress, "bad address payload in %q", s)
	}
	copy(out[:], raw)
	switch hrp {
	case "pkg":
		if out.Kind() != AddressKindPackage {
			return out, newErr(ErrInvalidPackageAddress, "hrp/kind mismatch in %q", s)
		}
	case "cmp":
		if out.Kind() != AddressKindComponent {
			return out, newErr(ErrInvalidComponentAddress, "hrp/kind mismatch in %q", s)
		}
	case "rsrc":
		if out.Kind() != AddressKindResourceDef {
			return out, newErr(ErrInvalidResourceDefAddress, "hrp/kind mismatch in %q", s)
		}
	default:
		return out, newErr(ErrInvalidComponentAddress, "unknown address HRP %q", hrp)
	}
	return out, nil
}
