// Package common holds the fixed-size value types shared by every
// minichain package: Hash, Address, and Signature. Modeled on the
// common.Hash / common.Address types the teacher repo passes by value
// throughout core, consensus, and state — rebuilt here from their call
// sites since the package itself wasn't part of the retrieval pack.
package common

import (
	"encoding/hex"
	"fmt"
)

const (
	HashLength      = 32
	AddressLength   = 20
	SignatureLength = 64
)

// Hash is a 32-byte value, typically the output of crypto.Hash256.
type Hash [HashLength]byte

// ZeroHash is the distinguished empty hash.
var ZeroHash = Hash{}

// BytesToHash left-pads b into a Hash, or, if b is longer than
// HashLength, keeps its last HashLength bytes (cropping from the left).
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

func (h Hash) Bytes() []byte   { return h[:] }
func (h Hash) IsZero() bool    { return h == ZeroHash }
func (h Hash) Hex() string     { return "0x" + hex.EncodeToString(h[:]) }
func (h Hash) String() string  { return h.Hex() }
func (h Hash) ShortHex() string {
	s := h.Hex()
	if len(s) <= 10 {
		return s
	}
	return s[:10]
}

// HashFromHex parses a 0x-prefixed or bare hex string into a Hash.
func HashFromHex(s string) (Hash, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Hash{}, err
	}
	if len(b) != HashLength {
		return Hash{}, fmt.Errorf("common: invalid hash length: have %d want %d", len(b), HashLength)
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// Address is a 20-byte identifier derived from the hash of an Ed25519
// public key (see crypto.PubkeyToAddress).
type Address [AddressLength]byte

// ZeroAddress is the distinguished empty address. It is a valid,
// distinct value from "absent" — callers must not conflate the two.
var ZeroAddress = Address{}

func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

func (a Address) Bytes() []byte  { return a[:] }
func (a Address) IsZero() bool   { return a == ZeroAddress }
func (a Address) Hex() string    { return "0x" + hex.EncodeToString(a[:]) }
func (a Address) String() string { return a.Hex() }

func AddressFromHex(s string) (Address, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Address{}, err
	}
	if len(b) != AddressLength {
		return Address{}, fmt.Errorf("common: invalid address length: have %d want %d", len(b), AddressLength)
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// Signature is a 64-byte Ed25519 signature. The zero value is "no
// signature attached" (e.g. an unsigned proposed block).
type Signature [SignatureLength]byte

func (s Signature) Bytes() []byte { return s[:] }
func (s Signature) IsZero() bool  { return s == Signature{} }
func (s Signature) Hex() string   { return "0x" + hex.EncodeToString(s[:]) }

func decodeHex(s string) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return hex.DecodeString(s)
}
