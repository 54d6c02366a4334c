// Package state implements the account and contract-storage layer:
// accounts keyed by address, code keyed by hash, and 32-byte contract
// storage slots, all persisted through store.KV under the prefixed
// keyspace spec.md §3 defines. Grounded on the teacher's
// core/types/state_account.go for the account record shape and on
// validator/state.go for the address||separator||field storage-slot
// hashing pattern, adapted here to plain prefixed keys instead of
// trie-hashed slots.
package state

import (
	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/store"
)

// Account is the consensus representation of an address: an externally
// owned account when CodeHash is nil, a contract when it is set.
type Account struct {
	Nonce       uint64
	Balance     uint64
	CodeHash    *common.Hash
	StorageRoot common.Hash
}

// IsContract reports whether this account has deployed code.
func (a *Account) IsContract() bool { return a.CodeHash != nil }

func (a *Account) MarshalBinary() []byte {
	w := store.NewWriter()
	w.WriteUint64(a.Nonce)
	w.WriteUint64(a.Balance)
	w.WriteOptionalHash(a.CodeHash)
	w.WriteHash(a.StorageRoot)
	return w.Bytes()
}

func (a *Account) UnmarshalBinary(b []byte) error {
	r := store.NewReader(b)
	var err error
	if a.Nonce, err = r.ReadUint64(); err != nil {
		return err
	}
	if a.Balance, err = r.ReadUint64(); err != nil {
		return err
	}
	if a.CodeHash, err = r.ReadOptionalHash(); err != nil {
		return err
	}
	if a.StorageRoot, err = r.ReadHash(); err != nil {
		return err
	}
	return nil
}
