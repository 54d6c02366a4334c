package state

import (
	"bytes"
	"sort"

	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/crypto"
	"github.com/tos-network/minichain/log"
	"github.com/tos-network/minichain/merkle"
	"github.com/tos-network/minichain/store"
)

var logger = log.New("state")

// Manager is the account and contract-storage layer over a store.KV.
// The store is owned outside Manager and passed in by reference; the
// Manager holds no long-lived handle beyond it.
type Manager struct {
	kv    store.KV
	batch store.Batch // non-nil while a batch is open; see BeginBatch/Commit
}

// New wraps kv in a Manager.
func New(kv store.KV) *Manager {
	return &Manager{kv: kv}
}

// BeginBatch opens a pending batch: subsequent mutations queue instead
// of writing immediately. Call Commit to flush them atomically.
func (m *Manager) BeginBatch() {
	m.batch = m.kv.NewBatch()
}

// Commit flushes the pending batch (if any) in a single atomic write.
func (m *Manager) Commit() error {
	if m.batch == nil {
		return nil
	}
	b := m.batch
	m.batch = nil
	if b.Len() == 0 {
		return nil
	}
	return b.Write()
}

func (m *Manager) put(key, value []byte) error {
	if m.batch != nil {
		m.batch.Put(key, value)
		return nil
	}
	return m.kv.Put(key, value)
}

// GetAccount returns the account at addr, or a zero-default account if
// the address has never been written to.
func (m *Manager) GetAccount(addr common.Address) (Account, error) {
	raw, err := m.kv.Get(accountKey(addr))
	if err == store.ErrNotFound {
		return Account{}, nil
	}
	if err != nil {
		return Account{}, err
	}
	var a Account
	if err := a.UnmarshalBinary(raw); err != nil {
		return Account{}, err
	}
	return a, nil
}

// PutAccount writes acct at addr, materializing the address.
func (m *Manager) PutAccount(addr common.Address, acct Account) error {
	return m.put(accountKey(addr), acct.MarshalBinary())
}

// GetNonce returns the account's current nonce.
func (m *Manager) GetNonce(addr common.Address) (uint64, error) {
	a, err := m.GetAccount(addr)
	if err != nil {
		return 0, err
	}
	return a.Nonce, nil
}

// IncrementNonce bumps addr's nonce by one.
func (m *Manager) IncrementNonce(addr common.Address) error {
	a, err := m.GetAccount(addr)
	if err != nil {
		return err
	}
	a.Nonce++
	return m.PutAccount(addr, a)
}

// SetBalance overwrites addr's balance.
func (m *Manager) SetBalance(addr common.Address, balance uint64) error {
	a, err := m.GetAccount(addr)
	if err != nil {
		return err
	}
	a.Balance = balance
	return m.PutAccount(addr, a)
}

// AddBalance credits addr by amount.
func (m *Manager) AddBalance(addr common.Address, amount uint64) error {
	a, err := m.GetAccount(addr)
	if err != nil {
		return err
	}
	a.Balance += amount
	return m.PutAccount(addr, a)
}

// SubBalance debits addr by amount, failing if the balance would
// underflow.
func (m *Manager) SubBalance(addr common.Address, amount uint64) error {
	a, err := m.GetAccount(addr)
	if err != nil {
		return err
	}
	if a.Balance < amount {
		return &ErrInsufficientBalance{Address: addr, Required: amount, Available: a.Balance}
	}
	a.Balance -= amount
	return m.PutAccount(addr, a)
}

// Transfer debits from then credits to. The debit happens first so a
// failure there aborts before any credit is applied; it is not atomic
// against a concurrent failure elsewhere, so callers must not assume
// more than this ordering.
func (m *Manager) Transfer(from, to common.Address, amount uint64) error {
	if err := m.SubBalance(from, amount); err != nil {
		return err
	}
	return m.AddBalance(to, amount)
}

// PutCode stores bytecode keyed by its hash.
func (m *Manager) PutCode(codeHash common.Hash, code []byte) error {
	return m.put(codeKey(codeHash), code)
}

// GetCode loads bytecode by hash.
func (m *Manager) GetCode(codeHash common.Hash) ([]byte, error) {
	v, err := m.kv.Get(codeKey(codeHash))
	if err == store.ErrNotFound {
		return nil, nil
	}
	return v, err
}

// DeployContract writes code under its hash and materializes a contract
// account at addr with the given balance and the code hash attached.
func (m *Manager) DeployContract(addr common.Address, code []byte, balance uint64) (common.Hash, error) {
	codeHash := crypto.Hash256(code)
	if err := m.PutCode(codeHash, code); err != nil {
		return common.Hash{}, err
	}
	acct := Account{Nonce: 0, Balance: balance, CodeHash: &codeHash}
	if err := m.PutAccount(addr, acct); err != nil {
		return common.Hash{}, err
	}
	return codeHash, nil
}

// StorageGet reads a raw contract storage value. Uninitialized keys
// return (nil, nil).
func (m *Manager) StorageGet(contract common.Address, key []byte) ([]byte, error) {
	v, err := m.kv.Get(storageKey(contract, key))
	if err == store.ErrNotFound {
		return nil, nil
	}
	return v, err
}

// StoragePut writes a raw contract storage value.
func (m *Manager) StoragePut(contract common.Address, key, value []byte) error {
	return m.put(storageKey(contract, key), value)
}

// StorageDelete removes a contract storage value.
func (m *Manager) StorageDelete(contract common.Address, key []byte) error {
	if m.batch != nil {
		m.batch.Delete(storageKey(contract, key))
		return nil
	}
	return m.kv.Delete(storageKey(contract, key))
}

// SLoad is the 32-byte-slot wrapper over StorageGet the VM's storage
// backend uses. Uninitialized slots read as all zeros.
func (m *Manager) SLoad(contract common.Address, slot common.Hash) (common.Hash, error) {
	v, err := m.StorageGet(contract, slot[:])
	if err != nil {
		return common.Hash{}, err
	}
	if v == nil {
		return common.Hash{}, nil
	}
	if len(v) != common.HashLength {
		return common.Hash{}, ErrInvalidStorageValue
	}
	return common.BytesToHash(v), nil
}

// SStore is the 32-byte-slot wrapper over StoragePut.
func (m *Manager) SStore(contract common.Address, slot, value common.Hash) error {
	return m.StoragePut(contract, slot[:], value[:])
}

// ComputeStateRoot hashes (key||value) for every account record, sorts
// the resulting hashes, and merkle-roots them. This is the toy
// linear-state-root substitute for a real trie spec.md calls for; it
// is deterministic across iteration order by construction (the sort).
func (m *Manager) ComputeStateRoot() (common.Hash, error) {
	it := m.kv.Iterator(accountPrefix)
	defer it.Release()

	var hashes []common.Hash
	for it.Next() {
		key := append([]byte(nil), it.Key()...)
		value := append([]byte(nil), it.Value()...)
		hashes = append(hashes, crypto.Hash256(key, value))
	}
	if err := it.Error(); err != nil {
		return common.Hash{}, err
	}
	sort.Slice(hashes, func(i, j int) bool {
		return bytes.Compare(hashes[i][:], hashes[j][:]) < 0
	})
	return merkle.Root(hashes), nil
}
