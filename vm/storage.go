package vm

import "github.com/tos-network/minichain/common"

// StorageBackend is the capability interface the VM uses to reach
// persistent contract storage without coupling to a concrete store.
// The blockchain layer supplies an adapter over state.Manager scoped
// to one contract's storage namespace; tests may pass nil, in which
// case the VM treats every slot as zero and discards writes.
type StorageBackend interface {
	Sload(key common.Hash) (common.Hash, error)
	Sstore(key, value common.Hash) error
}

type nullStorage struct{}

func (nullStorage) Sload(common.Hash) (common.Hash, error) { return common.Hash{}, nil }
func (nullStorage) Sstore(common.Hash, common.Hash) error  { return nil }
