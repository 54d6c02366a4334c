package executor

import (
	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/state"
)

// contractStorage adapts state.Manager's SLoad/SStore to vm.StorageBackend,
// scoped to one contract address. The VM itself never sees a
// state.Manager, mirroring the capability-interface separation the
// teacher's core/vm.StateDB interface draws between the interpreter
// and its backing store.
type contractStorage struct {
	mgr      *state.Manager
	contract common.Address
}

func newContractStorage(mgr *state.Manager, contract common.Address) *contractStorage {
	return &contractStorage{mgr: mgr, contract: contract}
}

func (s *contractStorage) Sload(key common.Hash) (common.Hash, error) {
	return s.mgr.SLoad(s.contract, key)
}

func (s *contractStorage) Sstore(key, value common.Hash) error {
	return s.mgr.SStore(s.contract, key, value)
}
