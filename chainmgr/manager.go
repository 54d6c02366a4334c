// Package chainmgr is the blockchain orchestrator: it wires the block
// store, account state, mempool, validation, PoA consensus, and
// executor together behind one serialized entry point, the way the
// teacher's core/blockchain.go owns the single write path into chain
// data and state. Every mutating call takes the same lock, so proposing
// a block and importing one received from the network can never
// interleave.
package chainmgr

import (
	stded25519 "crypto/ed25519"
	"fmt"
	"sync"

	"github.com/tos-network/minichain/chainstore"
	"github.com/tos-network/minichain/chaintypes"
	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/consensus/poa"
	"github.com/tos-network/minichain/executor"
	"github.com/tos-network/minichain/log"
	"github.com/tos-network/minichain/mempool"
	"github.com/tos-network/minichain/state"
	"github.com/tos-network/minichain/validation"
)

var logger = log.New("chainmgr")

// Manager is the single point of entry for every chain-mutating
// operation: submitting a transaction, proposing a block, and
// importing one.
type Manager struct {
	mu sync.Mutex

	store   *chainstore.Store
	state   *state.Manager
	pool    *mempool.Pool
	exec    *executor.Executor
	authors *poa.Authority

	txValidator    *validation.TransactionValidator
	blockValidator *validation.BlockValidator

	// pubkeys resolves a transaction sender to the public key
	// SubmitTransaction verifies its signature against. Registered up
	// front from genesis configuration; minichain has no on-chain key
	// registry to consult instead.
	pubkeys map[common.Address]stded25519.PublicKey

	maxBlockSize int
}

// Config bundles the pieces needed to construct a Manager.
type Config struct {
	Store        *chainstore.Store
	State        *state.Manager
	Pool         *mempool.Pool
	Authority    *poa.Authority
	Pubkeys      map[common.Address]stded25519.PublicKey
	MaxBlockSize int
}

// New wires a Manager from cfg.
func New(cfg Config) *Manager {
	maxBlockSize := cfg.MaxBlockSize
	if maxBlockSize <= 0 {
		maxBlockSize = 500
	}
	return &Manager{
		store:          cfg.Store,
		state:          cfg.State,
		pool:           cfg.Pool,
		exec:           executor.New(cfg.State),
		authors:        cfg.Authority,
		txValidator:    validation.NewTransactionValidator(),
		blockValidator: validation.NewBlockValidator(),
		pubkeys:        cfg.Pubkeys,
		maxBlockSize:   maxBlockSize,
	}
}

// InitGenesis persists genesis as block zero. Callers are responsible
// for having already written the genesis account balances into the
// state.Manager before calling this.
func (m *Manager) InitGenesis(genesis *chaintypes.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.InitGenesis(genesis)
}

// Height returns the current chain height.
func (m *Manager) Height() (uint64, error) {
	return m.store.Height()
}

// GetBlockByHash loads a block by its hash.
func (m *Manager) GetBlockByHash(h common.Hash) (*chaintypes.Block, error) {
	return m.store.GetByHash(h)
}

// GetBlockByHeight loads a block by height.
func (m *Manager) GetBlockByHeight(height uint64) (*chaintypes.Block, error) {
	return m.store.GetByHeight(height)
}

// LatestBlock loads the block at the current head.
func (m *Manager) LatestBlock() (*chaintypes.Block, error) {
	return m.store.Latest()
}

// RegisterAuthority records pubkey as the known signing key for addr,
// so future transactions from addr pass signature validation in
// SubmitTransaction. It does not add addr to the PoA round-robin
// schedule: poa.AuthoritySet is fixed at genesis and has no runtime
// mutation path, so this only ever grows the sender-recognition map,
// never the consensus authority set itself.
func (m *Manager) RegisterAuthority(addr common.Address, pubkey stded25519.PublicKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pubkeys[addr] = pubkey
}

// SubmitTransaction runs structural and state validation on tx and, if
// it passes, admits it to the mempool.
func (m *Manager) SubmitTransaction(tx *chaintypes.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pub := m.pubkeys[tx.From]
	if err := m.txValidator.ValidateStructure(tx, pub); err != nil {
		return fmt.Errorf("chainmgr: submit transaction: %w", err)
	}
	if err := m.txValidator.ValidateAgainstState(tx, m.state); err != nil {
		return fmt.Errorf("chainmgr: submit transaction: %w", err)
	}
	if err := m.pool.Add(tx); err != nil {
		return fmt.Errorf("chainmgr: submit transaction: %w", err)
	}
	return nil
}

// GetPendingTransactions returns up to limit pending transactions
// ordered by descending gas price.
func (m *Manager) GetPendingTransactions(limit int) []*chaintypes.Transaction {
	return m.pool.GetPending(limit)
}

// ProposeBlock builds, executes, signs, and persists a new block on
// behalf of proposer, drawing from the pending pool up to the
// configured block size. Transactions that no longer validate against
// the current state (e.g. a stale nonce) are dropped rather than
// included. Returns the resulting receipts alongside the block.
func (m *Manager) ProposeBlock(proposer *poa.BlockProposer) (*chaintypes.Block, *executor.BlockResult, error) {
	if proposer == nil {
		return nil, nil, ErrNoAuthority
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	height, err := m.store.Height()
	if err != nil {
		return nil, nil, err
	}
	nextHeight := height + 1
	prevHash, err := m.store.Head()
	if err != nil {
		return nil, nil, err
	}

	candidates := m.pool.GetPending(m.maxBlockSize)
	included := make([]*chaintypes.Transaction, 0, len(candidates))
	receipts := make([]*chaintypes.Receipt, 0, len(candidates))
	var totalGas uint64

	for _, tx := range candidates {
		if err := m.txValidator.ValidateAgainstState(tx, m.state); err != nil {
			logger.Debug("dropping stale pending transaction", "hash", tx.Hash().Hex(), "err", err)
			continue
		}
		receipt, err := m.exec.ExecuteTransaction(tx, executor.Context{BlockNumber: nextHeight})
		if err != nil {
			return nil, nil, err
		}
		included = append(included, tx)
		receipts = append(receipts, receipt)
		totalGas += receipt.GasUsed
	}

	stateRoot, err := m.state.ComputeStateRoot()
	if err != nil {
		return nil, nil, err
	}

	block, err := proposer.ProposeBlock(nextHeight, prevHash, included, stateRoot)
	if err != nil {
		return nil, nil, err
	}

	if err := m.store.PutBlock(block); err != nil {
		return nil, nil, err
	}

	hashes := make([]common.Hash, len(included))
	for i, tx := range included {
		hashes[i] = tx.Hash()
	}
	m.pool.RemoveBatch(hashes)

	return block, &executor.BlockResult{Receipts: receipts, TotalGasUsed: totalGas, StateRoot: stateRoot}, nil
}

// ImportBlock validates, executes, and persists a block received from
// another authority: structural checks, consensus (author turn and
// signature), re-execution against the current state, and a state-root
// cross-check before anything is written.
func (m *Manager) ImportBlock(block *chaintypes.Block) (*executor.BlockResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var parentHeader *chaintypes.BlockHeader
	if !block.IsGenesis() {
		parent, err := m.store.Latest()
		if err != nil {
			return nil, err
		}
		parentHeader = &parent.Header
	}

	if err := m.blockValidator.ValidateStructure(block, parentHeader); err != nil {
		return nil, fmt.Errorf("chainmgr: import block: %w", err)
	}
	if m.authors != nil {
		if err := m.authors.VerifyBlock(block, parentHeader); err != nil {
			return nil, fmt.Errorf("chainmgr: import block: %w", err)
		}
	}

	result, err := m.exec.ExecuteBlock(block)
	if err != nil {
		return nil, err
	}
	if result.StateRoot != block.Header.StateRoot {
		return nil, ErrStateRootMismatch
	}

	if err := m.store.PutBlock(block); err != nil {
		return nil, err
	}

	hashes := make([]common.Hash, len(block.Transactions))
	for i, tx := range block.Transactions {
		hashes[i] = tx.Hash()
	}
	m.pool.RemoveBatch(hashes)

	return result, nil
}
