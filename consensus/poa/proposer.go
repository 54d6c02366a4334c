package poa

import (
	"time"

	"github.com/tos-network/minichain/chaintypes"
	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/crypto"
)

// Config holds the tunables of the PoA layer: the target block
// cadence and the tolerance for a proposer's clock skew relative to a
// verifier's wall clock.
type Config struct {
	BlockTimeSecs uint64
	MaxClockDrift uint64 // seconds; default 30 per spec.md
}

// DefaultMaxClockDrift matches the reference implementation's default.
const DefaultMaxClockDrift = 30

// BlockProposer builds and signs new blocks on behalf of one authority.
type BlockProposer struct {
	keypair     *crypto.KeyPair
	authorities *AuthoritySet
	scheduler   *Scheduler
	cfg         Config
	nowFn       func() time.Time
}

// NewBlockProposer returns a proposer signing with keypair, scheduled
// against authorities.
func NewBlockProposer(keypair *crypto.KeyPair, authorities *AuthoritySet, cfg Config) *BlockProposer {
	return &BlockProposer{
		keypair:     keypair,
		authorities: authorities,
		scheduler:   NewScheduler(authorities),
		cfg:         cfg,
		nowFn:       time.Now,
	}
}

// CanProposeAtHeight reports whether this proposer's address is
// in-turn at height.
func (p *BlockProposer) CanProposeAtHeight(height uint64) (bool, error) {
	return p.scheduler.CanProposeAtHeight(height, p.keypair.Address())
}

// ProposeBlock builds, merkle-roots, timestamps, and signs a new block
// over txs at height, chained from prevHash, committing to stateRoot.
func (p *BlockProposer) ProposeBlock(height uint64, prevHash common.Hash, txs []*chaintypes.Transaction, stateRoot common.Hash) (*chaintypes.Block, error) {
	ok, err := p.CanProposeAtHeight(height)
	if err != nil {
		return nil, err
	}
	if !ok {
		expected, _ := p.authorities.ExpectedAuthor(height)
		return nil, &ErrNotTurn{Expected: expected, Got: p.keypair.Address()}
	}

	block := &chaintypes.Block{
		Header: chaintypes.BlockHeader{
			Height:       height,
			TimestampSec: uint64(p.nowFn().Unix()),
			PrevHash:     prevHash,
			StateRoot:    stateRoot,
			Author:       p.keypair.Address(),
			Difficulty:   1,
			Nonce:        0,
		},
		Transactions: txs,
	}
	block.Header.MerkleRoot = block.ComputeMerkleRoot()
	block.AuthoritySig = p.keypair.Sign(block.Header.Hash())
	return block, nil
}
