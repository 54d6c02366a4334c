package chainstore

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/tos-network/minichain/chaintypes"
	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/log"
	"github.com/tos-network/minichain/store"
)

var logger = log.New("chainstore")

// inmemoryBlocks bounds the recent-block cache, mirroring the
// teacher's consensus/dpos.inmemorySnapshots sizing convention.
const inmemoryBlocks = 256

// Store is the append-only block store: a primary hash-keyed index, a
// secondary height-keyed pointer index, and the chain-global head and
// height pointers. It owns no KV of its own — kv is passed by
// reference per spec.md's ownership rule.
type Store struct {
	kv     store.KV
	recent *lru.ARCCache // common.Hash -> *chaintypes.Block
}

// New wraps kv in a Store.
func New(kv store.KV) *Store {
	cache, _ := lru.NewARC(inmemoryBlocks)
	return &Store{kv: kv, recent: cache}
}

// InitGenesis persists block as the height-0 genesis and sets the head
// and height pointers. Fails if a genesis block already exists.
func (s *Store) InitGenesis(block *chaintypes.Block) error {
	if _, err := s.kv.Get(headKey); err == nil {
		return ErrAlreadyInitialized
	}
	return s.putBlockAndAdvance(block)
}

// PutBlock persists block under both indexes and advances head/height
// to it. Callers are responsible for having already validated the
// block; Store itself performs no consensus or structural checks.
func (s *Store) PutBlock(block *chaintypes.Block) error {
	return s.putBlockAndAdvance(block)
}

func (s *Store) putBlockAndAdvance(block *chaintypes.Block) error {
	h := block.Hash()
	batch := s.kv.NewBatch()
	batch.Put(blockHashKey(h), block.MarshalBinary())
	batch.Put(blockHeightKey(block.Header.Height), h.Bytes())
	batch.Put(headKey, h.Bytes())

	w := store.NewWriter()
	w.WriteUint64(block.Header.Height)
	batch.Put(heightKey, w.Bytes())

	if err := batch.Write(); err != nil {
		return err
	}
	s.recent.Add(h, block)
	return nil
}

// Head returns the hash of the current chain head.
func (s *Store) Head() (common.Hash, error) {
	raw, err := s.kv.Get(headKey)
	if err == store.ErrNotFound {
		return common.Hash{}, ErrNotInitialized
	}
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(raw), nil
}

// Height returns the current chain height.
func (s *Store) Height() (uint64, error) {
	raw, err := s.kv.Get(heightKey)
	if err == store.ErrNotFound {
		return 0, ErrNotInitialized
	}
	if err != nil {
		return 0, err
	}
	r := store.NewReader(raw)
	return r.ReadUint64()
}

// GetByHash loads the block with hash h.
func (s *Store) GetByHash(h common.Hash) (*chaintypes.Block, error) {
	if cached, ok := s.recent.Get(h); ok {
		return cached.(*chaintypes.Block), nil
	}
	raw, err := s.kv.Get(blockHashKey(h))
	if err == store.ErrNotFound {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}
	block := &chaintypes.Block{}
	if err := block.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	s.recent.Add(h, block)
	return block, nil
}

// GetByHeight loads the block at the given height via the secondary
// pointer index.
func (s *Store) GetByHeight(height uint64) (*chaintypes.Block, error) {
	raw, err := s.kv.Get(blockHeightKey(height))
	if err == store.ErrNotFound {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetByHash(common.BytesToHash(raw))
}

// Latest loads the block at the current head.
func (s *Store) Latest() (*chaintypes.Block, error) {
	h, err := s.Head()
	if err != nil {
		return nil, err
	}
	return s.GetByHash(h)
}
