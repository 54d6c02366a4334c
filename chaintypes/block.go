package chaintypes

import (
	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/crypto"
	"github.com/tos-network/minichain/merkle"
	"github.com/tos-network/minichain/store"
)

// BlockHeader carries everything needed to verify and link a block.
// Difficulty and Nonce are vestigial PoW fields kept at fixed values
// (1 and 0) the way the teacher's consensus/dpos package keeps
// go-ethereum's header shape rather than defining a leaner one.
type BlockHeader struct {
	Height       uint64
	TimestampSec uint64
	PrevHash     common.Hash
	MerkleRoot   common.Hash
	StateRoot    common.Hash
	Author       common.Address
	Difficulty   uint64
	Nonce        uint64
}

func (h *BlockHeader) marshal(w *store.Writer) {
	w.WriteUint64(h.Height)
	w.WriteUint64(h.TimestampSec)
	w.WriteHash(h.PrevHash)
	w.WriteHash(h.MerkleRoot)
	w.WriteHash(h.StateRoot)
	w.WriteAddress(h.Author)
	w.WriteUint64(h.Difficulty)
	w.WriteUint64(h.Nonce)
}

// Hash is the signing hash for consensus: authorities sign this value.
func (h *BlockHeader) Hash() common.Hash {
	w := store.NewWriter()
	h.marshal(w)
	return crypto.Hash256(w.Bytes())
}

func (h *BlockHeader) MarshalBinary() []byte {
	w := store.NewWriter()
	h.marshal(w)
	return w.Bytes()
}

func (h *BlockHeader) UnmarshalBinary(b []byte) error {
	r := store.NewReader(b)
	var err error
	if h.Height, err = r.ReadUint64(); err != nil {
		return err
	}
	if h.TimestampSec, err = r.ReadUint64(); err != nil {
		return err
	}
	if h.PrevHash, err = r.ReadHash(); err != nil {
		return err
	}
	if h.MerkleRoot, err = r.ReadHash(); err != nil {
		return err
	}
	if h.StateRoot, err = r.ReadHash(); err != nil {
		return err
	}
	if h.Author, err = r.ReadAddress(); err != nil {
		return err
	}
	if h.Difficulty, err = r.ReadUint64(); err != nil {
		return err
	}
	if h.Nonce, err = r.ReadUint64(); err != nil {
		return err
	}
	return nil
}

// Block is a header plus its ordered transactions and the authority's
// signature over the header hash.
type Block struct {
	Header       BlockHeader
	Transactions []*Transaction
	AuthoritySig common.Signature
}

// Hash is the block's identity: the header hash (signature excluded,
// matching spec.md's signing-hash domain for blocks).
func (b *Block) Hash() common.Hash { return b.Header.Hash() }

// ComputeMerkleRoot recomputes the merkle root over this block's
// transaction hashes.
func (b *Block) ComputeMerkleRoot() common.Hash {
	leaves := make([]common.Hash, len(b.Transactions))
	for i, tx := range b.Transactions {
		leaves[i] = tx.Hash()
	}
	return merkle.Root(leaves)
}

// IsGenesis reports whether this is the height-0 genesis block.
func (b *Block) IsGenesis() bool { return b.Header.Height == 0 }

// NewGenesisBlock builds the canonical height-0 block: zero prev hash,
// no transactions, zero merkle/state roots.
func NewGenesisBlock(timestampSec uint64) *Block {
	return &Block{
		Header: BlockHeader{
			Height:       0,
			TimestampSec: timestampSec,
			PrevHash:     common.ZeroHash,
			MerkleRoot:   common.ZeroHash,
			StateRoot:    common.ZeroHash,
			Author:       common.ZeroAddress,
			Difficulty:   1,
			Nonce:        0,
		},
	}
}

func (b *Block) MarshalBinary() []byte {
	w := store.NewWriter()
	b.Header.marshal(w)
	w.WriteUint64(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		w.WriteBytes(tx.MarshalBinary())
	}
	w.WriteSignature(b.AuthoritySig)
	return w.Bytes()
}

func (b *Block) UnmarshalBinary(data []byte) error {
	r := store.NewReader(data)
	var err error
	if b.Header.Height, err = r.ReadUint64(); err != nil {
		return err
	}
	if b.Header.TimestampSec, err = r.ReadUint64(); err != nil {
		return err
	}
	if b.Header.PrevHash, err = r.ReadHash(); err != nil {
		return err
	}
	if b.Header.MerkleRoot, err = r.ReadHash(); err != nil {
		return err
	}
	if b.Header.StateRoot, err = r.ReadHash(); err != nil {
		return err
	}
	if b.Header.Author, err = r.ReadAddress(); err != nil {
		return err
	}
	if b.Header.Difficulty, err = r.ReadUint64(); err != nil {
		return err
	}
	if b.Header.Nonce, err = r.ReadUint64(); err != nil {
		return err
	}
	n, err := r.ReadUint64()
	if err != nil {
		return err
	}
	b.Transactions = make([]*Transaction, n)
	for i := uint64(0); i < n; i++ {
		raw, err := r.ReadBytes()
		if err != nil {
			return err
		}
		tx := &Transaction{}
		if err := tx.UnmarshalBinary(raw); err != nil {
			return err
		}
		b.Transactions[i] = tx
	}
	if b.AuthoritySig, err = r.ReadSignature(); err != nil {
		return err
	}
	return nil
}
