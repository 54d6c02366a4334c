package validation

import (
	stded25519 "crypto/ed25519"

	"github.com/tos-network/minichain/chaintypes"
	"github.com/tos-network/minichain/common"
)

// BlockValidator runs the structural checks a candidate block must pass
// before consensus and execution: merkle root, duplicate transactions,
// and (for non-genesis blocks) chain continuity.
type BlockValidator struct {
	txValidator *TransactionValidator
}

// NewBlockValidator returns a validator that also runs per-transaction
// structural checks (not including signature verification, since the
// sender's public key is not available at this layer — see spec.md
// §4.7).
func NewBlockValidator() *BlockValidator {
	return &BlockValidator{txValidator: NewTransactionValidator()}
}

// ValidateStructure checks merkle root, duplicate hashes, parent
// linkage (skipped for genesis), and each transaction's structural
// validity.
func (v *BlockValidator) ValidateStructure(block *chaintypes.Block, parent *chaintypes.BlockHeader) error {
	if block.ComputeMerkleRoot() != block.Header.MerkleRoot {
		return ErrInvalidMerkleRoot
	}

	seen := make(map[common.Hash]struct{}, len(block.Transactions))
	for _, tx := range block.Transactions {
		h := tx.Hash()
		if _, ok := seen[h]; ok {
			return ErrDuplicateTransaction
		}
		seen[h] = struct{}{}
		if err := v.txValidator.ValidateStructure(tx, stded25519.PublicKey(nil)); err != nil {
			return err
		}
	}

	if !block.IsGenesis() {
		if parent == nil {
			return ErrInvalidPrevHash
		}
		if block.Header.Height != parent.Height+1 {
			return ErrInvalidHeight
		}
		if block.Header.PrevHash != parent.Hash() {
			return ErrInvalidPrevHash
		}
	}
	return nil
}
