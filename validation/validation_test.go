package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tos-network/minichain/chaintypes"
	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/crypto"
	"github.com/tos-network/minichain/state"
	"github.com/tos-network/minichain/store"
)

func signedTransfer(t *testing.T, from *crypto.KeyPair, to common.Address, nonce, value, gasLimit, gasPrice uint64) *chaintypes.Transaction {
	t.Helper()
	tx := &chaintypes.Transaction{
		Nonce:    nonce,
		From:     from.Address(),
		To:       &to,
		Value:    value,
		GasLimit: gasLimit,
		GasPrice: gasPrice,
	}
	tx.Sign(from)
	return tx
}

func TestTransactionValidatorZeroGasPrice(t *testing.T) {
	alice, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	bob, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	tx := signedTransfer(t, alice, bob.Address(), 0, 1000, MinGasTransfer, 0)
	v := NewTransactionValidator()
	assert.ErrorIs(t, v.ValidateStructure(tx, nil), ErrZeroGasPrice)
}

func TestTransactionValidatorGasLimitTooLow(t *testing.T) {
	alice, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	bob, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	tx := signedTransfer(t, alice, bob.Address(), 0, 1000, 100, 1)
	v := NewTransactionValidator()
	var tooLow *ErrGasLimitTooLow
	require.ErrorAs(t, v.ValidateStructure(tx, nil), &tooLow)
}

func TestTransactionValidatorSignatureCheck(t *testing.T) {
	alice, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	bob, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	tx := signedTransfer(t, alice, bob.Address(), 0, 1000, MinGasTransfer, 1)
	v := NewTransactionValidator()
	require.NoError(t, v.ValidateStructure(tx, alice.Public))

	tx.Value = 9999 // tamper after signing
	assert.ErrorIs(t, v.ValidateStructure(tx, alice.Public), ErrInvalidSignature)
}

func TestTransactionValidatorAgainstState(t *testing.T) {
	alice, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	bob, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	mgr := state.New(store.NewMemDB())
	require.NoError(t, mgr.SetBalance(alice.Address(), 100_000))

	tx := signedTransfer(t, alice, bob.Address(), 0, 1_000, MinGasTransfer, 1)
	v := NewTransactionValidator()
	require.NoError(t, v.ValidateAgainstState(tx, mgr))

	badNonce := signedTransfer(t, alice, bob.Address(), 5, 1_000, MinGasTransfer, 1)
	var invalidNonce *ErrInvalidNonce
	require.ErrorAs(t, v.ValidateAgainstState(badNonce, mgr), &invalidNonce)

	tooExpensive := signedTransfer(t, alice, bob.Address(), 0, 1_000_000, MinGasTransfer, 1)
	var insufficient *ErrInsufficientBalance
	require.ErrorAs(t, v.ValidateAgainstState(tooExpensive, mgr), &insufficient)
}

func TestBlockValidatorMerkleTamperDetection(t *testing.T) {
	alice, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	bob, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	tx := signedTransfer(t, alice, bob.Address(), 0, 1_000, MinGasTransfer, 1)
	block := &chaintypes.Block{
		Header:       chaintypes.BlockHeader{Height: 1, Difficulty: 1},
		Transactions: []*chaintypes.Transaction{tx},
	}
	block.Header.MerkleRoot = block.ComputeMerkleRoot()

	v := NewBlockValidator()
	parent := &chaintypes.BlockHeader{Height: 0}
	block.Header.PrevHash = parent.Hash()
	require.NoError(t, v.ValidateStructure(block, parent))

	block.Header.MerkleRoot = common.ZeroHash
	assert.ErrorIs(t, v.ValidateStructure(block, parent), ErrInvalidMerkleRoot)
}

func TestBlockValidatorDuplicateTransaction(t *testing.T) {
	alice, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	bob, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	tx := signedTransfer(t, alice, bob.Address(), 0, 1_000, MinGasTransfer, 1)
	block := &chaintypes.Block{
		Header:       chaintypes.BlockHeader{Height: 1},
		Transactions: []*chaintypes.Transaction{tx, tx},
	}
	block.Header.MerkleRoot = block.ComputeMerkleRoot()
	parent := &chaintypes.BlockHeader{Height: 0}
	block.Header.PrevHash = parent.Hash()

	v := NewBlockValidator()
	assert.ErrorIs(t, v.ValidateStructure(block, parent), ErrDuplicateTransaction)
}
