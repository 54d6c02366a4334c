// Package validation implements stateless and state-aware structural
// checks on transactions and blocks, kept separate from execution so a
// malformed transaction can be rejected before it ever touches the
// account store. Grounded on the teacher's core/types validation-error
// style (typed structs for errors carrying context, sentinels for
// everything else).
package validation

import (
	"errors"
	"fmt"

	"github.com/tos-network/minichain/common"
)

var (
	ErrZeroGasPrice        = errors.New("validation: gas price must be greater than zero")
	ErrEmptyDeploymentData = errors.New("validation: contract deployment requires non-empty data")
	ErrInvalidSignature    = errors.New("validation: invalid transaction signature")
	ErrInvalidMerkleRoot   = errors.New("validation: merkle root does not match transactions")
	ErrDuplicateTransaction = errors.New("validation: duplicate transaction hash in block")
	ErrInvalidHeight       = errors.New("validation: block height does not follow parent")
	ErrInvalidPrevHash     = errors.New("validation: block prev_hash does not match parent")
	ErrEmptyBlock          = errors.New("validation: block has no transactions")
	ErrTxHashMismatch      = errors.New("validation: transaction hash does not match its contents")
)

// ErrGasLimitTooLow is returned when a transaction's gas_limit is below
// the minimum required for its shape (transfer/call/deploy).
type ErrGasLimitTooLow struct {
	GasLimit uint64
	Minimum  uint64
}

func (e *ErrGasLimitTooLow) Error() string {
	return fmt.Sprintf("validation: gas limit %d below minimum %d", e.GasLimit, e.Minimum)
}

// ErrInvalidNonce is returned when a transaction's nonce does not equal
// the sender's current account nonce.
type ErrInvalidNonce struct {
	Address  common.Address
	Expected uint64
	Got      uint64
}

func (e *ErrInvalidNonce) Error() string {
	return fmt.Sprintf("validation: invalid nonce for %s: expected %d, got %d", e.Address.Hex(), e.Expected, e.Got)
}

// ErrInsufficientBalance is returned when the sender cannot cover
// value + gas_limit*gas_price.
type ErrInsufficientBalance struct {
	Address   common.Address
	Required  uint64
	Available uint64
}

func (e *ErrInsufficientBalance) Error() string {
	return fmt.Sprintf("validation: insufficient balance for %s: required %d, available %d",
		e.Address.Hex(), e.Required, e.Available)
}
