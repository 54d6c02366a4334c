package validation

import (
	stded25519 "crypto/ed25519"

	"github.com/holiman/uint256"

	"github.com/tos-network/minichain/chaintypes"
	"github.com/tos-network/minichain/crypto"
	"github.com/tos-network/minichain/state"
)

// Minimum gas thresholds, spec.md §4.7.
const (
	MinGasTransfer    = 21_000
	MinGasDeploy      = 21_000
	MinGasCallBase    = 21_000
	gasPerCallDataByte = 68
)

// TransactionValidator runs the structural and (optionally) state-aware
// checks a transaction must pass before it can execute.
type TransactionValidator struct{}

// NewTransactionValidator returns a validator. It is stateless and safe
// to share.
func NewTransactionValidator() *TransactionValidator {
	return &TransactionValidator{}
}

// ValidateStructure runs the checks that require no account state:
// gas price, minimum gas for the transaction's shape, and — when pub is
// non-nil — the Ed25519 signature.
func (v *TransactionValidator) ValidateStructure(tx *chaintypes.Transaction, pub stded25519.PublicKey) error {
	if tx.GasPrice == 0 {
		return ErrZeroGasPrice
	}
	if err := v.validateMinimumGas(tx); err != nil {
		return err
	}
	if tx.IsDeploy() && len(tx.Data) == 0 {
		return ErrEmptyDeploymentData
	}
	if pub != nil {
		if err := crypto.Verify(pub, tx.SigningHash(), tx.Signature); err != nil {
			return ErrInvalidSignature
		}
	}
	return nil
}

func (v *TransactionValidator) validateMinimumGas(tx *chaintypes.Transaction) error {
	var minimum uint64
	switch {
	case tx.IsDeploy():
		minimum = MinGasDeploy
	case tx.IsCall():
		minimum = MinGasCallBase + gasPerCallDataByte*uint64(len(tx.Data))
	default:
		minimum = MinGasTransfer
	}
	if tx.GasLimit < minimum {
		return &ErrGasLimitTooLow{GasLimit: tx.GasLimit, Minimum: minimum}
	}
	return nil
}

// ValidateAgainstState checks the transaction's nonce and the sender's
// balance against the current account state.
func (v *TransactionValidator) ValidateAgainstState(tx *chaintypes.Transaction, mgr *state.Manager) error {
	acct, err := mgr.GetAccount(tx.From)
	if err != nil {
		return err
	}
	if tx.Nonce != acct.Nonce {
		return &ErrInvalidNonce{Address: tx.From, Expected: acct.Nonce, Got: tx.Nonce}
	}

	cost := new(uint256.Int).Mul(uint256.NewInt(tx.GasLimit), uint256.NewInt(tx.GasPrice))
	cost.Add(cost, uint256.NewInt(tx.Value))
	if !cost.IsUint64() || cost.Uint64() > acct.Balance {
		return &ErrInsufficientBalance{Address: tx.From, Required: costOrMax(cost), Available: acct.Balance}
	}
	return nil
}

func costOrMax(cost *uint256.Int) uint64 {
	if cost.IsUint64() {
		return cost.Uint64()
	}
	return ^uint64(0)
}
