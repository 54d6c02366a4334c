// Package executor runs validated transactions and blocks against the
// account store, turning each transaction into a Receipt and each
// block into a total-gas/state-root summary. Grounded on the shape of
// the teacher's core/state_processor.go (Process/ApplyTransaction) but
// rebuilt around minichain's fixed-gas transfer/deploy/call model
// instead of EVM intrinsic-gas accounting.
package executor

import (
	"github.com/holiman/uint256"

	"github.com/tos-network/minichain/chaintypes"
	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/log"
	"github.com/tos-network/minichain/state"
	"github.com/tos-network/minichain/validation"
	"github.com/tos-network/minichain/vm"
)

var logger = log.New("executor")

// Context carries the block-level values a transaction's execution
// needs but that the transaction itself does not carry: the height and
// timestamp of the block it is included in.
type Context struct {
	BlockNumber uint64
	Timestamp   uint64
}

// Executor applies transactions to a state.Manager, one at a time, in
// block order.
type Executor struct {
	state *state.Manager
}

// New builds an Executor over mgr. mgr is owned by the caller; Executor
// never opens its own batch, so every mutation it makes is visible to
// subsequent reads through mgr immediately.
func New(mgr *state.Manager) *Executor {
	return &Executor{state: mgr}
}

// ExecuteTransaction runs one transaction to completion. A transaction
// that fails a pre-execution check (bad nonce, insufficient balance)
// never touches the account store and comes back as a failed receipt
// with GasUsed 0. A transaction that fails during execution (VM
// revert, division by zero, out of gas) still consumes its gas and
// reports the failure in the receipt.
func (e *Executor) ExecuteTransaction(tx *chaintypes.Transaction, ctx Context) (*chaintypes.Receipt, error) {
	acct, err := e.state.GetAccount(tx.From)
	if err != nil {
		return nil, err
	}
	if tx.Nonce != acct.Nonce {
		return failedReceipt(tx, ErrUnexpectedNonce), nil
	}

	maxCost := new(uint256.Int).Mul(uint256.NewInt(tx.GasLimit), uint256.NewInt(tx.GasPrice))
	maxCost.Add(maxCost, uint256.NewInt(tx.Value))
	if !maxCost.IsUint64() || maxCost.Uint64() > acct.Balance {
		return failedReceipt(tx, ErrCostExceedsBalance), nil
	}

	if err := e.state.SubBalance(tx.From, maxCost.Uint64()); err != nil {
		return nil, err
	}
	if err := e.state.IncrementNonce(tx.From); err != nil {
		return nil, err
	}

	var receipt *chaintypes.Receipt
	switch {
	case tx.IsDeploy():
		receipt, err = e.executeDeploy(tx)
	case tx.IsCall():
		receipt, err = e.executeCall(tx, ctx)
	default:
		receipt, err = e.executeTransfer(tx)
	}
	if err != nil {
		return nil, err
	}

	refund := (tx.GasLimit - receipt.GasUsed) * tx.GasPrice
	if refund > 0 {
		if err := e.state.AddBalance(tx.From, refund); err != nil {
			return nil, err
		}
	}
	return receipt, nil
}

func failedReceipt(tx *chaintypes.Transaction, err error) *chaintypes.Receipt {
	return &chaintypes.Receipt{
		TxHash:  tx.Hash(),
		Success: false,
		GasUsed: 0,
		Error:   err.Error(),
	}
}

func (e *Executor) executeTransfer(tx *chaintypes.Transaction) (*chaintypes.Receipt, error) {
	if err := e.state.AddBalance(*tx.To, tx.Value); err != nil {
		return nil, err
	}
	return &chaintypes.Receipt{
		TxHash:  tx.Hash(),
		Success: true,
		GasUsed: validation.MinGasTransfer,
	}, nil
}

// deployGasCost is the fixed per-deployment charge: a base cost plus a
// per-byte charge for the deployed code, independent of
// validation.MinGasDeploy (which only bounds the minimum gas a
// deploy transaction must supply, not what it actually costs).
func deployGasCost(dataLen int) uint64 {
	return 32_000 + 200*uint64(dataLen)
}

func (e *Executor) executeDeploy(tx *chaintypes.Transaction) (*chaintypes.Receipt, error) {
	contractAddr := chaintypes.ContractAddress(tx.From, tx.Nonce)
	if _, err := e.state.DeployContract(contractAddr, tx.Data, tx.Value); err != nil {
		return nil, err
	}
	logger.Debug("deployed contract", "address", contractAddr.Hex(), "codeSize", len(tx.Data))
	return &chaintypes.Receipt{
		TxHash:          tx.Hash(),
		Success:         true,
		GasUsed:         deployGasCost(len(tx.Data)),
		ContractAddress: &contractAddr,
	}, nil
}

// executeCall runs the code deployed at tx.To in the VM. tx.Data only
// sizes the intrinsic gas; it is not passed to the VM. A call to an
// address with no deployed code fails outright:
// the intrinsic base gas is spent but nothing executes and the value
// is not credited, so it stays burned out of the sender's balance.
func (e *Executor) executeCall(tx *chaintypes.Transaction, ctx Context) (*chaintypes.Receipt, error) {
	target := *tx.To

	acct, err := e.state.GetAccount(target)
	if err != nil {
		return nil, err
	}
	if !acct.IsContract() {
		return &chaintypes.Receipt{
			TxHash:  tx.Hash(),
			Success: false,
			GasUsed: validation.MinGasCallBase,
			Error:   "contract not found at call target",
		}, nil
	}

	if err := e.state.AddBalance(target, tx.Value); err != nil {
		return nil, err
	}

	intrinsicGas := uint64(validation.MinGasCallBase) + 68*uint64(len(tx.Data))
	code, err := e.state.GetCode(*acct.CodeHash)
	if err != nil {
		return nil, err
	}

	vmGasLimit := tx.GasLimit - intrinsicGas
	storage := newContractStorage(e.state, target)
	machine := vm.New(code, vmGasLimit, storage, vm.Context{
		Caller:      tx.From,
		Address:     target,
		CallValue:   tx.Value,
		BlockNumber: ctx.BlockNumber,
		Timestamp:   ctx.Timestamp,
	})
	result := machine.Run()

	receipt := &chaintypes.Receipt{
		TxHash:  tx.Hash(),
		Success: result.Success,
		GasUsed: intrinsicGas + result.GasUsed,
	}
	if !result.Success && result.Err != nil {
		receipt.Error = result.Err.Error()
	}
	return receipt, nil
}

// BlockResult summarizes executing every transaction in a block.
type BlockResult struct {
	Receipts     []*chaintypes.Receipt
	TotalGasUsed uint64
	StateRoot    common.Hash
}

// ExecuteBlock runs every transaction in block in order and recomputes
// the state root afterward.
func (e *Executor) ExecuteBlock(block *chaintypes.Block) (*BlockResult, error) {
	ctx := Context{BlockNumber: block.Header.Height, Timestamp: block.Header.TimestampSec}
	result := &BlockResult{Receipts: make([]*chaintypes.Receipt, 0, len(block.Transactions))}

	for _, tx := range block.Transactions {
		receipt, err := e.ExecuteTransaction(tx, ctx)
		if err != nil {
			return nil, err
		}
		result.Receipts = append(result.Receipts, receipt)
		result.TotalGasUsed += receipt.GasUsed
	}

	root, err := e.state.ComputeStateRoot()
	if err != nil {
		return nil, err
	}
	result.StateRoot = root
	return result, nil
}
