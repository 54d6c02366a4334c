package executor

import "errors"

// ErrUnexpectedNonce and ErrCostExceedsBalance are the two pre-execution
// failures that never touch the gas meter or account balances: the
// transaction is rejected outright and reported back as a failed
// receipt with GasUsed 0, matching spec.md's insufficient-balance
// worked example.
var (
	ErrUnexpectedNonce    = errors.New("executor: transaction nonce does not match sender account")
	ErrCostExceedsBalance = errors.New("executor: gas_limit*gas_price+value exceeds sender balance")
)
