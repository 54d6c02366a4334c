package state

import (
	"errors"
	"fmt"

	"github.com/tos-network/minichain/common"
)

// ErrInsufficientBalance is returned by SubBalance/Transfer when the
// account's balance is below the requested amount.
type ErrInsufficientBalance struct {
	Address   common.Address
	Required  uint64
	Available uint64
}

func (e *ErrInsufficientBalance) Error() string {
	return fmt.Sprintf("state: insufficient balance for %s: required %d, available %d",
		e.Address.Hex(), e.Required, e.Available)
}

// ErrInvalidStorageValue is returned by SLoad when the value stored in
// a slot is not exactly 32 bytes.
var ErrInvalidStorageValue = errors.New("state: storage value must be exactly 32 bytes")
