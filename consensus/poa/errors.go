package poa

import (
	"errors"
	"fmt"

	"github.com/tos-network/minichain/common"
)

// Sentinel errors, named the way the teacher's consensus/dpos package
// names its package-level errUnauthorizedValidator / errMissingSignature
// vars.
var (
	ErrUnauthorizedAuthority = errors.New("poa: signer is not a registered authority")
	ErrInvalidSignature      = errors.New("poa: invalid authority signature")
	ErrNoAuthorities         = errors.New("poa: authority set is empty")
)

// ErrNotTurn is returned when a block's author is a registered
// authority but not the one whose turn it is at this height.
type ErrNotTurn struct {
	Expected common.Address
	Got      common.Address
}

func (e *ErrNotTurn) Error() string {
	return fmt.Sprintf("poa: not this authority's turn: expected %s, got %s", e.Expected.Hex(), e.Got.Hex())
}

// ErrTimestampTooEarly is returned when a block's timestamp does not
// strictly advance past its parent's.
type ErrTimestampTooEarly struct {
	Timestamp       uint64
	ParentTimestamp uint64
}

func (e *ErrTimestampTooEarly) Error() string {
	return fmt.Sprintf("poa: timestamp %d does not advance past parent timestamp %d", e.Timestamp, e.ParentTimestamp)
}

// ErrTimestampTooFuture is returned when a block's timestamp is too far
// ahead of the verifier's wall clock.
type ErrTimestampTooFuture struct {
	Timestamp uint64
	Now       uint64
	MaxDrift  uint64
}

func (e *ErrTimestampTooFuture) Error() string {
	return fmt.Sprintf("poa: timestamp %d exceeds now(%d)+maxDrift(%d)", e.Timestamp, e.Now, e.MaxDrift)
}
