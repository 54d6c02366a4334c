package chainmgr

import "errors"

var (
	// ErrStateRootMismatch is returned by ImportBlock when a block's
	// declared state root does not match the root produced by actually
	// executing its transactions.
	ErrStateRootMismatch = errors.New("chainmgr: computed state root does not match block header")

	// ErrNoAuthority is returned by ProposeBlock when no proposer was
	// configured for this node.
	ErrNoAuthority = errors.New("chainmgr: node has no configured block proposer")
)
