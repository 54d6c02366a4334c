// Package chainstore is the block store: blocks indexed by hash
// (primary) and by height (a secondary pointer into the primary
// index), plus the chain-global head and height pointers and a
// genesis-initialization guard. Grounded on the teacher's kvstore
// package for the prefixed-key/typed-put-get shape and on
// consensus/dpos's ARC-cached "recents" for the in-memory block cache.
package chainstore

import "errors"

var (
	// ErrAlreadyInitialized is returned by InitGenesis when the chain
	// already has a genesis block persisted.
	ErrAlreadyInitialized = errors.New("chainstore: genesis already initialized")
	// ErrNotInitialized is returned by chain-global reads before
	// InitGenesis has run.
	ErrNotInitialized = errors.New("chainstore: chain has no genesis block")
	// ErrBlockNotFound is returned when a lookup by hash or height
	// misses.
	ErrBlockNotFound = errors.New("chainstore: block not found")
)
