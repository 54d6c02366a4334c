package chainstore

import (
	"strconv"

	"github.com/tos-network/minichain/common"
)

var (
	blockHashPrefix   = []byte("block:hash:")
	blockHeightPrefix = []byte("block:height:")
	headKey           = []byte("chain:head")
	heightKey         = []byte("chain:height")
)

func blockHashKey(h common.Hash) []byte {
	return append(append([]byte(nil), blockHashPrefix...), h.Bytes()...)
}

func blockHeightKey(height uint64) []byte {
	return append(append([]byte(nil), blockHeightPrefix...), []byte(strconv.FormatUint(height, 10))...)
}
