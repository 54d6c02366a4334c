package state

import (
	"encoding/hex"

	"github.com/tos-network/minichain/common"
)

var (
	accountPrefix = []byte("account:")
	codePrefix    = []byte("code:")
	storagePrefix = []byte("storage:")
)

func accountKey(addr common.Address) []byte {
	return append(append([]byte(nil), accountPrefix...), addr.Bytes()...)
}

func codeKey(codeHash common.Hash) []byte {
	hx := hex.EncodeToString(codeHash.Bytes())
	return append(append([]byte(nil), codePrefix...), []byte(hx)...)
}

func storageKey(contract common.Address, slot []byte) []byte {
	key := append(append([]byte(nil), storagePrefix...), contract.Bytes()...)
	key = append(key, ':')
	return append(key, slot...)
}
