package chaintypes

import "github.com/tos-network/minichain/common"

// Receipt is the structured outcome of executing one transaction.
type Receipt struct {
	TxHash          common.Hash
	Success         bool
	GasUsed         uint64
	ContractAddress *common.Address
	Error           string
}
