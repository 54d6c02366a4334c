package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tos-network/minichain/chaintypes"
	"github.com/tos-network/minichain/common"
)

func txWithGasPrice(nonce uint64, from common.Address, gasPrice uint64) *chaintypes.Transaction {
	to := common.BytesToAddress([]byte{0xAA})
	return &chaintypes.Transaction{
		Nonce:    nonce,
		From:     from,
		To:       &to,
		Value:    1,
		GasLimit: 21_000,
		GasPrice: gasPrice,
	}
}

func TestPoolAddAndGet(t *testing.T) {
	p := New(0, 0)
	from := common.BytesToAddress([]byte{1})
	tx := txWithGasPrice(0, from, 5)

	require.NoError(t, p.Add(tx))
	assert.True(t, p.Contains(tx.Hash()))

	got, err := p.Get(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, tx, got)
}

func TestPoolDuplicateRejected(t *testing.T) {
	p := New(0, 0)
	from := common.BytesToAddress([]byte{1})
	tx := txWithGasPrice(0, from, 5)
	require.NoError(t, p.Add(tx))
	assert.ErrorIs(t, p.Add(tx), ErrDuplicateTransaction)
}

func TestPoolCapacity(t *testing.T) {
	const capacity = 3
	p := New(capacity, 100)
	for i := 0; i < capacity; i++ {
		from := common.BytesToAddress([]byte{byte(i + 1)})
		require.NoError(t, p.Add(txWithGasPrice(0, from, 1)))
	}
	overflow := txWithGasPrice(0, common.BytesToAddress([]byte{99}), 1)
	err := p.Add(overflow)
	var full *ErrMempoolFull
	require.ErrorAs(t, err, &full)
	assert.Equal(t, capacity, p.Stats().Total)
}

func TestPoolPerSenderCapacity(t *testing.T) {
	p := New(1000, 2)
	from := common.BytesToAddress([]byte{7})
	require.NoError(t, p.Add(txWithGasPrice(0, from, 1)))
	require.NoError(t, p.Add(txWithGasPrice(1, from, 1)))
	err := p.Add(txWithGasPrice(2, from, 1))
	var full *ErrMempoolFull
	require.ErrorAs(t, err, &full)
}

func TestPoolGetByGasPriceStableSort(t *testing.T) {
	p := New(0, 0)
	low := txWithGasPrice(0, common.BytesToAddress([]byte{1}), 1)
	high := txWithGasPrice(0, common.BytesToAddress([]byte{2}), 10)
	mid := txWithGasPrice(0, common.BytesToAddress([]byte{3}), 5)
	require.NoError(t, p.Add(low))
	require.NoError(t, p.Add(high))
	require.NoError(t, p.Add(mid))

	ordered := p.GetByGasPrice(0)
	require.Len(t, ordered, 3)
	assert.Equal(t, uint64(10), ordered[0].GasPrice)
	assert.Equal(t, uint64(5), ordered[1].GasPrice)
	assert.Equal(t, uint64(1), ordered[2].GasPrice)
}

func TestPoolGetByGasPriceTiesPreserveInsertionOrderAcrossSenders(t *testing.T) {
	p := New(0, 0)
	first := txWithGasPrice(0, common.BytesToAddress([]byte{1}), 5)
	second := txWithGasPrice(0, common.BytesToAddress([]byte{2}), 5)
	third := txWithGasPrice(0, common.BytesToAddress([]byte{3}), 5)
	require.NoError(t, p.Add(first))
	require.NoError(t, p.Add(second))
	require.NoError(t, p.Add(third))

	// Same gas price, different senders: admission order must win the
	// tie regardless of map iteration order over bySender.
	for i := 0; i < 20; i++ {
		ordered := p.GetByGasPrice(0)
		require.Len(t, ordered, 3)
		assert.Equal(t, first.Hash(), ordered[0].Hash())
		assert.Equal(t, second.Hash(), ordered[1].Hash())
		assert.Equal(t, third.Hash(), ordered[2].Hash())
	}
}

func TestPoolRemoveBatchPruning(t *testing.T) {
	p := New(0, 0)
	from := common.BytesToAddress([]byte{1})
	tx1 := txWithGasPrice(0, from, 5)
	tx2 := txWithGasPrice(1, from, 5)
	require.NoError(t, p.Add(tx1))
	require.NoError(t, p.Add(tx2))

	p.RemoveBatch([]common.Hash{tx1.Hash()})
	assert.False(t, p.Contains(tx1.Hash()))
	assert.True(t, p.Contains(tx2.Hash()))
}

func TestPoolGetNextForSender(t *testing.T) {
	p := New(0, 0)
	from := common.BytesToAddress([]byte{1})
	tx1 := txWithGasPrice(0, from, 5)
	tx2 := txWithGasPrice(1, from, 5)
	require.NoError(t, p.Add(tx1))
	require.NoError(t, p.Add(tx2))

	next := p.GetNextForSender(from)
	require.NotNil(t, next)
	assert.Equal(t, tx1.Hash(), next.Hash())
}
