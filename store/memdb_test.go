package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemDBPutGetDelete(t *testing.T) {
	db := NewMemDB()
	require.NoError(t, db.Put([]byte("k"), []byte("v")))

	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	has, err := db.Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, db.Delete([]byte("k")))
	_, err = db.Get([]byte("k"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemDBBatchAtomicity(t *testing.T) {
	db := NewMemDB()
	require.NoError(t, db.Put([]byte("stale"), []byte("old")))

	batch := db.NewBatch()
	batch.Put([]byte("a"), []byte("1"))
	batch.Put([]byte("b"), []byte("2"))
	batch.Delete([]byte("stale"))
	assert.Equal(t, 3, batch.Len())

	require.NoError(t, batch.Write())

	_, err := db.Get([]byte("stale"))
	assert.ErrorIs(t, err, ErrNotFound)
	v, err := db.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)
}

func TestMemDBIteratorPrefixAndOrder(t *testing.T) {
	db := NewMemDB()
	require.NoError(t, db.Put([]byte("block:hash:b"), []byte("2")))
	require.NoError(t, db.Put([]byte("block:hash:a"), []byte("1")))
	require.NoError(t, db.Put([]byte("account:x"), []byte("3")))

	it := db.Iterator([]byte("block:hash:"))
	defer it.Release()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"block:hash:a", "block:hash:b"}, keys)
}

func TestMemDBValuesAreCopied(t *testing.T) {
	db := NewMemDB()
	value := []byte{1, 2, 3}
	require.NoError(t, db.Put([]byte("k"), value))
	value[0] = 0xff

	got, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, byte(1), got[0], "stored value must not alias the caller's slice")
}
