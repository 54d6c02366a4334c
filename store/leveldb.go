package store

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is the persistent KV backend, mirroring the teacher's
// tosdb/leveldb package. goleveldb's own write-ahead log and its
// *leveldb.Batch already give the atomic-batch, crash-safe durability
// §4.1 requires, so no bespoke WAL is layered on top.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if absent) a LevelDB store at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}

func (l *LevelDB) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *LevelDB) Close() error { return l.db.Close() }

func (l *LevelDB) NewBatch() Batch {
	return &levelBatch{db: l.db, batch: new(leveldb.Batch)}
}

type levelBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
	n     int
}

func (b *levelBatch) Put(key, value []byte) {
	b.batch.Put(key, value)
	b.n++
}

func (b *levelBatch) Delete(key []byte) {
	b.batch.Delete(key)
	b.n++
}

func (b *levelBatch) Len() int { return b.n }

func (b *levelBatch) Write() error {
	if err := b.db.Write(b.batch, nil); err != nil {
		return err
	}
	b.batch.Reset()
	b.n = 0
	return nil
}

func (l *LevelDB) Iterator(prefix []byte) Iterator {
	it := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	return &levelIterator{it: it}
}

type levelIterator struct {
	it interface {
		Next() bool
		Key() []byte
		Value() []byte
		Error() error
		Release()
	}
}

func (it *levelIterator) Next() bool    { return it.it.Next() }
func (it *levelIterator) Key() []byte   { return it.it.Key() }
func (it *levelIterator) Value() []byte { return it.it.Value() }
func (it *levelIterator) Error() error  { return it.it.Error() }
func (it *levelIterator) Release()      { it.it.Release() }
