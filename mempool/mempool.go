package mempool

import (
	"sort"
	"sync"

	"github.com/tos-network/minichain/chaintypes"
	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/log"
)

var logger = log.New("mempool")

// DefaultMaxTransactions and DefaultMaxPerSender match spec.md §4.8's
// defaults.
const (
	DefaultMaxTransactions = 10_000
	DefaultMaxPerSender    = 100
)

// entry pairs a pooled transaction with the data needed to remove it
// from both indexes in O(1)-ish time. seq is the pool-global insertion
// order, independent of which sender's queue the transaction landed
// in, so ties can be broken by true admission order rather than by
// however Go happens to range bySender's map on a given run.
type entry struct {
	tx  *chaintypes.Transaction
	seq uint64
}

// Pool is the transaction mempool: a hash-keyed map of pending
// transactions plus a per-sender insertion-ordered queue of hashes.
// Every method is safe for concurrent use; the teacher's blockchain
// orchestrator wraps pool mutation in its own critical section, but
// the pool guards itself too rather than trusting every caller to.
type Pool struct {
	mu sync.Mutex

	maxTotal     int
	maxPerSender int
	nextSeq      uint64

	byHash   map[common.Hash]entry
	bySender map[common.Address][]common.Hash
}

// New returns an empty pool with the given capacity caps. A zero value
// for either cap falls back to the spec.md default.
func New(maxTotal, maxPerSender int) *Pool {
	if maxTotal <= 0 {
		maxTotal = DefaultMaxTransactions
	}
	if maxPerSender <= 0 {
		maxPerSender = DefaultMaxPerSender
	}
	return &Pool{
		maxTotal:     maxTotal,
		maxPerSender: maxPerSender,
		byHash:       make(map[common.Hash]entry),
		bySender:     make(map[common.Address][]common.Hash),
	}
}

// Add inserts tx into the pool, keyed by its full hash. Rejects exact
// duplicates and inserts that would exceed either capacity cap.
func (p *Pool) Add(tx *chaintypes.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	h := tx.Hash()
	if _, ok := p.byHash[h]; ok {
		return ErrDuplicateTransaction
	}
	if len(p.byHash) >= p.maxTotal {
		return &ErrMempoolFull{Capacity: p.maxTotal}
	}
	if len(p.bySender[tx.From]) >= p.maxPerSender {
		return &ErrMempoolFull{Capacity: p.maxPerSender}
	}

	p.byHash[h] = entry{tx: tx, seq: p.nextSeq}
	p.nextSeq++
	p.bySender[tx.From] = append(p.bySender[tx.From], h)
	return nil
}

// Remove evicts a single transaction by hash.
func (p *Pool) Remove(h common.Hash) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.removeLocked(h)
}

func (p *Pool) removeLocked(h common.Hash) error {
	e, ok := p.byHash[h]
	if !ok {
		return ErrTransactionNotFound
	}
	delete(p.byHash, h)

	queue := p.bySender[e.tx.From]
	for i, qh := range queue {
		if qh == h {
			p.bySender[e.tx.From] = append(queue[:i], queue[i+1:]...)
			break
		}
	}
	if len(p.bySender[e.tx.From]) == 0 {
		delete(p.bySender, e.tx.From)
	}
	return nil
}

// RemoveBatch evicts every hash in hashes, ignoring ones already absent
// (used after block import, where some may have expired or never been
// pooled in the first place — e.g. locally-proposed blocks).
func (p *Pool) RemoveBatch(hashes []common.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range hashes {
		_ = p.removeLocked(h)
	}
}

// Contains reports whether h is currently pending.
func (p *Pool) Contains(h common.Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.byHash[h]
	return ok
}

// Get returns the pending transaction with hash h.
func (p *Pool) Get(h common.Hash) (*chaintypes.Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.byHash[h]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	return e.tx, nil
}

// GetBySender returns every pending transaction from sender, in
// insertion order.
func (p *Pool) GetBySender(sender common.Address) []*chaintypes.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	queue := p.bySender[sender]
	out := make([]*chaintypes.Transaction, 0, len(queue))
	for _, h := range queue {
		out = append(out, p.byHash[h].tx)
	}
	return out
}

// GetNextForSender returns the front of sender's queue, or nil if empty.
func (p *Pool) GetNextForSender(sender common.Address) *chaintypes.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	queue := p.bySender[sender]
	if len(queue) == 0 {
		return nil
	}
	return p.byHash[queue[0]].tx
}

// GetByGasPrice returns up to limit pending transactions sorted
// descending by gas price; ties preserve insertion order (a stable
// sort), per spec.md §5's ordering guarantee.
func (p *Pool) GetByGasPrice(limit int) []*chaintypes.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	all := p.allLocked()
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].GasPrice > all[j].GasPrice
	})
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

// GetPending currently aliases GetByGasPrice, matching the reference
// mempool's pending-transaction view.
func (p *Pool) GetPending(limit int) []*chaintypes.Transaction {
	return p.GetByGasPrice(limit)
}

// allLocked returns every pooled transaction in true pool-wide
// insertion order (by seq), not by ranging bySender — map iteration
// order is randomized per run and would otherwise make GetByGasPrice's
// tie-break vary across identical pools. The caller must hold p.mu.
func (p *Pool) allLocked() []*chaintypes.Transaction {
	entries := make([]entry, 0, len(p.byHash))
	for _, e := range p.byHash {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})
	out := make([]*chaintypes.Transaction, len(entries))
	for i, e := range entries {
		out[i] = e.tx
	}
	return out
}

// Clear empties the pool.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byHash = make(map[common.Hash]entry)
	p.bySender = make(map[common.Address][]common.Hash)
}

// Stats is a read-side snapshot over the pool's current indexes: total
// pending count and the number of distinct senders represented.
type Stats struct {
	Total       int
	SenderCount int
}

// Stats computes a Stats snapshot. It is a pure read over the existing
// maps — the reference mempool's stats() does not maintain separate
// running counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Total: len(p.byHash), SenderCount: len(p.bySender)}
}
