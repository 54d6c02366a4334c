// Package poa implements the round-robin Proof-of-Authority consensus
// layer: a fixed authority set, a height-indexed proposer schedule,
// and header signing/verification. Adapted from the round-robin
// in-turn check and recent-signature bookkeeping of the teacher's
// consensus/dpos package, stripped of staking, epoch checkpoints, and
// validator-registry system actions per the simplified PoA model.
package poa

import (
	"crypto/ed25519"

	"github.com/tos-network/minichain/common"
)

// AuthoritySet is the fixed, ordered list of accounts permitted to
// author blocks. Order determines the round-robin schedule.
type AuthoritySet struct {
	addrs   []common.Address
	pubkeys map[common.Address]ed25519.PublicKey
}

// NewAuthoritySet builds a set from address/pubkey pairs in schedule
// order. Duplicate addresses are rejected by the caller's setup, not
// here; this type trusts its inputs are the genesis configuration.
func NewAuthoritySet(addrs []common.Address, pubkeys map[common.Address]ed25519.PublicKey) *AuthoritySet {
	cp := make([]common.Address, len(addrs))
	copy(cp, addrs)
	return &AuthoritySet{addrs: cp, pubkeys: pubkeys}
}

// Len returns the number of authorities.
func (a *AuthoritySet) Len() int { return len(a.addrs) }

// AtIndex returns the authority at the given schedule position.
func (a *AuthoritySet) AtIndex(i int) common.Address { return a.addrs[i] }

// Contains reports whether addr is a registered authority.
func (a *AuthoritySet) Contains(addr common.Address) bool {
	for _, x := range a.addrs {
		if x == addr {
			return true
		}
	}
	return false
}

// PublicKey returns the registered Ed25519 public key for addr, or nil
// if addr is not an authority.
func (a *AuthoritySet) PublicKey(addr common.Address) ed25519.PublicKey {
	return a.pubkeys[addr]
}

// ExpectedAuthor returns the authority whose turn it is to propose at
// height, per spec.md's authorities[height mod N] rule.
func (a *AuthoritySet) ExpectedAuthor(height uint64) (common.Address, error) {
	if len(a.addrs) == 0 {
		return common.Address{}, ErrNoAuthorities
	}
	idx := height % uint64(len(a.addrs))
	return a.addrs[idx], nil
}

// Scheduler wraps an AuthoritySet with the single turn-check operation
// consumers need: is this address allowed to author this height.
type Scheduler struct {
	authorities *AuthoritySet
}

// NewScheduler builds a scheduler over the given authority set.
func NewScheduler(authorities *AuthoritySet) *Scheduler {
	return &Scheduler{authorities: authorities}
}

// CanProposeAtHeight reports whether addr is the in-turn authority for
// height.
func (s *Scheduler) CanProposeAtHeight(height uint64, addr common.Address) (bool, error) {
	expected, err := s.authorities.ExpectedAuthor(height)
	if err != nil {
		return false, err
	}
	return expected == addr, nil
}
