package poa

import (
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/tos-network/minichain/chaintypes"
	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/crypto"
)

func unixNow() int64 { return time.Now().Unix() }

// inmemorySignatures bounds the recent-signature cache, mirroring the
// teacher's consensus/dpos.inmemorySignatures sizing.
const inmemorySignatures = 4096

// Authority is the verifier side of PoA consensus: it holds the
// registered authority set and checks turn, signature, and timestamp
// rules on incoming blocks.
type Authority struct {
	authorities *AuthoritySet
	cfg         Config
	nowFn       func() int64

	// signatures caches header-hash → signer, the same way the
	// teacher's DPoS engine caches recovered signers to avoid
	// re-verifying a header it has already seen.
	signatures *lru.ARCCache
}

// NewAuthority builds a verifier over the given authority set.
func NewAuthority(authorities *AuthoritySet, cfg Config) *Authority {
	cache, _ := lru.NewARC(inmemorySignatures)
	return &Authority{
		authorities: authorities,
		cfg:         cfg,
		nowFn:       unixNow,
		signatures:  cache,
	}
}

// VerifyBlock checks a block's authority turn, signature, and
// timestamp rules against its parent. Genesis blocks are exempt from
// every check but persistence.
func (a *Authority) VerifyBlock(block *chaintypes.Block, parent *chaintypes.BlockHeader) error {
	if block.IsGenesis() {
		return nil
	}

	height := block.Header.Height
	author := block.Header.Author

	if !a.authorities.Contains(author) {
		return ErrUnauthorizedAuthority
	}
	expected, err := a.authorities.ExpectedAuthor(height)
	if err != nil {
		return err
	}
	if expected != author {
		return &ErrNotTurn{Expected: expected, Got: author}
	}

	headerHash := block.Header.Hash()
	if cached, ok := a.signatures.Get(headerHash); ok {
		if cached.(common.Address) != author {
			return ErrInvalidSignature
		}
	} else {
		pub := a.authorities.PublicKey(author)
		if pub == nil {
			return ErrInvalidSignature
		}
		if err := crypto.Verify(pub, headerHash, block.AuthoritySig); err != nil {
			return ErrInvalidSignature
		}
		a.signatures.Add(headerHash, author)
	}

	if parent != nil && block.Header.TimestampSec <= parent.TimestampSec {
		return &ErrTimestampTooEarly{Timestamp: block.Header.TimestampSec, ParentTimestamp: parent.TimestampSec}
	}
	now := uint64(a.nowFn())
	if block.Header.TimestampSec > now+a.cfg.maxDrift() {
		return &ErrTimestampTooFuture{Timestamp: block.Header.TimestampSec, Now: now, MaxDrift: a.cfg.maxDrift()}
	}
	return nil
}

func (c Config) maxDrift() uint64 {
	if c.MaxClockDrift == 0 {
		return DefaultMaxClockDrift
	}
	return c.MaxClockDrift
}
