package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tos-network/minichain/common"
)

func leaf(b byte) common.Hash {
	var h common.Hash
	h[common.HashLength-1] = b
	return h
}

func TestRootEmptyAndSingle(t *testing.T) {
	assert.Equal(t, common.ZeroHash, Root(nil))

	single := leaf(1)
	assert.Equal(t, single, Root([]common.Hash{single}))
}

func TestRootOddLevelDuplicatesLast(t *testing.T) {
	leaves := []common.Hash{leaf(1), leaf(2), leaf(3)}
	root := Root(leaves)

	padded := []common.Hash{leaf(1), leaf(2), leaf(3), leaf(3)}
	assert.Equal(t, Root(padded), root)
}

func TestRootOrderSensitive(t *testing.T) {
	a := Root([]common.Hash{leaf(1), leaf(2)})
	b := Root([]common.Hash{leaf(2), leaf(1)})
	assert.NotEqual(t, a, b)
}

func TestTreeProofRoundTrip(t *testing.T) {
	leaves := []common.Hash{leaf(1), leaf(2), leaf(3), leaf(4), leaf(5)}
	tree := NewTree(leaves)
	root := tree.Root()
	assert.Equal(t, Root(leaves), root)

	for i := range leaves {
		proof, ok := tree.Proof(i)
		require.True(t, ok)
		assert.True(t, VerifyProof(root, proof), "leaf %d should verify", i)
	}
}

func TestTreeProofRejectsOutOfRange(t *testing.T) {
	tree := NewTree([]common.Hash{leaf(1)})
	_, ok := tree.Proof(5)
	assert.False(t, ok)
}

func TestVerifyProofRejectsTamperedLeaf(t *testing.T) {
	leaves := []common.Hash{leaf(1), leaf(2), leaf(3)}
	tree := NewTree(leaves)
	proof, ok := tree.Proof(0)
	require.True(t, ok)

	proof.Leaf = leaf(99)
	assert.False(t, VerifyProof(tree.Root(), proof))
}
