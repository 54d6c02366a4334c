package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tos-network/minichain/common"
)

func TestHash256Deterministic(t *testing.T) {
	a := Hash256([]byte("hello"))
	b := Hash256([]byte("hello"))
	assert.Equal(t, a, b)

	c := Hash256([]byte("hel"), []byte("lo"))
	assert.Equal(t, a, c, "Hash256 hashes concatenated chunks identically to one chunk")

	d := Hash256([]byte("world"))
	assert.NotEqual(t, a, d)
}

func TestGenerateAndSignVerify(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	digest := Hash256([]byte("a transaction"))
	sig := kp.Sign(digest)
	require.NoError(t, Verify(kp.Public, digest, sig))

	tamperedDigest := Hash256([]byte("a different transaction"))
	assert.Error(t, Verify(kp.Public, tamperedDigest, sig))

	other, err := GenerateKeyPair()
	require.NoError(t, err)
	assert.Error(t, Verify(other.Public, digest, sig))
}

func TestKeyPairFromSeedDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	kp1, err := KeyPairFromSeed(seed)
	require.NoError(t, err)
	kp2, err := KeyPairFromSeed(seed)
	require.NoError(t, err)
	assert.Equal(t, kp1.Public, kp2.Public)
	assert.Equal(t, kp1.Address(), kp2.Address())

	_, err = KeyPairFromSeed([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestPubkeyToAddressIsDeterministic(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	addr1 := PubkeyToAddress(kp.Public)
	addr2 := kp.Address()
	assert.Equal(t, addr1, addr2)
	assert.False(t, addr1.IsZero())
}

func TestVerifyRejectsZeroSignature(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	err = Verify(kp.Public, Hash256([]byte("x")), common.Signature{})
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
