// Package crypto provides the hashing and signing primitives minichain
// is built on: Keccak-256 (via golang.org/x/crypto/sha3, the hash
// function the teacher's consensus/dpos package already imports) and
// Ed25519 (via stdlib crypto/ed25519, the same wrapping the teacher's
// own crypto/ed25519 package does).
package crypto

import (
	stded25519 "crypto/ed25519"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/sha3"

	"github.com/tos-network/minichain/common"
)

var (
	ErrInvalidSignature  = errors.New("crypto: invalid signature")
	ErrInvalidPublicKey  = errors.New("crypto: invalid public key length")
	ErrInvalidPrivateKey = errors.New("crypto: invalid private key length")
	ErrVerificationFailed = errors.New("crypto: signature verification failed")
)

// Hash256 returns the Keccak-256 hash of data.
func Hash256(data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out common.Hash
	h.Sum(out[:0])
	return out
}

// KeyPair is an Ed25519 signing identity.
type KeyPair struct {
	Public  stded25519.PublicKey
	Private stded25519.PrivateKey
}

// GenerateKeyPair creates a new random Ed25519 keypair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := stded25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeyPair{Public: pub, Private: priv}, nil
}

// KeyPairFromSeed deterministically derives a keypair from a 32-byte seed.
func KeyPairFromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != stded25519.SeedSize {
		return nil, ErrInvalidPrivateKey
	}
	priv := stded25519.NewKeyFromSeed(seed)
	pub := priv.Public().(stded25519.PublicKey)
	return &KeyPair{Public: pub, Private: priv}, nil
}

// Address derives the 20-byte address for this keypair's public key.
func (k *KeyPair) Address() common.Address {
	return PubkeyToAddress(k.Public)
}

// Sign signs digest (typically a signing hash) with the private key.
func (k *KeyPair) Sign(digest common.Hash) common.Signature {
	sig := stded25519.Sign(k.Private, digest[:])
	var out common.Signature
	copy(out[:], sig)
	return out
}

// PubkeyToAddress derives an address as the first 20 bytes of
// hash(pubkey_bytes).
func PubkeyToAddress(pub stded25519.PublicKey) common.Address {
	h := Hash256(pub)
	return common.BytesToAddress(h[:common.AddressLength])
}

// Verify checks that sig is a valid Ed25519 signature over digest by pub.
func Verify(pub stded25519.PublicKey, digest common.Hash, sig common.Signature) error {
	if len(pub) != stded25519.PublicKeySize {
		return ErrInvalidPublicKey
	}
	if sig.IsZero() {
		return ErrInvalidSignature
	}
	if !stded25519.Verify(pub, digest[:], sig[:]) {
		return ErrVerificationFailed
	}
	return nil
}
