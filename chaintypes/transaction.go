// Package chaintypes holds the wire-level chain records: Transaction,
// BlockHeader, Block, and Receipt. Grounded on the teacher's
// core/types package (tx_constructors.go, legacy.go) for the shape of
// a signed-transaction type and its constructor helpers, rebuilt
// around minichain's simpler to/value/gas fields.
package chaintypes

import (
	"errors"

	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/crypto"
	"github.com/tos-network/minichain/store"
)

var ErrDecodeTransaction = errors.New("chaintypes: malformed transaction encoding")

// Transaction is a signed value transfer, contract deployment (To ==
// nil), or contract call.
type Transaction struct {
	Nonce     uint64
	From      common.Address
	To        *common.Address // nil means deployment
	Value     uint64
	Data      []byte
	GasLimit  uint64
	GasPrice  uint64
	Signature common.Signature
}

// IsDeploy reports whether this transaction deploys a contract.
func (t *Transaction) IsDeploy() bool { return t.To == nil }

// IsTransfer reports whether this transaction is a plain value transfer
// (a recipient with no call data).
func (t *Transaction) IsTransfer() bool { return t.To != nil && len(t.Data) == 0 }

// IsCall reports whether this transaction invokes a contract.
func (t *Transaction) IsCall() bool { return t.To != nil && len(t.Data) > 0 }

// signingPayload serializes every field except Signature, the input to
// both SigningHash and Sign/Verify.
func (t *Transaction) signingPayload() []byte {
	w := store.NewWriter()
	w.WriteUint64(t.Nonce)
	w.WriteAddress(t.From)
	w.WriteOptionalAddress(t.To)
	w.WriteUint64(t.Value)
	w.WriteBytes(t.Data)
	w.WriteUint64(t.GasLimit)
	w.WriteUint64(t.GasPrice)
	return w.Bytes()
}

// SigningHash is the hash signed by the sender's private key.
func (t *Transaction) SigningHash() common.Hash {
	return crypto.Hash256(t.signingPayload())
}

// Hash is the full transaction hash, including the signature, used to
// identify the transaction in the mempool and in blocks.
func (t *Transaction) Hash() common.Hash {
	return crypto.Hash256(t.signingPayload(), t.Signature[:])
}

// Sign signs the transaction with kp and attaches the signature.
func (t *Transaction) Sign(kp *crypto.KeyPair) {
	t.Signature = kp.Sign(t.SigningHash())
}

// ContractAddress computes the deterministic deployment address for a
// transaction from sender and nonce. Only meaningful for IsDeploy().
func ContractAddress(from common.Address, nonce uint64) common.Address {
	w := store.NewWriter()
	w.WriteAddress(from)
	w.WriteUint64(nonce)
	h := crypto.Hash256(w.Bytes())
	return common.BytesToAddress(h[:common.AddressLength])
}

// MarshalBinary implements store.Marshaler.
func (t *Transaction) MarshalBinary() []byte {
	w := store.NewWriter()
	w.WriteUint64(t.Nonce)
	w.WriteAddress(t.From)
	w.WriteOptionalAddress(t.To)
	w.WriteUint64(t.Value)
	w.WriteBytes(t.Data)
	w.WriteUint64(t.GasLimit)
	w.WriteUint64(t.GasPrice)
	w.WriteSignature(t.Signature)
	return w.Bytes()
}

// UnmarshalBinary implements store.Unmarshaler.
func (t *Transaction) UnmarshalBinary(b []byte) error {
	r := store.NewReader(b)
	var err error
	if t.Nonce, err = r.ReadUint64(); err != nil {
		return err
	}
	if t.From, err = r.ReadAddress(); err != nil {
		return err
	}
	if t.To, err = r.ReadOptionalAddress(); err != nil {
		return err
	}
	if t.Value, err = r.ReadUint64(); err != nil {
		return err
	}
	if t.Data, err = r.ReadBytes(); err != nil {
		return err
	}
	if t.GasLimit, err = r.ReadUint64(); err != nil {
		return err
	}
	if t.GasPrice, err = r.ReadUint64(); err != nil {
		return err
	}
	if t.Signature, err = r.ReadSignature(); err != nil {
		return err
	}
	return nil
}
