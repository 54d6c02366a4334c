package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tos-network/minichain/common"
)

// ErrShortBuffer is returned by Reader methods when the buffer is
// exhausted before the expected field is fully read.
var ErrShortBuffer = errors.New("store: short buffer")

// Writer builds the deterministic, length-prefixed binary encoding
// spec.md §6 pins: little-endian integers, 8-byte-length-prefixed byte
// sequences, and a tag byte ahead of every optional field. Every
// persisted record (Account, Transaction, Block, ...) implements
// MarshalBinary in terms of a Writer so the header-hash, tx-hash, and
// state-root properties all depend on one pinned scheme.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) WriteByte_(b byte) { w.buf.WriteByte(b) }

func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteBytes(b []byte) {
	w.WriteUint64(uint64(len(b)))
	w.buf.Write(b)
}

func (w *Writer) WriteString(s string) { w.WriteBytes([]byte(s)) }

func (w *Writer) WriteHash(h common.Hash) { w.buf.Write(h[:]) }

func (w *Writer) WriteAddress(a common.Address) { w.buf.Write(a[:]) }

func (w *Writer) WriteSignature(s common.Signature) { w.buf.Write(s[:]) }

// WriteOptionalHash writes a tag byte (0 = absent, 1 = present) followed
// by the hash bytes when present.
func (w *Writer) WriteOptionalHash(h *common.Hash) {
	if h == nil {
		w.WriteByte_(0)
		return
	}
	w.WriteByte_(1)
	w.WriteHash(*h)
}

// WriteOptionalAddress mirrors WriteOptionalHash for addresses.
func (w *Writer) WriteOptionalAddress(a *common.Address) {
	if a == nil {
		w.WriteByte_(0)
		return
	}
	w.WriteByte_(1)
	w.WriteAddress(*a)
}

// Reader parses the Writer encoding back out, field by field, failing
// closed (ErrShortBuffer) rather than panicking on truncated input.
type Reader struct {
	b   []byte
	pos int
}

func NewReader(b []byte) *Reader { return &Reader{b: b} }

func (r *Reader) require(n int) error {
	if r.pos+n > len(r.b) {
		return ErrShortBuffer
	}
	return nil
}

func (r *Reader) ReadByte_() (byte, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	v := r.b[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.b[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	if err := r.require(int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.b[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) ReadHash() (common.Hash, error) {
	if err := r.require(common.HashLength); err != nil {
		return common.Hash{}, err
	}
	h := common.BytesToHash(r.b[r.pos : r.pos+common.HashLength])
	r.pos += common.HashLength
	return h, nil
}

func (r *Reader) ReadAddress() (common.Address, error) {
	if err := r.require(common.AddressLength); err != nil {
		return common.Address{}, err
	}
	a := common.BytesToAddress(r.b[r.pos : r.pos+common.AddressLength])
	r.pos += common.AddressLength
	return a, nil
}

func (r *Reader) ReadSignature() (common.Signature, error) {
	if err := r.require(common.SignatureLength); err != nil {
		return common.Signature{}, err
	}
	var s common.Signature
	copy(s[:], r.b[r.pos:r.pos+common.SignatureLength])
	r.pos += common.SignatureLength
	return s, nil
}

func (r *Reader) ReadOptionalHash() (*common.Hash, error) {
	tag, err := r.ReadByte_()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	h, err := r.ReadHash()
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *Reader) ReadOptionalAddress() (*common.Address, error) {
	tag, err := r.ReadByte_()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	a, err := r.ReadAddress()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Remaining reports whether unread bytes remain.
func (r *Reader) Remaining() int { return len(r.b) - r.pos }

// Marshaler is implemented by every persisted record type.
type Marshaler interface {
	MarshalBinary() []byte
}

// Unmarshaler mirrors Marshaler for decoding.
type Unmarshaler interface {
	UnmarshalBinary([]byte) error
}

// PutTyped serializes v and stores it at key.
func PutTyped(kv KV, key []byte, v Marshaler) error {
	return kv.Put(key, v.MarshalBinary())
}

// GetTyped loads the value at key into v. Returns ErrNotFound if absent.
func GetTyped(kv KV, key []byte, v Unmarshaler) error {
	raw, err := kv.Get(key)
	if err != nil {
		return err
	}
	if err := v.UnmarshalBinary(raw); err != nil {
		return fmt.Errorf("store: decode %x: %w", key, err)
	}
	return nil
}
