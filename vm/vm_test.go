package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tos-network/minichain/common"
)

// s1Program builds the S1 scenario: LOADI R0,10; LOADI R1,20; ADD R2,R0,R1; LOG R2; HALT.
func s1Program() []byte {
	b := []byte{}
	b = append(b, 0x70, 0x00)
	b = append(b, leU64(10)...)
	b = append(b, 0x70, 0x10)
	b = append(b, leU64(20)...)
	b = append(b, 0x10, 0x20, 0x10)
	b = append(b, 0xF0, 0x20)
	b = append(b, 0x00)
	return b
}

func leU64(v uint64) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(v >> (8 * uint(i)))
	}
	return out
}

func TestVMRunS1AddAndLog(t *testing.T) {
	code := s1Program()
	v := New(code, 1_000_000, nil, Context{})
	res := v.Run()
	require.True(t, res.Success)
	assert.Equal(t, []uint64{30}, res.Logs)
}

func TestVMGasConservation(t *testing.T) {
	code := s1Program()
	const limit uint64 = 1_000_000
	v := New(code, limit, nil, Context{})
	res := v.Run()
	assert.Equal(t, limit, res.GasUsed+res.GasRemaining)
}

func TestVMDivisionByZero(t *testing.T) {
	// LOADI R0,0 ; DIV R1,R0,R0 ; HALT
	code := []byte{0x70, 0x00}
	code = append(code, leU64(0)...)
	code = append(code, 0x13, 0x00, 0x00)
	code = append(code, 0x00)
	v := New(code, 1_000_000, nil, Context{})
	res := v.Run()
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrDivisionByZero)
}

func TestVMInvalidJump(t *testing.T) {
	// LOADI R0, 999 ; JUMP R0
	code := []byte{0x70, 0x00}
	code = append(code, leU64(999)...)
	code = append(code, 0x02, 0x00)
	v := New(code, 1_000_000, nil, Context{})
	res := v.Run()
	assert.False(t, res.Success)
	var target *ErrInvalidJump
	require.ErrorAs(t, res.Err, &target)
}

func TestVMInvalidOpcode(t *testing.T) {
	code := []byte{0xEE}
	v := New(code, 1_000_000, nil, Context{})
	res := v.Run()
	assert.False(t, res.Success)
	var invalid *ErrInvalidOpcode
	require.ErrorAs(t, res.Err, &invalid)
}

func TestVMOutOfGas(t *testing.T) {
	code := s1Program()
	v := New(code, 5, nil, Context{})
	res := v.Run()
	assert.False(t, res.Success)
	var oog *ErrOutOfGas
	require.ErrorAs(t, res.Err, &oog)
}

func TestVMMemoryOverflow(t *testing.T) {
	v := New(nil, 1_000_000, nil, Context{}, WithMaxMemory(4))
	err := v.mem.store64(0, 1)
	var overflow *ErrMemoryOverflow
	require.ErrorAs(t, err, &overflow)
}

func TestVMMemoryCopyNoOverlapCorruption(t *testing.T) {
	v := New(nil, 1_000_000, nil, Context{})
	require.NoError(t, v.mem.store64(0, 0x0102030405060708))
	// Overlapping shift-by-one copy must read the pristine source first.
	require.NoError(t, v.mem.mcopy(1, 0, 8))
	assert.Equal(t, byte(0x08), v.mem.data[1])
}

type fakeStorage struct {
	slots map[common.Hash]common.Hash
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{slots: make(map[common.Hash]common.Hash)}
}

func (f *fakeStorage) Sload(key common.Hash) (common.Hash, error) {
	return f.slots[key], nil
}

func (f *fakeStorage) Sstore(key, value common.Hash) error {
	f.slots[key] = value
	return nil
}

func TestVMStorageRoundTrip(t *testing.T) {
	// LOADI R0,7 (key) ; LOADI R1,99 (value) ; SSTORE R0,R1 ; SLOAD R2,R0 ; LOG R2 ; HALT
	code := []byte{0x70, 0x00}
	code = append(code, leU64(7)...)
	code = append(code, 0x70, 0x10)
	code = append(code, leU64(99)...)
	code = append(code, 0x51, 0x01) // SSTORE key=R0, val=R1
	code = append(code, 0x50, 0x20) // SLOAD dst=R2, key=R0
	code = append(code, 0xF0, 0x20)
	code = append(code, 0x00)

	backend := newFakeStorage()
	v := New(code, 1_000_000, backend, Context{})
	res := v.Run()
	require.True(t, res.Success)
	assert.Equal(t, []uint64{99}, res.Logs)
}

func TestVMContextOpcodes(t *testing.T) {
	addr := common.BytesToAddress([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8})
	ctx := Context{
		Address:     addr,
		CallValue:   1234,
		BlockNumber: 7,
		Timestamp:   99,
	}
	// ADDRESS R0 ; LOG R0 ; CALLVALUE R1 ; LOG R1 ; HALT
	code := []byte{0x82, 0x00, 0xF0, 0x00, 0x81, 0x10, 0xF0, 0x10, 0x00}
	v := New(code, 1_000_000, nil, ctx)
	res := v.Run()
	require.True(t, res.Success)
	require.Len(t, res.Logs, 2)
	assert.Equal(t, uint64(1234), res.Logs[1])
}
