package vm

import (
	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/log"
)

var logger = log.New("vm")

const numRegisters = 16

// Context carries the execution-environment values a running contract
// can read back via the context opcodes (CALLER, ADDRESS, ...).
type Context struct {
	Caller      common.Address
	Address     common.Address
	CallValue   uint64
	BlockNumber uint64
	Timestamp   uint64
}

// Tracer observes each instruction that completes without halting,
// with pc already advanced past it. HALT, RET, REVERT and instructions
// that fail are not reported. Optional; nil disables tracing. Mirrors the step-level hook in the original reference
// implementation's tracer, kept independent of the LOG opcode's logs
// buffer.
type Tracer interface {
	OnStep(pc int, op OpCode, gasBefore, gasAfter uint64, regs [numRegisters]uint64)
}

// ExecutionResult is the outcome of a single VM run. Success is true
// only when execution halted via HALT or RET within the gas limit.
type ExecutionResult struct {
	Success      bool
	GasUsed      uint64
	GasRemaining uint64
	ReturnData   []byte
	Logs         []uint64
	Err          error
}

// VM is a single register-based bytecode interpreter instance. It
// executes exactly one program from one call and is not reused.
type VM struct {
	code    []byte
	regs    [numRegisters]uint64
	pc      int
	mem     *memory
	gas     uint64
	gasUsed uint64

	storage StorageBackend
	ctx     Context
	tracer  Tracer

	logs    []uint64
	halted  bool
	success bool
	err     error
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithMaxMemory overrides the default 1 MiB memory cap.
func WithMaxMemory(max int) Option {
	return func(v *VM) { v.mem = newMemory(max) }
}

// WithTracer attaches a step tracer.
func WithTracer(t Tracer) Option {
	return func(v *VM) { v.tracer = t }
}

// New constructs a VM ready to run code with gasLimit available gas.
// storage may be nil, in which case all slots read as zero and writes
// are discarded (useful for isolated unit tests).
func New(code []byte, gasLimit uint64, storage StorageBackend, ctx Context, opts ...Option) *VM {
	if storage == nil {
		storage = nullStorage{}
	}
	v := &VM{
		code:    code,
		gas:     gasLimit,
		mem:     newMemory(DefaultMaxMemory),
		storage: storage,
		ctx:     ctx,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run executes the program to completion: a halting opcode, exhausted
// gas, or a fatal decode/execution error.
func (v *VM) Run() *ExecutionResult {
	initialGas := v.gas
	for !v.halted {
		if v.pc >= len(v.code) {
			v.fail(nil) // ran off the end without an explicit halt
			break
		}
		if err := v.step(); err != nil {
			v.fail(err)
			break
		}
	}
	return &ExecutionResult{
		Success:      v.success,
		GasUsed:      initialGas - v.gas,
		GasRemaining: v.gas,
		ReturnData:   nil,
		Logs:         v.logs,
		Err:          v.err,
	}
}

func (v *VM) fail(err error) {
	v.halted = true
	v.success = false
	v.err = err
}

func (v *VM) haltSuccess() {
	v.halted = true
	v.success = true
}

func (v *VM) charge(cost uint64) error {
	if cost > v.gas {
		return &ErrOutOfGas{Required: cost, Remaining: v.gas}
	}
	v.gas -= cost
	return nil
}

// step decodes and executes one instruction, advancing pc unless the
// instruction itself sets pc (jumps).
func (v *VM) step() error {
	gasBefore := v.gas
	op := OpCode(v.code[v.pc])
	if !op.Valid() {
		return &ErrInvalidOpcode{Opcode: byte(op), PC: v.pc}
	}

	size, ok := ByteSize(op)
	if !ok || v.pc+size > len(v.code) {
		return &ErrInvalidOpcode{Opcode: byte(op), PC: v.pc}
	}

	jumped := false
	var execErr error

	switch op {
	case HALT:
		if err := v.charge(gasZero); err != nil {
			return err
		}
		v.haltSuccess()
		return nil
	case NOP:
		execErr = v.charge(gasZero)
	case RET:
		if err := v.charge(gasZero); err != nil {
			return err
		}
		v.haltSuccess()
		return nil
	case REVERT:
		if err := v.charge(gasZero); err != nil {
			return err
		}
		v.fail(ErrReverted)
		return nil

	case JUMP:
		rT := v.regByte(v.pc + 1)
		if err := v.charge(gasJump); err != nil {
			return err
		}
		target := int(v.regs[rT])
		if target < 0 || target >= len(v.code) {
			return &ErrInvalidJump{Target: target}
		}
		v.pc = target
		jumped = true
	case JUMPI:
		rC, rT := v.twoRegs(v.pc + 1)
		if err := v.charge(gasJump); err != nil {
			return err
		}
		if v.regs[rC] != 0 {
			target := int(v.regs[rT])
			if target < 0 || target >= len(v.code) {
				return &ErrInvalidJump{Target: target}
			}
			v.pc = target
			jumped = true
		}
	case CALL:
		execErr = v.charge(gasCall)

	case ADD, SUB, MUL, DIV, MOD:
		execErr = v.execArith(op)
	case ADDI:
		execErr = v.execAddi()

	case AND, OR, XOR, SHL, SHR:
		execErr = v.execBitwise(op)
	case NOT:
		execErr = v.execNot()

	case EQ, NE, LT, GT, LE, GE:
		execErr = v.execCompare(op)
	case ISZERO:
		execErr = v.execIszero()

	case LOAD8, LOAD64:
		execErr = v.execLoad(op)
	case STORE8, STORE64:
		execErr = v.execStore(op)
	case MSIZE:
		execErr = v.execMsize()
	case MCOPY:
		execErr = v.execMcopy()

	case SLOAD:
		execErr = v.execSload()
	case SSTORE:
		execErr = v.execSstore()

	case LOADI:
		execErr = v.execLoadi()
	case MOV:
		execErr = v.execMov()

	case CALLER:
		execErr = v.execContextAddr(v.ctx.Caller)
	case ADDRESS:
		execErr = v.execContextAddr(v.ctx.Address)
	case CALLVALUE:
		execErr = v.execContextU64(v.ctx.CallValue)
	case BLOCKNUMBER:
		execErr = v.execContextU64(v.ctx.BlockNumber)
	case TIMESTAMP:
		execErr = v.execContextU64(v.ctx.Timestamp)
	case GAS:
		execErr = v.execContextU64(v.gas)

	case LOG:
		execErr = v.execLog()
	}

	if execErr != nil {
		return execErr
	}
	if !jumped {
		v.pc += size
	}
	if v.tracer != nil {
		v.tracer.OnStep(v.pc, op, gasBefore, v.gas, v.regs)
	}
	return nil
}

// --- operand decoding -------------------------------------------------

func (v *VM) regByte(at int) int {
	return int(v.code[at] >> 4)
}

func (v *VM) twoRegs(at int) (hi, lo int) {
	b := v.code[at]
	return int(b >> 4), int(b & 0x0F)
}

func (v *VM) threeRegs(at int) (dst, s1, s2 int) {
	b0 := v.code[at]
	b1 := v.code[at+1]
	return int(b0 >> 4), int(b0 & 0x0F), int(b1 >> 4)
}

func (v *VM) imm64(at int) uint64 {
	var out uint64
	for i := 0; i < 8; i++ {
		out |= uint64(v.code[at+i]) << (8 * uint(i))
	}
	return out
}

// --- arithmetic ---------------------------------------------------------

func (v *VM) execArith(op OpCode) error {
	dst, s1, s2 := v.threeRegs(v.pc + 1)
	cost, _ := staticGasCost(op)
	if err := v.charge(cost); err != nil {
		return err
	}
	a, b := v.regs[s1], v.regs[s2]
	switch op {
	case ADD:
		v.regs[dst] = a + b
	case SUB:
		v.regs[dst] = a - b
	case MUL:
		v.regs[dst] = a * b
	case DIV:
		if b == 0 {
			return ErrDivisionByZero
		}
		v.regs[dst] = a / b
	case MOD:
		if b == 0 {
			return ErrDivisionByZero
		}
		v.regs[dst] = a % b
	}
	return nil
}

func (v *VM) execAddi() error {
	dst, src := v.twoRegs(v.pc + 1)
	imm := v.imm64(v.pc + 2)
	if err := v.charge(gasBase); err != nil {
		return err
	}
	v.regs[dst] = v.regs[src] + imm
	return nil
}

// --- bitwise -------------------------------------------------------------

func (v *VM) execBitwise(op OpCode) error {
	dst, s1, s2 := v.threeRegs(v.pc + 1)
	cost, _ := staticGasCost(op)
	if err := v.charge(cost); err != nil {
		return err
	}
	a, b := v.regs[s1], v.regs[s2]
	switch op {
	case AND:
		v.regs[dst] = a & b
	case OR:
		v.regs[dst] = a | b
	case XOR:
		v.regs[dst] = a ^ b
	case SHL:
		v.regs[dst] = a << (b & 0x3F)
	case SHR:
		v.regs[dst] = a >> (b & 0x3F)
	}
	return nil
}

func (v *VM) execNot() error {
	dst := v.regByte(v.pc + 1)
	if err := v.charge(gasBase); err != nil {
		return err
	}
	v.regs[dst] = ^v.regs[dst]
	return nil
}

// --- comparison ------------------------------------------------------------

func (v *VM) execCompare(op OpCode) error {
	dst, s1, s2 := v.threeRegs(v.pc + 1)
	if err := v.charge(gasBase); err != nil {
		return err
	}
	a, b := v.regs[s1], v.regs[s2]
	var r bool
	switch op {
	case EQ:
		r = a == b
	case NE:
		r = a != b
	case LT:
		r = a < b
	case GT:
		r = a > b
	case LE:
		r = a <= b
	case GE:
		r = a >= b
	}
	v.regs[dst] = boolU64(r)
	return nil
}

func (v *VM) execIszero() error {
	dst := v.regByte(v.pc + 1)
	if err := v.charge(gasBase); err != nil {
		return err
	}
	v.regs[dst] = boolU64(v.regs[dst] == 0)
	return nil
}

func boolU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// --- memory ---------------------------------------------------------------

func (v *VM) execLoad(op OpCode) error {
	dst, addrR := v.twoRegs(v.pc + 1)
	if err := v.charge(gasMemory); err != nil {
		return err
	}
	addr := int(v.regs[addrR])
	if op == LOAD8 {
		v.regs[dst] = uint64(v.mem.load8(addr))
	} else {
		v.regs[dst] = v.mem.load64(addr)
	}
	return nil
}

func (v *VM) execStore(op OpCode) error {
	addrR, srcR := v.twoRegs(v.pc + 1)
	if err := v.charge(gasMemory); err != nil {
		return err
	}
	addr := int(v.regs[addrR])
	if op == STORE8 {
		return v.mem.store8(addr, byte(v.regs[srcR]))
	}
	return v.mem.store64(addr, v.regs[srcR])
}

func (v *VM) execMsize() error {
	dst := v.regByte(v.pc + 1)
	if err := v.charge(gasBase); err != nil {
		return err
	}
	v.regs[dst] = uint64(v.mem.len())
	return nil
}

func (v *VM) execMcopy() error {
	dstR, srcR, lenR := v.threeRegs(v.pc + 1)
	if err := v.charge(gasMemory); err != nil {
		return err
	}
	return v.mem.mcopy(int(v.regs[dstR]), int(v.regs[srcR]), int(v.regs[lenR]))
}

// --- storage ---------------------------------------------------------------

// slotFromRegister places an 8-byte register value into the low 8
// bytes of a zero-filled 32-byte buffer, big-endian, per spec.md §4.5.
func slotFromRegister(v uint64) common.Hash {
	var h common.Hash
	for i := 0; i < 8; i++ {
		h[common.HashLength-1-i] = byte(v >> (8 * uint(i)))
	}
	return h
}

func (v *VM) execSload() error {
	dst, keyR := v.twoRegs(v.pc + 1)
	if err := v.charge(gasSload); err != nil {
		return err
	}
	key := slotFromRegister(v.regs[keyR])
	val, err := v.storage.Sload(key)
	if err != nil {
		return err
	}
	v.regs[dst] = registerFromSlot(val)
	return nil
}

// registerFromSlot reads the low 8 bytes of a 32-byte slot back into a
// register value, the inverse of slotFromRegister.
func registerFromSlot(h common.Hash) uint64 {
	var u uint64
	for i := 0; i < 8; i++ {
		u |= uint64(h[common.HashLength-1-i]) << (8 * uint(i))
	}
	return u
}

func (v *VM) execSstore() error {
	keyR, valR := v.twoRegs(v.pc + 1)
	key := slotFromRegister(v.regs[keyR])
	prior, err := v.storage.Sload(key)
	if err != nil {
		return err
	}
	cost := gasSstoreReset
	if prior == (common.Hash{}) {
		cost = gasSstoreSet
	}
	if err := v.charge(cost); err != nil {
		return err
	}
	value := slotFromRegister(v.regs[valR])
	return v.storage.Sstore(key, value)
}

// --- immediate / context ----------------------------------------------------

func (v *VM) execLoadi() error {
	dst := v.regByte(v.pc + 1)
	imm := v.imm64(v.pc + 2)
	if err := v.charge(gasBase); err != nil {
		return err
	}
	v.regs[dst] = imm
	return nil
}

func (v *VM) execMov() error {
	dst, src := v.twoRegs(v.pc + 1)
	if err := v.charge(gasBase); err != nil {
		return err
	}
	v.regs[dst] = v.regs[src]
	return nil
}

func (v *VM) execContextAddr(addr common.Address) error {
	dst := v.regByte(v.pc + 1)
	if err := v.charge(gasBase); err != nil {
		return err
	}
	var u uint64
	for i := 0; i < 8; i++ {
		u |= uint64(addr[common.AddressLength-1-i]) << (8 * uint(i))
	}
	v.regs[dst] = u
	return nil
}

func (v *VM) execContextU64(val uint64) error {
	dst := v.regByte(v.pc + 1)
	if err := v.charge(gasBase); err != nil {
		return err
	}
	v.regs[dst] = val
	return nil
}

// --- debug -------------------------------------------------------------------

func (v *VM) execLog() error {
	src := v.regByte(v.pc + 1)
	if err := v.charge(gasBase); err != nil {
		return err
	}
	v.logs = append(v.logs, v.regs[src])
	return nil
}
