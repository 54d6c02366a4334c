package asm

import "github.com/tos-network/minichain/vm"

// Compiler turns a parsed statement list into bytecode in two passes:
// the first computes label and constant addresses, the second emits
// the final byte sequence. Mirrors the teacher's Feed-then-Compile
// shape (core/asm.Compiler), adapted to minichain's register-operand
// encodings instead of push-immediate EVM bytecode.
type Compiler struct {
	stmts  []statement
	labels map[string]int
	consts map[string]uint64
	entry  string
}

// NewCompiler returns an empty compiler ready to receive a token stream.
func NewCompiler() *Compiler {
	return &Compiler{
		labels: make(map[string]int),
		consts: make(map[string]uint64),
	}
}

// Feed parses tokens from ch into the compiler's statement list. It
// must be called exactly once, before Compile.
func (c *Compiler) Feed(ch <-chan token) error {
	stmts, err := parse(ch)
	if err != nil {
		return err
	}
	c.stmts = stmts
	return nil
}

// EntryLabel returns the label named by a ".entry" directive, or ""
// if none was present.
func (c *Compiler) EntryLabel() string { return c.entry }

// Compile runs the two-pass compile and returns the assembled bytecode.
func (c *Compiler) Compile() ([]byte, error) {
	if err := c.firstPass(); err != nil {
		return nil, err
	}
	return c.secondPass()
}

// firstPass computes the byte address of every label and binds
// .const declarations, without emitting any bytes.
func (c *Compiler) firstPass() error {
	addr := 0
	for _, st := range c.stmts {
		switch st.kind {
		case stmtLabel:
			if existing, ok := c.labels[st.label]; ok {
				return &ErrDuplicateLabel{Name: st.label, FirstAddr: existing}
			}
			c.labels[st.label] = addr
		case stmtConstDir:
			c.consts[st.constName] = st.constValue
		case stmtEntryDir:
			c.entry = st.entryLabel
		case stmtInstr:
			size, ok := vm.ByteSize(st.op)
			if !ok {
				return &ErrUnexpectedToken{Got: st.mnemonic, Line: st.line}
			}
			addr += size
		}
	}
	return nil
}

// secondPass emits the final bytecode, resolving label/const references.
func (c *Compiler) secondPass() ([]byte, error) {
	var out []byte
	for _, st := range c.stmts {
		if st.kind != stmtInstr {
			continue
		}
		bytes, err := c.encode(st)
		if err != nil {
			return nil, err
		}
		out = append(out, bytes...)
	}
	return out, nil
}

func (c *Compiler) encode(st statement) ([]byte, error) {
	size, _ := vm.ByteSize(st.op)
	out := make([]byte, size)
	out[0] = byte(st.op)

	nRegs := vm.RegisterCount(st.op)
	hasImm := vm.HasImmediate(st.op)

	switch {
	case nRegs == 0 && !hasImm:
		// opcode byte only
	case nRegs == 1 && !hasImm:
		out[1] = byte(st.regs[0] << 4)
	case nRegs == 2 && !hasImm:
		out[1] = byte(st.regs[0]<<4) | byte(st.regs[1]&0x0F)
	case nRegs == 3:
		out[1] = byte(st.regs[0]<<4) | byte(st.regs[1]&0x0F)
		out[2] = byte(st.regs[2] << 4)
	case nRegs == 1 && hasImm:
		out[1] = byte(st.regs[0] << 4)
		imm, err := c.resolveImmediate(st)
		if err != nil {
			return nil, err
		}
		putImm64(out[2:10], imm)
	case nRegs == 2 && hasImm:
		out[1] = byte(st.regs[0]<<4) | byte(st.regs[1]&0x0F)
		imm, err := c.resolveImmediate(st)
		if err != nil {
			return nil, err
		}
		putImm64(out[2:10], imm)
	}
	return out, nil
}

func (c *Compiler) resolveImmediate(st statement) (uint64, error) {
	if !st.immIsName {
		return st.imm, nil
	}
	if addr, ok := c.labels[st.immLabel]; ok {
		return uint64(addr), nil
	}
	if v, ok := c.consts[st.immLabel]; ok {
		return v, nil
	}
	return 0, &ErrUndefinedLabel{Name: st.immLabel}
}

func putImm64(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * uint(i)))
	}
}

// Assemble is a convenience wrapper lexing, parsing, and compiling
// source in one call.
func Assemble(source []byte) ([]byte, error) {
	c := NewCompiler()
	if err := c.Feed(Lex(source)); err != nil {
		return nil, err
	}
	return c.Compile()
}
